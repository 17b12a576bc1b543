// Package budget computes a budget summary from structured income and
// expense lines.
package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRequest is returned for negative amounts or blank names.
var ErrInvalidRequest = errors.New("invalid budget request")

// Income is one income source.
type Income struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
}

// Expense is one spending category.
type Expense struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Request is the structured budget input.
type Request struct {
	UserID         string    `json:"user_id"`
	Incomes        []Income  `json:"incomes"`
	Expenses       []Expense `json:"expenses"`
	FinancialGoals []string  `json:"financial_goals,omitempty"`
}

// Summary holds the computed totals.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetSavings    decimal.Decimal `json:"net_savings"`
	SavingsRate   decimal.Decimal `json:"savings_rate"`
}

// Response is the computed budget.
type Response struct {
	Summary Summary                    `json:"summary"`
	Details map[string]decimal.Decimal `json:"details"`
	Message string                     `json:"message"`
}

var hundred = decimal.NewFromInt(100)

// Generate validates req and computes totals, savings rate and a per-line
// breakdown. Lines sharing a name are summed in Details.
func Generate(req Request) (*Response, error) {
	details := make(map[string]decimal.Decimal)
	totalIncome := decimal.Zero
	for i, in := range req.Incomes {
		name := strings.TrimSpace(in.Source)
		if name == "" || in.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: income %d", ErrInvalidRequest, i)
		}
		totalIncome = totalIncome.Add(in.Amount)
		details[strings.ToLower(name)] = details[strings.ToLower(name)].Add(in.Amount)
	}

	totalExpenses := decimal.Zero
	for i, ex := range req.Expenses {
		name := strings.TrimSpace(ex.Category)
		if name == "" || ex.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: expense %d", ErrInvalidRequest, i)
		}
		totalExpenses = totalExpenses.Add(ex.Amount)
		details[strings.ToLower(name)] = details[strings.ToLower(name)].Add(ex.Amount)
	}

	net := totalIncome.Sub(totalExpenses)
	rate := decimal.Zero
	if totalIncome.IsPositive() {
		rate = net.Div(totalIncome).Mul(hundred).Round(2)
	}

	return &Response{
		Summary: Summary{
			TotalIncome:   totalIncome,
			TotalExpenses: totalExpenses,
			NetSavings:    net,
			SavingsRate:   rate,
		},
		Details: details,
		Message: message(rate, net, len(req.FinancialGoals)),
	}, nil
}

func message(rate, net decimal.Decimal, goals int) string {
	var msg string
	switch {
	case net.IsNegative():
		msg = fmt.Sprintf("You are spending %s more than you earn. Review your largest expenses.", net.Abs().StringFixed(2))
	case rate.GreaterThanOrEqual(decimal.NewFromInt(20)):
		msg = fmt.Sprintf("You are saving %s%% of your income. Good job!", rate.String())
	default:
		msg = fmt.Sprintf("You are saving %s%% of your income. Aim for at least 20%%.", rate.String())
	}
	if goals > 0 {
		msg += fmt.Sprintf(" Keep your %d financial goal(s) in view when allocating savings.", goals)
	}
	return msg
}
