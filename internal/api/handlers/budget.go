package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/budget"
	"github.com/dvloznov/finance-journal/internal/logger"
)

// BudgetHandler serves structured budget generation.
type BudgetHandler struct {
	log zerolog.Logger
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{log: log}
}

type budgetSummaryJSON struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetSavings    float64 `json:"net_savings"`
	SavingsRate   float64 `json:"savings_rate"`
}

type budgetResponseJSON struct {
	Summary budgetSummaryJSON  `json:"summary"`
	Details map[string]float64 `json:"details"`
	Message string             `json:"message"`
}

// Generate handles POST /api/budget/generate
func (h *BudgetHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req budget.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := budget.Generate(req)
	if err != nil {
		if errors.Is(err, budget.ErrInvalidRequest) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to generate budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	details := make(map[string]float64, len(resp.Details))
	for name, amount := range resp.Details {
		details[name] = amount.InexactFloat64()
	}

	middleware.WriteJSON(w, http.StatusOK, budgetResponseJSON{
		Summary: budgetSummaryJSON{
			TotalIncome:   resp.Summary.TotalIncome.InexactFloat64(),
			TotalExpenses: resp.Summary.TotalExpenses.InexactFloat64(),
			NetSavings:    resp.Summary.NetSavings.InexactFloat64(),
			SavingsRate:   resp.Summary.SavingsRate.InexactFloat64(),
		},
		Details: details,
		Message: resp.Message,
	})
}
