// Package spreadsheet converts extracted income and expense text into an
// xlsx budget workbook.
package spreadsheet

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names and headers of the generated workbook.
const (
	SheetIncome   = "Income"
	SheetExpenses = "Expenses"
	SheetSummary  = "Summary"

	// ContentType is the MIME type of the exported workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Budget is the tabular form of a pair of income and expense texts.
type Budget struct {
	Income        []Entry
	Expenses      []Entry
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Savings       decimal.Decimal
}

// BuildBudget parses both texts and computes the totals. Savings may be
// negative.
func BuildBudget(incomeText, expensesText string) *Budget {
	b := &Budget{
		Income:   ParseEntries(incomeText),
		Expenses: ParseEntries(expensesText),
	}
	b.TotalIncome = Total(b.Income)
	b.TotalExpenses = Total(b.Expenses)
	b.Savings = b.TotalIncome.Sub(b.TotalExpenses)
	return b
}

// Export renders the budget workbook for the given texts and returns the
// xlsx bytes. Nothing is written to disk.
func Export(incomeText, expensesText string) ([]byte, error) {
	return BuildBudget(incomeText, expensesText).Workbook()
}

// Workbook renders b as xlsx bytes.
func (b *Budget) Workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetIncome); err != nil {
		return nil, fmt.Errorf("Export: rename sheet: %w", err)
	}
	if err := writeEntries(f, SheetIncome, "Source", b.Income); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetExpenses); err != nil {
		return nil, fmt.Errorf("Export: new sheet %s: %w", SheetExpenses, err)
	}
	if err := writeEntries(f, SheetExpenses, "Category", b.Expenses); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("Export: new sheet %s: %w", SheetSummary, err)
	}
	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total Income", b.TotalIncome},
		{"Total Expenses", b.TotalExpenses},
		{"Savings", b.Savings},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("Export: cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetSummary, cell, &[]interface{}{row.label, row.value.InexactFloat64()}); err != nil {
			return nil, fmt.Errorf("Export: write summary %s: %w", row.label, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("Export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntries(f *excelize.File, sheet, labelHeader string, entries []Entry) error {
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{labelHeader, "Amount"}); err != nil {
		return fmt.Errorf("Export: write %s header: %w", sheet, err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("Export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{e.Label, e.Amount.InexactFloat64()}); err != nil {
			return fmt.Errorf("Export: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
