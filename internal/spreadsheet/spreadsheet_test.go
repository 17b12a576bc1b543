package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,000", "1000"},
		{"500-700", "600"},
		{"no digits here", "0"},
		{"£2,500.50 per month", "2500.5"},
		{"100 to 101", "100"},
		{"between 10, 20 and 40", "23"},
		{"", "0"},
	}
	for _, tt := range tests {
		got := NormalizeAmount(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("NormalizeAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseEntries(t *testing.T) {
	text := "Here is the income extracted:\n\n- Salary: 4,000\n* Freelance: 500-700\n\n1. **Dividends**: none\n• Gifts 50\n"
	got := ParseEntries(text)

	want := []struct {
		label  string
		amount string
	}{
		{"Salary", "4000"},
		{"Freelance", "600"},
		{"Dividends", "0"},
		{"Gifts 50", "50"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Label != w.label {
			t.Errorf("entry %d: label %q, want %q", i, got[i].Label, w.label)
		}
		if !got[i].Amount.Equal(decimal.RequireFromString(w.amount)) {
			t.Errorf("entry %d: amount %s, want %s", i, got[i].Amount, w.amount)
		}
	}
}

func TestParseEntriesHeaderOnly(t *testing.T) {
	if got := ParseEntries("Income:\n\n"); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
	if got := ParseEntries(""); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}

func TestBuildBudgetNegativeSavings(t *testing.T) {
	b := BuildBudget("Income:\nSalary: 1000", "Expenses:\nRent: 1200\nFood: 300")
	if !b.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected total income %s", b.TotalIncome)
	}
	if !b.TotalExpenses.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("unexpected total expenses %s", b.TotalExpenses)
	}
	if !b.Savings.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("expected savings -500, got %s", b.Savings)
	}
}

func TestExportWorkbook(t *testing.T) {
	data, err := Export(
		"Income:\n- Salary: 4,000\n- Side job: 500-700",
		"Expenses:\n- Rent: 1,000\n- Groceries: about 300",
	)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetIncome || sheets[1] != SheetExpenses || sheets[2] != SheetSummary {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	assertRows(t, f, SheetIncome, [][]string{
		{"Source", "Amount"},
		{"Salary", "4000"},
		{"Side job", "600"},
	})
	assertRows(t, f, SheetExpenses, [][]string{
		{"Category", "Amount"},
		{"Rent", "1000"},
		{"Groceries", "300"},
	})
	assertRows(t, f, SheetSummary, [][]string{
		{"Total Income", "4600"},
		{"Total Expenses", "1300"},
		{"Savings", "3300"},
	})
}

func TestExportEmptyTexts(t *testing.T) {
	data, err := Export("", "")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	assertRows(t, f, SheetSummary, [][]string{
		{"Total Income", "0"},
		{"Total Expenses", "0"},
		{"Savings", "0"},
	})
}

func assertRows(t *testing.T, f *excelize.File, sheet string, want [][]string) {
	t.Helper()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", sheet, err)
	}
	if len(rows) != len(want) {
		t.Fatalf("%s: expected %d rows, got %d: %v", sheet, len(want), len(rows), rows)
	}
	for i := range want {
		if len(rows[i]) != len(want[i]) {
			t.Errorf("%s row %d: got %v, want %v", sheet, i, rows[i], want[i])
			continue
		}
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("%s row %d col %d: got %q, want %q", sheet, i, j, rows[i][j], want[i][j])
			}
		}
	}
}
