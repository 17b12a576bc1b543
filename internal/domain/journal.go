package domain

import (
	"time"
)

// BranchResult holds the three independent analyses extracted from a note.
type BranchResult struct {
	Income   string
	Expenses string
	Concerns string
}

// AdvicePackage holds the second-stage outputs derived from a BranchResult.
// Advice depends only on Concerns; Summary depends only on Income and Expenses.
type AdvicePackage struct {
	Advice           string
	Summary          string
	FormattedAdvice  string
	FormattedSummary string
}

// JournalRecord is one persisted note with its model outputs.
// Records are immutable once written.
type JournalRecord struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Note              string    `json:"journal_note"`
	ExtractedIncome   string    `json:"ai_extracted_income"`
	ExtractedExpenses string    `json:"ai_extracted_expenses"`
	Advice            string    `json:"ai_financial_advice"`
	BudgetSummary     string    `json:"ai_budget_summary"`
	CreatedAt         time.Time `json:"created_at"`
}

// Profile carries the optional descriptive fields of a user.
type Profile struct {
	FirstName string
	LastName  string
	Image     string
}

// User is a registered account. HashedPassword is never serialized.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Image          string `json:"image"`
}
