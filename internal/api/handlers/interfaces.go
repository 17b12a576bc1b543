package handlers

import (
	"context"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/pipeline"
)

// AdviceRunner runs the advice pipeline.
type AdviceRunner interface {
	RunForUser(ctx context.Context, userID int64, note string) (*pipeline.Result, error)
	RunBranches(ctx context.Context, note string) (domain.BranchResult, error)
	Advise(ctx context.Context, prompt string) (*pipeline.Advice, error)
}

// JournalService stores and reads journal records.
type JournalService interface {
	Save(ctx context.Context, userID int64, note string, branches domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error)
	Retrieve(ctx context.Context, userID, recordID int64) (income, expenses string, err error)
	List(ctx context.Context, userID int64) ([]domain.JournalRecord, error)
}

// AccountService registers and authenticates users.
type AccountService interface {
	Register(ctx context.Context, username, password string, profile domain.Profile) (int64, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// TokenIssuer issues access tokens at login.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}
