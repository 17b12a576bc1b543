// Package storage defines the persistence contracts for users and journal records.
package storage

import (
	"context"
	"errors"

	"github.com/dvloznov/finance-journal/internal/domain"
)

var (
	// ErrNotFound is returned when a requested row does not exist or is not
	// owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate entry")
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts user and returns its assigned ID.
	// Returns ErrDuplicate when the username is already taken.
	CreateUser(ctx context.Context, user *domain.User) (int64, error)

	// GetUserByUsername looks a user up by exact, case-sensitive username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUserByID returns ErrNotFound when no such user exists.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// JournalStore persists journal records.
type JournalStore interface {
	// InsertJournal writes rec in a single transaction and returns its ID.
	InsertJournal(ctx context.Context, rec *domain.JournalRecord) (int64, error)

	// GetJournal returns the record only when it belongs to userID.
	GetJournal(ctx context.Context, userID, recordID int64) (*domain.JournalRecord, error)

	// ListJournals returns a user's records in insertion order.
	ListJournals(ctx context.Context, userID int64) ([]domain.JournalRecord, error)
}

// Store combines every persistence capability.
type Store interface {
	UserStore
	JournalStore
	Close() error
}
