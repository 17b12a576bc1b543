package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/journal"
	"github.com/dvloznov/finance-journal/internal/storage"
	"github.com/dvloznov/finance-journal/internal/storage/sqlite"
)

func setup(t *testing.T) (*journal.Service, *sqlite.SQLiteStore, int64) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	userID, err := store.CreateUser(ctx, &domain.User{Username: "alice", HashedPassword: "h"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return journal.NewService(store), store, userID
}

var branches = domain.BranchResult{
	Income:   "Income:\nSalary: 4000",
	Expenses: "Expenses:\nRent: 1000",
	Concerns: "savings",
}

func TestSaveGuard(t *testing.T) {
	tests := []struct {
		name      string
		advice    string
		wantSaved bool
		wantRows  int
	}{
		{name: "empty advice", advice: "", wantSaved: false, wantRows: 0},
		{name: "whitespace advice", advice: " \n\t ", wantSaved: false, wantRows: 0},
		{name: "real advice", advice: "Save 20%", wantSaved: true, wantRows: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, userID := setup(t)
			ctx := context.Background()

			id, saved, err := svc.Save(ctx, userID, "note", branches, domain.AdvicePackage{
				Advice:  tt.advice,
				Summary: "summary",
			})
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if saved != tt.wantSaved {
				t.Errorf("expected saved=%v, got %v", tt.wantSaved, saved)
			}
			if !saved && id != 0 {
				t.Errorf("expected zero id when not saved, got %d", id)
			}

			recs, err := store.ListJournals(ctx, userID)
			if err != nil {
				t.Fatalf("ListJournals failed: %v", err)
			}
			if len(recs) != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, len(recs))
			}
		})
	}
}

func TestSaveStoresFormattedText(t *testing.T) {
	svc, _, userID := setup(t)
	ctx := context.Background()

	id, _, err := svc.Save(ctx, userID, "note", branches, domain.AdvicePackage{
		Advice:           "raw advice",
		Summary:          "raw summary",
		FormattedAdvice:  "Formatted advice",
		FormattedSummary: "",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, err := svc.Get(ctx, userID, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Advice != "Formatted advice" {
		t.Errorf("expected formatted advice, got %q", rec.Advice)
	}
	if rec.BudgetSummary != "raw summary" {
		t.Errorf("expected raw summary fallback, got %q", rec.BudgetSummary)
	}
}

func TestRetrieveAndList(t *testing.T) {
	svc, _, userID := setup(t)
	ctx := context.Background()

	id, saved, err := svc.Save(ctx, userID, "first note", branches, domain.AdvicePackage{Advice: "a"})
	if err != nil || !saved {
		t.Fatalf("Save failed: saved=%v err=%v", saved, err)
	}
	if _, _, err := svc.Save(ctx, userID, "second note", branches, domain.AdvicePackage{Advice: "b"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	income, expenses, err := svc.Retrieve(ctx, userID, id)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if income != branches.Income || expenses != branches.Expenses {
		t.Errorf("unexpected retrieve result %q / %q", income, expenses)
	}

	if _, _, err := svc.Retrieve(ctx, userID, id+100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Retrieve(ctx, userID+1, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user, got %v", err)
	}

	recs, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 2 || recs[0].Note != "first note" || recs[1].Note != "second note" {
		t.Errorf("unexpected list %+v", recs)
	}
}

func TestSaveReturnsStoreErrors(t *testing.T) {
	svc, _, _ := setup(t)
	// Unknown owner violates the foreign key.
	_, saved, err := svc.Save(context.Background(), 9999, "note", branches, domain.AdvicePackage{Advice: "a"})
	if err == nil {
		t.Fatal("expected error")
	}
	if saved {
		t.Error("expected saved=false on error")
	}
}
