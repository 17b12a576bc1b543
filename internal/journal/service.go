// Package journal persists advice results per user and reads them back.
package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
	"github.com/dvloznov/finance-journal/internal/storage"
)

// Journal write results reported to metrics.
const (
	writeSaved   = "saved"
	writeSkipped = "skipped"
	writeFailed  = "failed"
)

// Service wraps a JournalStore with the rules for when a record is written.
type Service struct {
	store storage.JournalStore
}

// NewService creates a journal service.
func NewService(store storage.JournalStore) *Service {
	return &Service{store: store}
}

// Save stores the note and its outputs for userID. Nothing is written when
// the advice is blank; saved reports whether a row was inserted.
func (s *Service) Save(ctx context.Context, userID int64, note string, branches domain.BranchResult, pkg domain.AdvicePackage) (id int64, saved bool, err error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(pkg.Advice) == "" {
		metrics.JournalWrites.WithLabelValues(writeSkipped).Inc()
		log.Debug().Int64("user_id", userID).Msg("Skipping journal write: empty advice")
		return 0, false, nil
	}

	rec := &domain.JournalRecord{
		UserID:            userID,
		Note:              note,
		ExtractedIncome:   branches.Income,
		ExtractedExpenses: branches.Expenses,
		Advice:            preferFormatted(pkg.FormattedAdvice, pkg.Advice),
		BudgetSummary:     preferFormatted(pkg.FormattedSummary, pkg.Summary),
	}

	id, err = s.store.InsertJournal(ctx, rec)
	if err != nil {
		metrics.JournalWrites.WithLabelValues(writeFailed).Inc()
		return 0, false, fmt.Errorf("journal.Save: %w", err)
	}

	metrics.JournalWrites.WithLabelValues(writeSaved).Inc()
	log.Info().Int64("user_id", userID).Int64("journal_id", id).Msg("Journal record saved")
	return id, true, nil
}

// Retrieve returns the extracted income and expenses of one record.
// Returns storage.ErrNotFound when the record does not exist for userID.
func (s *Service) Retrieve(ctx context.Context, userID, recordID int64) (income, expenses string, err error) {
	rec, err := s.store.GetJournal(ctx, userID, recordID)
	if err != nil {
		return "", "", fmt.Errorf("journal.Retrieve: %w", err)
	}
	return rec.ExtractedIncome, rec.ExtractedExpenses, nil
}

// Get returns a full record owned by userID.
func (s *Service) Get(ctx context.Context, userID, recordID int64) (*domain.JournalRecord, error) {
	rec, err := s.store.GetJournal(ctx, userID, recordID)
	if err != nil {
		return nil, fmt.Errorf("journal.Get: %w", err)
	}
	return rec, nil
}

// List returns every record of userID in insertion order.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.JournalRecord, error) {
	recs, err := s.store.ListJournals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("journal.List: %w", err)
	}
	return recs, nil
}

func preferFormatted(formatted, raw string) string {
	if strings.TrimSpace(formatted) != "" {
		return formatted
	}
	return raw
}
