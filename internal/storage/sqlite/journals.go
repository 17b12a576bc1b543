package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/storage"
)

// InsertJournal persists a journal record and returns its ID.
func (s *SQLiteStore) InsertJournal(ctx context.Context, rec *domain.JournalRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO finance_journal (
				user_id,
				journal_note,
				ai_extracted_income,
				ai_extracted_expenses,
				ai_financial_advice,
				ai_budget_summary,
				created_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rec.UserID,
			rec.Note,
			rec.ExtractedIncome,
			rec.ExtractedExpenses,
			rec.Advice,
			rec.BudgetSummary,
			rec.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert journal: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read journal id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("InsertJournal: %w", err)
	}

	rec.ID = id
	return id, nil
}

const selectJournal = `
	SELECT id, user_id, journal_note, ai_extracted_income, ai_extracted_expenses,
	       ai_financial_advice, ai_budget_summary, created_at
	FROM finance_journal
`

// GetJournal retrieves one record owned by userID.
func (s *SQLiteStore) GetJournal(ctx context.Context, userID, recordID int64) (*domain.JournalRecord, error) {
	rec, err := scanJournal(s.db.QueryRowContext(ctx,
		selectJournal+" WHERE id = ? AND user_id = ?",
		recordID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetJournal %d: %w", recordID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetJournal: %w", err)
	}
	return rec, nil
}

// ListJournals returns the user's records in insertion order.
func (s *SQLiteStore) ListJournals(ctx context.Context, userID int64) ([]domain.JournalRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectJournal+" WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("ListJournals: query: %w", err)
	}
	defer rows.Close()

	records := []domain.JournalRecord{}
	for rows.Next() {
		rec, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("ListJournals: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListJournals: iterate: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournal(row rowScanner) (*domain.JournalRecord, error) {
	rec := &domain.JournalRecord{}
	var createdAt int64
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Note,
		&rec.ExtractedIncome,
		&rec.ExtractedExpenses,
		&rec.Advice,
		&rec.BudgetSummary,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}
