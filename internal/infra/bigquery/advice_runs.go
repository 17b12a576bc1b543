package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-journal/internal/domain"
)

const (
	adviceRunsTable   = "advice_runs"
	modelOutputsTable = "model_outputs"

	maxErrorMessageLen = 2000
)

type AdviceRunRow struct {
	RunID  string `bigquery:"run_id"`  // REQUIRED
	UserID int64  `bigquery:"user_id"` // REQUIRED, 0 for anonymous runs

	NoteChars     int64  `bigquery:"note_chars"`     // REQUIRED
	Provider      string `bigquery:"provider"`       // NULLABLE
	Model         string `bigquery:"model"`          // NULLABLE
	PromptVersion string `bigquery:"prompt_version"` // REQUIRED

	Status       string              `bigquery:"status"`        // REQUIRED
	ErrorMessage bigquery.NullString `bigquery:"error_message"` // NULLABLE

	StartedTS  time.Time `bigquery:"started_ts"`  // REQUIRED
	FinishedTS time.Time `bigquery:"finished_ts"` // REQUIRED

	ModelCalls int64 `bigquery:"model_calls"` // REQUIRED
}

// NewAdviceRunRow maps a domain run onto its table row.
func NewAdviceRunRow(run *domain.AdviceRun) *AdviceRunRow {
	row := &AdviceRunRow{
		RunID:         run.RunID,
		UserID:        run.UserID,
		NoteChars:     int64(run.NoteChars),
		Provider:      run.Provider,
		Model:         run.Model,
		PromptVersion: run.PromptVersion,
		Status:        run.Status,
		StartedTS:     run.StartedAt.UTC(),
		FinishedTS:    run.FinishedAt.UTC(),
		ModelCalls:    int64(len(run.Outputs)),
	}
	if run.ErrorMessage != "" {
		msg := run.ErrorMessage
		if len(msg) > maxErrorMessageLen {
			msg = msg[:maxErrorMessageLen]
		}
		row.ErrorMessage = bigquery.NullString{StringVal: msg, Valid: true}
	}
	return row
}
