package bigquery

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-journal/internal/domain"
)

type ModelOutputRow struct {
	OutputID string `bigquery:"output_id"` // REQUIRED
	RunID    string `bigquery:"run_id"`    // REQUIRED

	Step      string `bigquery:"step"`       // REQUIRED
	ModelName string `bigquery:"model_name"` // NULLABLE
	Output    string `bigquery:"output"`     // REQUIRED
	LatencyMS int64  `bigquery:"latency_ms"` // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewModelOutputRows maps the outputs of run onto table rows.
func NewModelOutputRows(run *domain.AdviceRun) []*ModelOutputRow {
	rows := make([]*ModelOutputRow, 0, len(run.Outputs))
	for _, out := range run.Outputs {
		rows = append(rows, &ModelOutputRow{
			OutputID:  uuid.NewString(),
			RunID:     run.RunID,
			Step:      out.Step,
			ModelName: run.Model,
			Output:    out.Output,
			LatencyMS: out.LatencyMS,
			CreatedTS: out.CreatedAt.UTC(),
		})
	}
	return rows
}
