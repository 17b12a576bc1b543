package bigquery

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-journal/internal/domain"
)

func TestNewAdviceRunRow(t *testing.T) {
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	run := &domain.AdviceRun{
		RunID:         "run-1",
		UserID:        9,
		NoteChars:     120,
		Provider:      "gemini",
		Model:         "gemini-2.5-flash",
		PromptVersion: "v1",
		Status:        domain.RunStatusFailed,
		ErrorMessage:  strings.Repeat("x", 2500),
		StartedAt:     started,
		FinishedAt:    started.Add(time.Second),
		Outputs:       []domain.ModelOutput{{Step: "income"}, {Step: "expenses"}},
	}

	row := NewAdviceRunRow(run)
	if row.RunID != "run-1" || row.UserID != 9 || row.NoteChars != 120 || row.ModelCalls != 2 {
		t.Errorf("unexpected row %+v", row)
	}
	if !row.ErrorMessage.Valid || len(row.ErrorMessage.StringVal) != maxErrorMessageLen {
		t.Errorf("expected truncated error message, got %d chars", len(row.ErrorMessage.StringVal))
	}
	if row.StartedTS.Location() != time.UTC {
		t.Errorf("expected UTC timestamps")
	}

	run.ErrorMessage = ""
	if NewAdviceRunRow(run).ErrorMessage.Valid {
		t.Error("expected NULL error message for successful runs")
	}
}

func TestNewModelOutputRows(t *testing.T) {
	now := time.Now()
	run := &domain.AdviceRun{
		RunID: "run-2",
		Model: "gpt-4o",
		Outputs: []domain.ModelOutput{
			{Step: "advice", Output: "save", LatencyMS: 12, CreatedAt: now},
			{Step: "summary", Output: "ok", LatencyMS: 30, CreatedAt: now},
		},
	}

	rows := NewModelOutputRows(run)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].OutputID == "" || rows[0].OutputID == rows[1].OutputID {
		t.Error("expected distinct output ids")
	}
	if rows[1].RunID != "run-2" || rows[1].Step != "summary" || rows[1].ModelName != "gpt-4o" || rows[1].LatencyMS != 30 {
		t.Errorf("unexpected row %+v", rows[1])
	}
}

func TestTableRef(t *testing.T) {
	if got := tableRef("p", "d", "t"); got != "`p.d.t`" {
		t.Errorf("got %s", got)
	}
}
