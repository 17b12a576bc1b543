package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertAdviceRunWithClient inserts a single AdviceRunRow into <dataset>.advice_runs.
func InsertAdviceRunWithClient(ctx context.Context, client *bigquery.Client, dataset string, row *AdviceRunRow) error {
	q := client.Query(`
		INSERT INTO ` + tableRef(client.Project(), dataset, adviceRunsTable) + ` (
			run_id, user_id, note_chars,
			provider, model, prompt_version,
			status, error_message,
			started_ts, finished_ts, model_calls
		)
		VALUES (
			@run_id, @user_id, @note_chars,
			@provider, @model, @prompt_version,
			@status, @error_message,
			@started_ts, @finished_ts, @model_calls
		)
	`)

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: row.RunID},
		{Name: "user_id", Value: row.UserID},
		{Name: "note_chars", Value: row.NoteChars},
		{Name: "provider", Value: row.Provider},
		{Name: "model", Value: row.Model},
		{Name: "prompt_version", Value: row.PromptVersion},
		{Name: "status", Value: row.Status},
		{Name: "error_message", Value: row.ErrorMessage},
		{Name: "started_ts", Value: row.StartedTS},
		{Name: "finished_ts", Value: row.FinishedTS},
		{Name: "model_calls", Value: row.ModelCalls},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertAdviceRun: %w", err)
	}
	return nil
}

// ListRecentRunsWithClient returns the most recent runs, newest first.
// A userID of 0 lists runs of every user.
func ListRecentRunsWithClient(ctx context.Context, client *bigquery.Client, dataset string, userID int64, limit int) ([]*AdviceRunRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := client.Query(`
		SELECT
			run_id, user_id, note_chars,
			provider, model, prompt_version,
			status, error_message,
			started_ts, finished_ts, model_calls
		FROM ` + tableRef(client.Project(), dataset, adviceRunsTable) + `
		WHERE @user_id = 0 OR user_id = @user_id
		ORDER BY started_ts DESC
		LIMIT @limit
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: running query: %w", err)
	}

	var runs []*AdviceRunRow
	for {
		var row AdviceRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}

	return runs, nil
}
