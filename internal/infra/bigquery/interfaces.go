package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// AuditRepository records advice runs for later analysis.
type AuditRepository interface {
	// RecordRun writes the run row followed by one row per model output.
	RecordRun(ctx context.Context, run *domain.AdviceRun) error

	// ListRecentRuns returns up to limit runs, newest first. A userID of 0
	// includes every user.
	ListRecentRuns(ctx context.Context, userID int64, limit int) ([]*AdviceRunRow, error)

	Close() error
}

// BigQueryAuditRepository is the BigQuery implementation of AuditRepository.
// It holds a shared client to avoid creating a connection per operation.
type BigQueryAuditRepository struct {
	client  *bigquery.Client
	dataset string
}

var _ AuditRepository = (*BigQueryAuditRepository)(nil)

// NewBigQueryAuditRepository creates a repository writing to project.dataset.
func NewBigQueryAuditRepository(ctx context.Context, project, dataset string) (*BigQueryAuditRepository, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryAuditRepository: creating client: %w", err)
	}
	return &BigQueryAuditRepository{
		client:  client,
		dataset: dataset,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryAuditRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// RecordRun implements AuditRepository.
func (r *BigQueryAuditRepository) RecordRun(ctx context.Context, run *domain.AdviceRun) error {
	if err := InsertAdviceRunWithClient(ctx, r.client, r.dataset, NewAdviceRunRow(run)); err != nil {
		return err
	}
	for _, row := range NewModelOutputRows(run) {
		if err := InsertModelOutputWithClient(ctx, r.client, r.dataset, row); err != nil {
			return err
		}
	}
	return nil
}

// ListRecentRuns implements AuditRepository.
func (r *BigQueryAuditRepository) ListRecentRuns(ctx context.Context, userID int64, limit int) ([]*AdviceRunRow, error) {
	return ListRecentRunsWithClient(ctx, r.client, r.dataset, userID, limit)
}
