package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// publishTimeout bounds how long a request waits for room in a full queue.
const publishTimeout = 5 * time.Second

// RunWriter persists an advice run synchronously.
type RunWriter interface {
	RecordRun(ctx context.Context, run *domain.AdviceRun) error
}

// QueueRecorder hands advice runs to a Publisher so the audit write
// happens off the request path.
type QueueRecorder struct {
	publisher  Publisher
	maxRetries int
}

// NewQueueRecorder creates a recorder publishing to p.
func NewQueueRecorder(p Publisher, maxRetries int) *QueueRecorder {
	return &QueueRecorder{publisher: p, maxRetries: maxRetries}
}

// RecordRun enqueues run. It satisfies pipeline.RunRecorder.
func (r *QueueRecorder) RecordRun(ctx context.Context, run *domain.AdviceRun) error {
	// The request context ends with the response; the job must outlive it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.publisher.PublishRecordRun(ctx, NewRecordRunJob(run, r.maxRetries)); err != nil {
		return fmt.Errorf("QueueRecorder: publish: %w", err)
	}
	return nil
}

// NewRecordRunHandler returns a JobHandler that writes each run with w.
func NewRecordRunHandler(w RunWriter) JobHandler {
	return func(ctx context.Context, job Job) error {
		rec, ok := job.(*RecordRunJob)
		if !ok {
			return fmt.Errorf("unexpected job type %s", job.GetType())
		}
		if rec.Run == nil {
			return fmt.Errorf("job %s has no run payload", rec.JobID)
		}
		return w.RecordRun(ctx, rec.Run)
	}
}
