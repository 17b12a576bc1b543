package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/jobs"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
)

const (
	defaultWorkers    = 2
	defaultMaxRetries = 3
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs are lost when the process exits.
type Queue struct {
	jobChan   chan *jobs.RecordRunJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool

	workers   int
	retryBase time.Duration
	log       zerolog.Logger
}

// Option customizes a Queue.
type Option func(*Queue)

// WithWorkers sets the number of concurrent workers started by Start.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithRetryBase sets the delay unit for retries; attempt n waits n*base.
func WithRetryBase(d time.Duration) Option {
	return func(q *Queue) {
		q.retryBase = d
	}
}

// WithLogger sets the logger used for job failures.
func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) {
		q.log = l
	}
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishRecordRun blocks.
func NewQueue(bufferSize int, store jobs.JobStore, opts ...Option) *Queue {
	q := &Queue{
		jobChan:   make(chan *jobs.RecordRunJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   defaultWorkers,
		retryBase: time.Second,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// PublishRecordRun implements the Publisher interface.
func (q *Queue) PublishRecordRun(ctx context.Context, job *jobs.RecordRunJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

// Start implements the Consumer interface.
// It starts the configured number of workers, each calling handler per job.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return jobs.ErrQueueClosed
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			q.drain(ctx, handler)
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// drain processes jobs still buffered when the queue was stopped. It gives
// up when ctx ends.
func (q *Queue) drain(ctx context.Context, handler jobs.JobHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
		default:
			return
		}
	}
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.RecordRunJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	jlog := logger.WithFields(q.log, map[string]interface{}{
		"job_id": job.JobID,
		"run_id": job.RunID,
	})

	err := handler(logger.WithContext(ctx, jlog), job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = jobs.JobStatusRetrying
			metrics.AuditJobs.WithLabelValues(string(jobs.JobStatusRetrying)).Inc()

			jlog.Warn().Err(err).
				Int("retry", job.RetryCount).
				Msg("Audit job failed, retrying")

			backoff := time.Duration(job.RetryCount) * q.retryBase
			retry := *job
			time.AfterFunc(backoff, func() {
				retry.Status = jobs.JobStatusPending
				retry.StartedAt = nil
				retry.CompletedAt = nil
				if err := q.PublishRecordRun(ctx, &retry); err != nil {
					q.markFailed(&retry, err)
				}
			})
		} else {
			job.Status = jobs.JobStatusFailed
			metrics.AuditJobs.WithLabelValues(string(jobs.JobStatusFailed)).Inc()
			jlog.Error().Err(err).Msg("Audit job failed")
		}
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		metrics.AuditJobs.WithLabelValues(string(jobs.JobStatusCompleted)).Inc()
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// markFailed records a retry that could not be re-enqueued.
func (q *Queue) markFailed(job *jobs.RecordRunJob, err error) {
	job.Status = jobs.JobStatusFailed
	job.Error = err.Error()
	metrics.AuditJobs.WithLabelValues(string(jobs.JobStatusFailed)).Inc()
	if q.store != nil {
		_ = q.store.SaveJob(context.Background(), job)
	}
}

// Stop implements the Consumer interface.
// It rejects further publishes and waits until the workers have finished
// in-flight and buffered jobs, or until ctx ends. Retries scheduled after
// Stop are marked failed.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
