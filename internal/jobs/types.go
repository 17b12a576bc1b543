// Package jobs moves advice-run audit writes off the request path.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// JobType names the kind of work a job carries.
type JobType string

// JobTypeRecordRun writes an advice run to the audit store.
const JobTypeRecordRun JobType = "record_run"

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusRetrying  JobStatus = "retrying"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further work will happen for a job in this
// status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

var (
	// ErrJobNotFound is returned by a JobStore for an unknown job ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrQueueClosed is returned when publishing to a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// RecordRunJob carries one advice run to the audit store. The run payload
// stays in memory and is never exposed through the jobs API.
type RecordRunJob struct {
	JobID  string            `json:"job_id"`
	RunID  string            `json:"run_id"`
	UserID int64             `json:"user_id"`
	Run    *domain.AdviceRun `json:"-"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// NewRecordRunJob wraps run in a pending job. The queue assigns the ID.
func NewRecordRunJob(run *domain.AdviceRun, maxRetries int) *RecordRunJob {
	return &RecordRunJob{
		RunID:      run.RunID,
		UserID:     run.UserID,
		Run:        run,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Job is what a JobHandler receives.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *RecordRunJob) GetID() string        { return j.JobID }
func (j *RecordRunJob) GetType() JobType     { return JobTypeRecordRun }
func (j *RecordRunJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues audit jobs.
type Publisher interface {
	PublishRecordRun(ctx context.Context, job *RecordRunJob) error
	Close() error
}

// Consumer runs a JobHandler over queued jobs until stopped.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error

	// Stop waits for in-flight jobs or for ctx to end.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error makes the job eligible
// for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps job state for the status API.
type JobStore interface {
	SaveJob(ctx context.Context, job *RecordRunJob) error

	// GetJob returns ErrJobNotFound when jobID is unknown.
	GetJob(ctx context.Context, jobID string) (*RecordRunJob, error)

	// ListJobs returns matching jobs, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*RecordRunJob, error)

	// CountByStatus returns the number of stored jobs per status.
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)
}

// JobFilter narrows ListJobs. Zero fields match everything.
type JobFilter struct {
	RunID  string
	UserID int64
	Status JobStatus
	Limit  int
	Offset int
}
