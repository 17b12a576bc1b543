package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/finance-journal/internal/jobs"
)

const defaultCapacity = 1000

// Store is a bounded in-memory JobStore. Once it holds capacity jobs, saving
// a new job evicts the oldest finished one; unfinished jobs are never
// evicted, so the store can temporarily exceed capacity under backlog.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*jobs.RecordRunJob
	capacity int
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithCapacity bounds the number of retained jobs.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		jobs:     make(map[string]*jobs.RecordRunJob),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveJob stores a copy of job, replacing any previous state for its ID.
func (s *Store) SaveJob(ctx context.Context, job *jobs.RecordRunJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.JobID]; !exists && len(s.jobs) >= s.capacity {
		s.evictOldestFinished()
	}

	stored := *job
	s.jobs[job.JobID] = &stored
	return nil
}

// evictOldestFinished drops the earliest-created terminal job, if any.
// Callers hold s.mu.
func (s *Store) evictOldestFinished() {
	var victim *jobs.RecordRunJob
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			continue
		}
		if victim == nil || job.CreatedAt.Before(victim.CreatedAt) ||
			(job.CreatedAt.Equal(victim.CreatedAt) && job.JobID < victim.JobID) {
			victim = job
		}
	}
	if victim != nil {
		delete(s.jobs, victim.JobID)
	}
}

// GetJob returns a copy of the job with jobID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.RecordRunJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}

	out := *job
	return &out, nil
}

// ListJobs returns copies of the jobs matching filter, newest first with
// ties broken by job ID.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.RecordRunJob, error) {
	s.mu.RLock()
	result := make([]*jobs.RecordRunJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if !matches(job, filter) {
			continue
		}
		out := *job
		result = append(result, &out)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].JobID < result[j].JobID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.RecordRunJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matches(job *jobs.RecordRunJob, filter jobs.JobFilter) bool {
	switch {
	case filter.RunID != "" && job.RunID != filter.RunID:
		return false
	case filter.UserID != 0 && job.UserID != filter.UserID:
		return false
	case filter.Status != "" && job.Status != filter.Status:
		return false
	}
	return true
}

// CountByStatus returns how many stored jobs are in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[jobs.JobStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[jobs.JobStatus]int)
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

var _ jobs.JobStore = (*Store)(nil)
