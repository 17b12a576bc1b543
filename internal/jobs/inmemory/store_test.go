package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/finance-journal/internal/jobs"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStore_SaveAndGetReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.RecordRunJob{JobID: "a", RunID: "r", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
	job.Status = jobs.JobStatusFailed

	got, err := s.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("store was mutated through caller pointer: %s", got.Status)
	}
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, &jobs.RecordRunJob{}); err == nil {
		t.Error("expected error for empty job ID")
	}
	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i, st := range []jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusFailed, jobs.JobStatusCompleted} {
		_ = s.SaveJob(ctx, &jobs.RecordRunJob{
			JobID:     string(rune('a' + i)),
			RunID:     "run-" + string(rune('a'+i)),
			UserID:    int64(i%2 + 1),
			Status:    st,
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		})
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"c", "b", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusCompleted}, []string{"c", "a"}},
		{"by run", jobs.JobFilter{RunID: "run-b"}, []string{"b"}},
		{"by user", jobs.JobFilter{UserID: 1}, []string{"c", "a"}},
		{"user and status", jobs.JobFilter{UserID: 2, Status: jobs.JobStatusCompleted}, []string{}},
		{"limit", jobs.JobFilter{Limit: 1}, []string{"c"}},
		{"offset", jobs.JobFilter{Offset: 2}, []string{"a"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d jobs, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].JobID)
				}
			}
		})
	}
}

func TestStore_EvictsOldestFinishedJob(t *testing.T) {
	s := NewStore(WithCapacity(2))
	ctx := context.Background()

	_ = s.SaveJob(ctx, &jobs.RecordRunJob{JobID: "old-running", Status: jobs.JobStatusRunning, CreatedAt: t0})
	_ = s.SaveJob(ctx, &jobs.RecordRunJob{JobID: "done", Status: jobs.JobStatusCompleted, CreatedAt: t0.Add(time.Minute)})
	_ = s.SaveJob(ctx, &jobs.RecordRunJob{JobID: "new", Status: jobs.JobStatusPending, CreatedAt: t0.Add(2 * time.Minute)})

	if _, err := s.GetJob(ctx, "done"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("expected the finished job to be evicted, got %v", err)
	}
	for _, id := range []string{"old-running", "new"} {
		if _, err := s.GetJob(ctx, id); err != nil {
			t.Errorf("expected %s to be kept: %v", id, err)
		}
	}

	// Nothing finished is left, so the store grows past capacity.
	_ = s.SaveJob(ctx, &jobs.RecordRunJob{JobID: "newer", Status: jobs.JobStatusPending, CreatedAt: t0.Add(3 * time.Minute)})
	all, _ := s.ListJobs(ctx, jobs.JobFilter{})
	if len(all) != 3 {
		t.Errorf("expected unfinished jobs to be retained, got %d", len(all))
	}
}

func TestStore_UpdatingExistingJobDoesNotEvict(t *testing.T) {
	s := NewStore(WithCapacity(1))
	ctx := context.Background()

	job := &jobs.RecordRunJob{JobID: "a", Status: jobs.JobStatusPending, CreatedAt: t0}
	_ = s.SaveJob(ctx, job)
	job.Status = jobs.JobStatusCompleted
	_ = s.SaveJob(ctx, job)

	got, err := s.GetJob(ctx, "a")
	if err != nil || got.Status != jobs.JobStatusCompleted {
		t.Fatalf("expected updated job, got %+v, %v", got, err)
	}
}

func TestStore_CountByStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for i, st := range []jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusCompleted, jobs.JobStatusFailed} {
		_ = s.SaveJob(ctx, &jobs.RecordRunJob{JobID: string(rune('a' + i)), Status: st})
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[jobs.JobStatusCompleted] != 2 || counts[jobs.JobStatusFailed] != 1 || counts[jobs.JobStatusPending] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
