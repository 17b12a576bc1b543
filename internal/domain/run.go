package domain

import "time"

// Run statuses recorded for audit.
const (
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// AdviceRun describes one execution of the advice pipeline.
type AdviceRun struct {
	RunID         string
	UserID        int64
	NoteChars     int
	Provider      string
	Model         string
	PromptVersion string
	Status        string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outputs       []ModelOutput
}

// ModelOutput is the raw text produced by one model step of a run.
type ModelOutput struct {
	Step      string
	Output    string
	LatencyMS int64
	CreatedAt time.Time
}
