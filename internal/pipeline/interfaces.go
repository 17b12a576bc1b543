package pipeline

import (
	"context"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// Completer is the single model capability the pipeline depends on.
// llm.Gateway satisfies it; tests use scripted fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RunRecorder receives a description of every finished run.
// Implementations must not block the caller for long; the API server
// hands runs to the job queue.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *domain.AdviceRun) error
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
