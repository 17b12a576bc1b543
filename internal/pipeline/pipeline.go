package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
)

// ErrEmptyNote is returned when the note has no content to analyse.
var ErrEmptyNote = errors.New("journal note is empty")

// Pipeline turns a journal note into branch analyses and an advice package.
type Pipeline struct {
	completer Completer
	recorder  RunRecorder
	provider  string
	model     string
	now       func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder sends a description of every run to r.
func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithModelInfo labels recorded runs with the provider and model in use.
func WithModelInfo(provider, model string) Option {
	return func(p *Pipeline) {
		p.provider = provider
		p.model = model
	}
}

// New creates a pipeline that issues every model call through c.
func New(c Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		completer: c,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of a full run.
type Result struct {
	RunID    string
	Branches domain.BranchResult
	Advice   domain.AdvicePackage
	Outputs  []domain.ModelOutput
}

// Run executes the branch stage and then the aggregation stage.
// Aggregation is never attempted when the branch stage fails.
func (p *Pipeline) Run(ctx context.Context, note string) (*Result, error) {
	return p.RunForUser(ctx, 0, note)
}

// RunForUser is Run with the requesting user attached to the recorded run.
func (p *Pipeline) RunForUser(ctx context.Context, userID int64, note string) (*Result, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrEmptyNote
	}

	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	state := &PipelineState{
		Note:  note,
		trace: newTrace(p.now),
	}
	started := p.now()

	steps := []PipelineStep{
		&BranchStep{p: p},
		&AggregateStep{p: p},
	}

	var runErr error
	for _, step := range steps {
		if err := step.Execute(ctx, state); err != nil {
			runErr = err
			break
		}
	}

	outputs := state.trace.outputs()
	p.record(ctx, &domain.AdviceRun{
		RunID:         runID,
		UserID:        userID,
		NoteChars:     len(note),
		Provider:      p.provider,
		Model:         p.model,
		PromptVersion: PromptVersion,
		StartedAt:     started,
		FinishedAt:    p.now(),
		Outputs:       outputs,
	}, runErr)

	if runErr != nil {
		log.Error().Err(runErr).Msg("Advice run failed")
		return nil, runErr
	}

	log.Info().
		Int("model_calls", len(outputs)).
		Dur("duration", p.now().Sub(started)).
		Msg("Advice run completed")

	return &Result{
		RunID:    runID,
		Branches: state.Branches,
		Advice:   state.Advice,
		Outputs:  outputs,
	}, nil
}

func (p *Pipeline) record(ctx context.Context, run *domain.AdviceRun, runErr error) {
	if p.recorder == nil {
		return
	}
	run.Status = domain.RunStatusSuccess
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = truncate(runErr.Error(), 2000)
	}
	if err := p.recorder.RecordRun(ctx, run); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to record advice run")
	}
}

// complete renders the template for kind, calls the model and records the
// step in tr when tr is non-nil.
func (p *Pipeline) complete(ctx context.Context, tr *trace, step string, kind Kind, vars map[string]string) (string, error) {
	prompt, err := Render(kind, vars)
	if err != nil {
		return "", err
	}

	start := time.Now()
	raw, err := p.completer.Complete(ctx, prompt)
	elapsed := time.Since(start)
	metrics.ObserveStep(step, err, elapsed)
	if err != nil {
		return "", fmt.Errorf("%s step: %w", step, err)
	}

	out := cleanModelText(raw)
	tr.add(step, out, elapsed)
	return out, nil
}

// trace collects model outputs from concurrently running steps.
type trace struct {
	mu    sync.Mutex
	now   func() time.Time
	steps []domain.ModelOutput
}

func newTrace(now func() time.Time) *trace {
	return &trace{now: now, steps: make([]domain.ModelOutput, 0, stepCountPerFullRun)}
}

func (t *trace) add(step, output string, latency time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, domain.ModelOutput{
		Step:      step,
		Output:    output,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: t.now(),
	})
}

// outputs returns the recorded steps in pipeline order.
func (t *trace) outputs() []domain.ModelOutput {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ModelOutput, len(t.steps))
	copy(out, t.steps)
	sort.SliceStable(out, func(i, j int) bool {
		return stepOrder[out[i].Step] < stepOrder[out[j].Step]
	})
	return out
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
