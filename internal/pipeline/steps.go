package pipeline

import (
	"context"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// PipelineStep represents a single stage of an advice run.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Note     string
	Branches domain.BranchResult
	Advice   domain.AdvicePackage

	trace *trace
}

// BranchStep fans the note out to the three extraction prompts.
type BranchStep struct {
	p *Pipeline
}

func (s *BranchStep) Execute(ctx context.Context, state *PipelineState) error {
	branches, err := s.p.runBranches(ctx, state.Note, state.trace)
	if err != nil {
		return err
	}
	state.Branches = branches
	return nil
}

// AggregateStep runs the advice and summary chains over the branch results.
type AggregateStep struct {
	p *Pipeline
}

func (s *AggregateStep) Execute(ctx context.Context, state *PipelineState) error {
	pkg, err := s.p.aggregate(ctx, state.Branches, state.trace)
	if err != nil {
		return err
	}
	state.Advice = pkg
	return nil
}
