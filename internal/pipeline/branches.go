package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// Step names used in traces, metrics and audit rows.
const (
	StepIncome          = "income"
	StepExpenses        = "expenses"
	StepConcerns        = "concerns"
	StepAdvice          = "advice"
	StepSummary         = "summary"
	StepFormatAdvice    = "format_advice"
	StepFormatSummary   = "format_summary"
	stepCountPerFullRun = 7
)

var stepOrder = map[string]int{
	StepIncome:        0,
	StepExpenses:      1,
	StepConcerns:      2,
	StepAdvice:        3,
	StepSummary:       4,
	StepFormatAdvice:  5,
	StepFormatSummary: 6,
}

// RunBranches extracts income, expenses and concerns from note with three
// concurrent model calls. The first failure cancels the other calls and no
// partial result is returned.
func (p *Pipeline) RunBranches(ctx context.Context, note string) (domain.BranchResult, error) {
	return p.runBranches(ctx, note, nil)
}

func (p *Pipeline) runBranches(ctx context.Context, note string, tr *trace) (domain.BranchResult, error) {
	var income, expenses, concerns string
	vars := map[string]string{"note": note}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := p.complete(gctx, tr, StepIncome, KindIncome, vars)
		income = out
		return err
	})
	g.Go(func() error {
		out, err := p.complete(gctx, tr, StepExpenses, KindExpenses, vars)
		expenses = out
		return err
	})
	g.Go(func() error {
		out, err := p.complete(gctx, tr, StepConcerns, KindConcerns, vars)
		concerns = out
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.BranchResult{}, fmt.Errorf("RunBranches: %w", err)
	}

	return domain.BranchResult{
		Income:   income,
		Expenses: expenses,
		Concerns: concerns,
	}, nil
}
