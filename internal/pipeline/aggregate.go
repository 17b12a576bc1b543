package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// Aggregate derives advice from the concerns branch and a budget summary from
// the income and expenses branches, then formats each one. The two chains run
// concurrently; a failure anywhere aborts both and nothing partial is returned.
func (p *Pipeline) Aggregate(ctx context.Context, branches domain.BranchResult) (domain.AdvicePackage, error) {
	return p.aggregate(ctx, branches, nil)
}

func (p *Pipeline) aggregate(ctx context.Context, branches domain.BranchResult, tr *trace) (domain.AdvicePackage, error) {
	var pkg domain.AdvicePackage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		advice, formatted, err := p.adviceChain(gctx, tr, branches.Concerns)
		if err != nil {
			return err
		}
		pkg.Advice, pkg.FormattedAdvice = advice, formatted
		return nil
	})
	g.Go(func() error {
		summary, err := p.complete(gctx, tr, StepSummary, KindSummary, map[string]string{
			"income":   branches.Income,
			"expenses": branches.Expenses,
		})
		if err != nil {
			return err
		}
		formatted, err := p.complete(gctx, tr, StepFormatSummary, KindFormat, map[string]string{
			"input": summary,
		})
		if err != nil {
			return err
		}
		pkg.Summary, pkg.FormattedSummary = summary, formatted
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.AdvicePackage{}, fmt.Errorf("Aggregate: %w", err)
	}
	return pkg, nil
}

func (p *Pipeline) adviceChain(ctx context.Context, tr *trace, concerns string) (advice, formatted string, err error) {
	advice, err = p.complete(ctx, tr, StepAdvice, KindAdvice, map[string]string{
		"concerns": concerns,
	})
	if err != nil {
		return "", "", err
	}
	formatted, err = p.complete(ctx, tr, StepFormatAdvice, KindFormat, map[string]string{
		"input": advice,
	})
	if err != nil {
		return "", "", err
	}
	return advice, formatted, nil
}

// Advice is the outcome of the advice chain run over a free-form question.
type Advice struct {
	Advice      string
	Formatted   string
	Suggestions []string
}

// Advise runs only the advice and format steps, treating prompt as the
// concerns text. No branch extraction happens and nothing is recorded.
func (p *Pipeline) Advise(ctx context.Context, prompt string) (*Advice, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyNote
	}
	advice, formatted, err := p.adviceChain(ctx, nil, prompt)
	if err != nil {
		return nil, fmt.Errorf("Advise: %w", err)
	}
	return &Advice{
		Advice:      advice,
		Formatted:   formatted,
		Suggestions: Suggestions(formatted),
	}, nil
}
