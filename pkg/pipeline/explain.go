package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// Explainer renders the animated explanation of a forced-choice trial and
// hands it to Emit. It implements flow.Explainer, so a session controller
// can play explanations through the same cached pipeline as the CLI.
type Explainer struct {
	Runner  *Runner
	Options Options
	// Emit receives the finished result. A nil Emit drops it.
	Emit func(ctx context.Context, res *Result) error
}

// Explain runs the full pipeline for trial with animation enabled.
func (e *Explainer) Explain(ctx context.Context, trial *stimulus.Trial) error {
	opts := e.Options
	opts.Animated = true
	res, err := e.Runner.Execute(ctx, trial, opts)
	if err != nil {
		return fmt.Errorf("explain %s: %w", trial.Rule, err)
	}
	if e.Emit == nil {
		return nil
	}
	return e.Emit(ctx, res)
}
