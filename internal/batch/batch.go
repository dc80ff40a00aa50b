// Package batch evaluates several changelogs concurrently.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/ariel-frischer/kacl/internal/source"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallel is used when no limit is configured.
const DefaultMaxParallel = 4

// Outcome is the evaluation of one source. Exactly one of Result and Err is set.
type Outcome struct {
	Source   source.Source
	Result   *changelog.Result
	Err      error
	Duration time.Duration
}

// Runner evaluates sources with bounded concurrency.
type Runner struct {
	// maxParallel is the maximum number of concurrent evaluations.
	maxParallel int
	// failFast cancels outstanding evaluations after the first failure.
	failFast bool
	// options are passed to every evaluation.
	options changelog.Options
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxParallel sets the maximum concurrent evaluation count.
func WithMaxParallel(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.maxParallel = n
		}
	}
}

// WithFailFast enables abort on first failure.
func WithFailFast(failFast bool) Option {
	return func(r *Runner) {
		r.failFast = failFast
	}
}

// WithOptions sets the evaluation options.
func WithOptions(opts changelog.Options) Option {
	return func(r *Runner) {
		r.options = opts
	}
}

// New creates a Runner. Default maxParallel is DefaultMaxParallel.
func New(opts ...Option) *Runner {
	r := &Runner{maxParallel: DefaultMaxParallel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every source and returns one Outcome per source, in input
// order. Per-source failures are recorded in Outcome.Err; Run itself only
// fails when fail-fast is enabled (first failure) or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, sources []source.Source) ([]Outcome, error) {
	outcomes := make([]Outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = r.evaluate(gctx, src)
			if r.failFast && outcomes[i].Err != nil {
				return fmt.Errorf("%s: %w", src.Name(), outcomes[i].Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// evaluate reads and evaluates a single source.
func (r *Runner) evaluate(ctx context.Context, src source.Source) Outcome {
	start := time.Now()
	out := Outcome{Source: src}

	text, err := src.Read(ctx)
	if err != nil {
		out.Err = err
		out.Duration = time.Since(start)
		return out
	}

	out.Result, out.Err = changelog.Evaluate(text, r.options)
	out.Duration = time.Since(start)
	return out
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
