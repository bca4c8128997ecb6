package health

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/infisical-secrets/resilience"
)

// Outcome is a named check result.
type Outcome struct {
	Name string
	Result
}

// Preflight runs named checks concurrently, each under the same time budget.
type Preflight struct {
	budget resilience.Budget
	names  []string
	checks []Check
}

// NewPreflight creates a Preflight whose checks may each take up to timeout.
// A non-positive timeout uses resilience.DefaultTimeout.
func NewPreflight(timeout time.Duration) *Preflight {
	return &Preflight{budget: resilience.Budget(timeout)}
}

// Add appends a check. Adding a name twice replaces the earlier check in place.
func (p *Preflight) Add(name string, check Check) {
	for i, n := range p.names {
		if n == name {
			p.checks[i] = check
			return
		}
	}
	p.names = append(p.names, name)
	p.checks = append(p.checks, check)
}

// Names returns the check names in the order they were added.
func (p *Preflight) Names() []string {
	return append([]string(nil), p.names...)
}

// Run executes every check and returns the outcomes in the order they were added.
func (p *Preflight) Run(ctx context.Context) []Outcome {
	out := make([]Outcome, len(p.checks))

	var g errgroup.Group
	for i, check := range p.checks {
		g.Go(func() error {
			out[i] = Outcome{Name: p.names[i], Result: p.run(ctx, check)}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (p *Preflight) run(ctx context.Context, check Check) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Fail("check cancelled", err)
	}

	done := make(chan Result, 1)
	err := p.budget.Do(ctx, func(ctx context.Context) error {
		done <- check.Run(ctx)
		return nil
	})

	var result Result
	switch {
	case errors.Is(err, resilience.ErrTimeout):
		result = Fail("check timed out", ErrCheckTimeout)
	case err != nil:
		result = Fail("check cancelled", err)
	default:
		result = <-done
	}
	result.Duration = time.Since(start)
	return result
}

// Overall folds outcomes into one status: fail beats warn beats ok.
func Overall(outcomes []Outcome) Status {
	status := StatusOK
	for _, o := range outcomes {
		if o.Status > status {
			status = o.Status
		}
	}
	return status
}
