package health

import (
	"context"
	"time"
)

// Status is the verdict of a check.
type Status int

const (
	// StatusOK means a run would get past this point.
	StatusOK Status = iota
	// StatusWarn means a run would proceed, but something deserves attention.
	StatusWarn
	// StatusFail means a run would fail.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Status   Status
	Message  string
	Details  map[string]any
	Duration time.Duration
	Err      error
}

// OK returns a passing result.
func OK(message string) Result {
	return Result{Status: StatusOK, Message: message}
}

// Warn returns a passing result that should be surfaced.
func Warn(message string) Result {
	return Result{Status: StatusWarn, Message: message}
}

// Fail returns a failing result caused by err.
func Fail(message string, err error) Result {
	return Result{Status: StatusFail, Message: message, Err: err}
}

// With returns r with one more detail set.
func (r Result) With(key string, value any) Result {
	details := make(map[string]any, len(r.Details)+1)
	for k, v := range r.Details {
		details[k] = v
	}
	details[key] = value
	r.Details = details
	return r
}

// Check is a single preflight probe.
type Check interface {
	Run(ctx context.Context) Result
}

// CheckFunc adapts a function to Check.
type CheckFunc func(ctx context.Context) Result

// Run calls f.
func (f CheckFunc) Run(ctx context.Context) Result { return f(ctx) }
