package resilience

import (
	"errors"
	"time"
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("resilience: operation timed out")

// TimeoutError reports a call that exceeded its budget.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return ErrTimeout.Error() + " after " + e.After.String()
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
