package resilience

import (
	"context"
	"errors"
	"net"
	"time"
)

// DefaultTimeout bounds every outbound call of a run.
const DefaultTimeout = 10 * time.Second

// Budget is the time a single outbound call may take.
// The zero value uses DefaultTimeout.
type Budget time.Duration

// Limit returns the effective bound.
func (b Budget) Limit() time.Duration {
	if b <= 0 {
		return DefaultTimeout
	}
	return time.Duration(b)
}

// Do runs op under the budget.
//
// When the deadline passes, Do returns a *TimeoutError whether op is still
// running or gave up itself with a deadline error, as net/http does when the
// request context expires. Cancellation of the parent context is returned
// unchanged.
func (b Budget) Do(ctx context.Context, op func(context.Context) error) error {
	limit := b.Limit()
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && IsDeadline(err) {
			return &TimeoutError{After: limit}
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{After: limit}
		}
		return ctx.Err()
	}
}

// IsDeadline reports whether err is a deadline or network timeout.
func IsDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
