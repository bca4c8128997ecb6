// Package resilience bounds outbound calls in time.
//
// Runs make a handful of blocking HTTP calls and none of them are retried:
// a single failure ends the run. What remains is a time budget that turns an
// exceeded deadline into a *TimeoutError, so callers can report it apart
// from other network failures.
//
//	err := resilience.Budget(10 * time.Second).Do(ctx, func(ctx context.Context) error {
//	    return callService(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // report as a timeout
//	}
package resilience
