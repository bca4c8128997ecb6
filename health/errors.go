package health

import "errors"

var (
	// ErrCheckTimeout indicates a check did not finish within its budget.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrUnexpectedStatus indicates the status endpoint answered with a non-2xx code.
	ErrUnexpectedStatus = errors.New("health: unexpected status code")
)
