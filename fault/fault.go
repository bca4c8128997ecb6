// Package fault defines the error taxonomy shared by every stage of a secrets run.
//
// Each failure carries a Kind so the top-level runner can report a single
// user-facing message while operators can still inspect debug-only detail.
// Detail never appears in Error(): it may contain response excerpts that are
// not guaranteed to be secret-free.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindConfig is a missing or invalid parameter, detected before any network call.
	KindConfig Kind = "config"

	// KindAuthentication is an unreachable auth endpoint, a non-2xx status, or a missing token.
	KindAuthentication Kind = "authentication"

	// KindTimeout is a request that exceeded its time bound.
	KindTimeout Kind = "timeout"

	// KindInvalidResponse is a response body that does not have the expected shape.
	KindInvalidResponse Kind = "invalid_response"

	// KindIO is a local write failure.
	KindIO Kind = "io"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrConfig          = &Error{Kind: KindConfig}
	ErrAuthentication  = &Error{Kind: KindAuthentication}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrIO              = &Error{Kind: KindIO}
)

// Error is a classified failure.
type Error struct {
	Kind Kind   // Failure class
	Op   string // Operation that failed, e.g. "auth.universal"
	Err  error  // Underlying cause (may itself be an *Error)

	// Detail holds operator diagnostics (status codes, masked body excerpts).
	// It is surfaced only at debug verbosity.
	Detail string
}

// Error implements the error interface. Detail is deliberately omitted.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// New creates a classified error from a message.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. It returns nil when err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithDetail returns a copy of e carrying operator diagnostics.
func (e *Error) WithDetail(detail string) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// Config is shorthand for a configuration error.
func Config(op, msg string) *Error {
	return New(KindConfig, op, msg)
}

// KindOf returns the outermost kind in err's chain, or "" if unclassified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Detail collects debug diagnostics from every classified error in err's chain.
func Detail(err error) string {
	var out string
	for err != nil {
		if fe, ok := err.(*Error); ok && fe.Detail != "" {
			if out != "" {
				out += "; "
			}
			out += fe.Detail
		}
		err = errors.Unwrap(err)
	}
	return out
}
