package auth

import "errors"

// Sentinel errors for credential resolution.
var (
	// Configuration errors
	ErrMissingDomain      = errors.New("auth: domain is required")
	ErrInvalidDomain      = errors.New("auth: domain is not a valid URL")
	ErrMissingCredentials = errors.New("auth: missing universal auth credentials")
	ErrMissingIdentityID  = errors.New("auth: missing identity ID")
	ErrMissingProvider    = errors.New("auth: identity token provider is required")
	ErrInvalidMethod      = errors.New("auth: invalid authentication method")

	// Identity token errors
	ErrIdentityTokenMalformed = errors.New("auth: identity token malformed")
	ErrIdentityTokenExpired   = errors.New("auth: identity token expired")
	ErrAudienceMismatch       = errors.New("auth: identity token audience mismatch")

	// Login errors
	ErrLoginRejected = errors.New("auth: login rejected")
	ErrTokenMissing  = errors.New("auth: access token missing from login response")
)
