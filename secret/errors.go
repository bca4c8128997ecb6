package secret

import "errors"

// Sentinel errors for secret fetching.
var (
	ErrMissingProject = errors.New("secret: project slug is required")
	ErrMissingToken   = errors.New("secret: access token is required")
	ErrMissingSecrets = errors.New("secret: invalid response format: secrets field missing")
	ErrUnexpectedBody = errors.New("secret: invalid response format: body is not JSON")
	ErrFetchRejected  = errors.New("secret: fetch rejected")
)
