package auth

import "context"

// Method selects a credential flow.
type Method string

const (
	// MethodUniversal exchanges a client ID and secret.
	MethodUniversal Method = "universal"

	// MethodOIDC exchanges an identity token issued by the CI environment.
	MethodOIDC Method = "oidc"
)

// AccessToken is an opaque bearer token. Its String and GoString forms are
// redacted so it can't leak through fmt or a logger.
type AccessToken string

// String returns a redacted placeholder.
func (t AccessToken) String() string {
	if t == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString returns a redacted placeholder for %#v.
func (t AccessToken) GoString() string {
	return "auth.AccessToken(" + t.String() + ")"
}

// Reveal returns the raw token for use in an Authorization header.
func (t AccessToken) Reveal() string {
	return string(t)
}

// TokenSource produces an access token.
//
// Contract:
// - Context: Token must honor cancellation/deadlines.
// - Errors: failures are *fault.Error values of kind config, authentication
//   or (wrapped inside authentication) timeout and invalid_response.
type TokenSource interface {
	// Method returns the credential flow this source uses.
	Method() Method

	// Token performs the login exchange.
	Token(ctx context.Context) (AccessToken, error)
}

// IdentityTokenProvider obtains an identity token from the invoking environment.
type IdentityTokenProvider interface {
	IdentityToken(ctx context.Context, audience string) (string, error)
}

// IdentityTokenFunc adapts a function to IdentityTokenProvider.
type IdentityTokenFunc func(ctx context.Context, audience string) (string, error)

// IdentityToken calls f.
func (f IdentityTokenFunc) IdentityToken(ctx context.Context, audience string) (string, error) {
	return f(ctx, audience)
}
