package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/jonwraymond/infisical-secrets/fault"
)

// UniversalConfig configures universal auth.
type UniversalConfig struct {
	// Domain is the service base URL. A missing scheme defaults to https.
	Domain string

	// ClientID is the machine identity's client ID.
	ClientID string

	// ClientSecret is the machine identity's client secret.
	ClientSecret string
}

// Universal logs in with a client ID and secret.
type Universal struct {
	cfg      UniversalConfig
	endpoint string
	client   *loginClient
}

// NewUniversal validates cfg and creates a universal auth token source.
// Missing credentials or domain fail with a config error before any request.
func NewUniversal(cfg UniversalConfig, opts ...Option) (*Universal, error) {
	const op = "auth.universal"

	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingCredentials)
	}
	domain, err := NormalizeDomain(cfg.Domain)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfig, op, err)
	}

	return &Universal{
		cfg:      cfg,
		endpoint: domain + universalLoginPath,
		client:   newLoginClient(opts...),
	}, nil
}

// Method returns MethodUniversal.
func (u *Universal) Method() Method {
	return MethodUniversal
}

// Token posts the client credentials and returns the access token.
func (u *Universal) Token(ctx context.Context) (AccessToken, error) {
	form := url.Values{}
	form.Set("clientId", u.cfg.ClientID)
	form.Set("clientSecret", u.cfg.ClientSecret)

	return u.client.login(ctx, "auth.universal", u.endpoint, form)
}

var _ TokenSource = (*Universal)(nil)
