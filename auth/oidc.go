package auth

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
)

// OIDCConfig configures OIDC auth.
type OIDCConfig struct {
	// Domain is the service base URL. A missing scheme defaults to https.
	Domain string

	// IdentityID is the machine identity to log in as.
	IdentityID string

	// Audience scopes the identity token requested from the environment.
	// When set, the token's aud claim must contain it.
	Audience string
}

// OIDC exchanges an environment-issued identity token for an access token.
type OIDC struct {
	cfg      OIDCConfig
	endpoint string
	provider IdentityTokenProvider
	client   *loginClient
	now      func() time.Time
}

// NewOIDC validates cfg and creates an OIDC token source.
func NewOIDC(cfg OIDCConfig, provider IdentityTokenProvider, opts ...Option) (*OIDC, error) {
	const op = "auth.oidc"

	if strings.TrimSpace(cfg.IdentityID) == "" {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingIdentityID)
	}
	if provider == nil {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingProvider)
	}
	domain, err := NormalizeDomain(cfg.Domain)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfig, op, err)
	}

	return &OIDC{
		cfg:      cfg,
		endpoint: domain + oidcLoginPath,
		provider: provider,
		client:   newLoginClient(opts...),
		now:      time.Now,
	}, nil
}

// Method returns MethodOIDC.
func (o *OIDC) Method() Method {
	return MethodOIDC
}

// Token obtains an identity token, checks it locally, and exchanges it.
func (o *OIDC) Token(ctx context.Context) (AccessToken, error) {
	const op = "auth.oidc"

	idToken, err := o.provider.IdentityToken(ctx, o.cfg.Audience)
	if err != nil {
		return "", fault.Wrap(fault.KindAuthentication, op, fmt.Errorf("obtain identity token: %w", err))
	}
	if err := o.inspect(ctx, idToken); err != nil {
		return "", fault.Wrap(fault.KindAuthentication, op, err)
	}

	form := url.Values{}
	form.Set("identityId", o.cfg.IdentityID)
	form.Set("jwt", idToken)

	return o.client.login(ctx, op, o.endpoint, form)
}

// inspect parses the identity token without verifying its signature (the
// service does that) and rejects tokens the service would refuse anyway.
func (o *OIDC) inspect(ctx context.Context, raw string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(raw), claims); err != nil {
		return ErrIdentityTokenMalformed
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return ErrIdentityTokenMalformed
	}
	if exp != nil && !exp.After(o.now()) {
		return ErrIdentityTokenExpired
	}

	if o.cfg.Audience != "" {
		aud, err := claims.GetAudience()
		if err != nil || !containsString(aud, o.cfg.Audience) {
			return ErrAudienceMismatch
		}
	}

	names := make([]string, 0, len(claims))
	for k := range claims {
		names = append(names, k)
	}
	sort.Strings(names)
	o.client.logger.Debug(ctx, "identity token accepted",
		observe.Field{Key: "claims", Value: names},
	)
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var _ TokenSource = (*OIDC)(nil)
