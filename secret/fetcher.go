package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/infisical-secrets/auth"
	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/resilience"
)

const (
	rawSecretsPath = "/api/v3/secrets/raw"

	// DefaultPath is the folder fetched when Scope.Path is empty.
	DefaultPath = "/"

	maxFetchBody = 32 << 20
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for fetch calls.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTimeout bounds the fetch call.
// Default: 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.budget = resilience.Budget(d)
	}
}

// WithLogger sets the logger for structural debug output.
func WithLogger(logger observe.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Fetcher retrieves raw secrets for a scope.
type Fetcher struct {
	httpClient *http.Client
	budget     resilience.Budget
	logger     observe.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{},
		budget:     resilience.Budget(resilience.DefaultTimeout),
		logger:     observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one request for the secrets in scope. It never retries.
//
// A missing domain, project or token fails with a config error before any
// request. A non-2xx status or a body without a secrets field fails with an
// invalid_response error whose debug detail carries a masked body excerpt.
func (f *Fetcher) Fetch(ctx context.Context, scope Scope, token auth.AccessToken) (*RawResponse, error) {
	const op = "secret.fetch"

	endpoint, err := f.endpoint(ctx, scope, token)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfig, op, err)
	}

	var resp *RawResponse
	err = f.budget.Do(ctx, func(ctx context.Context) error {
		r, err := f.get(ctx, op, endpoint, token)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrTimeout) {
			return nil, fault.Wrap(fault.KindTimeout, op, err)
		}
		return nil, err
	}
	return resp, nil
}

func (f *Fetcher) endpoint(ctx context.Context, scope Scope, token auth.AccessToken) (string, error) {
	domain, err := auth.NormalizeDomain(scope.Domain)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(scope.Project) == "" {
		return "", ErrMissingProject
	}
	if strings.TrimSpace(token.Reveal()) == "" {
		return "", ErrMissingToken
	}

	path := scope.Path
	if path == "" {
		path = DefaultPath
	}

	q := url.Values{}
	q.Set("secretPath", path)
	q.Set("environment", scope.Environment)
	q.Set("include_imports", strconv.FormatBool(scope.IncludeImports))
	q.Set("recursive", strconv.FormatBool(scope.Recursive))
	q.Set("workspaceSlug", scope.Project)
	q.Set("expandSecretReferences", "true")

	f.logger.Debug(ctx, "fetch request",
		observe.Field{Key: "environment", Value: scope.Environment},
		observe.Field{Key: "project", Value: scope.Project},
		observe.Field{Key: "path", Value: path},
		observe.Field{Key: "include_imports", Value: scope.IncludeImports},
		observe.Field{Key: "recursive", Value: scope.Recursive},
	)

	return domain + rawSecretsPath + "?" + q.Encode(), nil
}

func (f *Fetcher) get(ctx context.Context, op, endpoint string, token auth.AccessToken) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfig, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token.Reveal())
	req.Header.Set("Accept", "application/json")

	httpResp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidResponse, op, fmt.Errorf("fetch request failed: %w", err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxFetchBody))
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidResponse, op, fmt.Errorf("read fetch response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, (&fault.Error{
			Kind: fault.KindInvalidResponse,
			Op:   op,
			Err:  fmt.Errorf("%w: status %d", ErrFetchRejected, httpResp.StatusCode),
		}).WithDetail(describe(httpResp.StatusCode, body))
	}

	var raw RawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, (&fault.Error{Kind: fault.KindInvalidResponse, Op: op, Err: ErrUnexpectedBody}).
			WithDetail(describe(httpResp.StatusCode, body))
	}
	if raw.Secrets == nil {
		return nil, (&fault.Error{Kind: fault.KindInvalidResponse, Op: op, Err: ErrMissingSecrets}).
			WithDetail(describe(httpResp.StatusCode, body))
	}

	f.logger.Debug(ctx, "fetch succeeded",
		observe.Field{Key: "status", Value: httpResp.StatusCode},
		observe.Field{Key: "secrets", Value: len(*raw.Secrets)},
		observe.Field{Key: "imports", Value: len(raw.Imports)},
	)
	return &raw, nil
}

func describe(status int, body []byte) string {
	return fmt.Sprintf("status %d, body: %s", status, Excerpt(body))
}
