package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/resilience"
)

const (
	universalLoginPath = "/api/v1/auth/universal-auth/login"
	oidcLoginPath      = "/api/v1/auth/oidc-auth/login"

	// DefaultTokenField is the login response field carrying the access token.
	DefaultTokenField = "accessToken"

	// maxLoginBody caps how much of a login response is read.
	maxLoginBody = 1 << 20
)

// Option configures a login client.
type Option func(*loginClient)

// WithHTTPClient sets the HTTP client used for login calls.
func WithHTTPClient(c *http.Client) Option {
	return func(l *loginClient) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithTimeout bounds each login call.
// Default: 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(l *loginClient) {
		l.budget = resilience.Budget(d)
	}
}

// WithTokenField sets the login response field holding the access token.
// Default: "accessToken".
func WithTokenField(name string) Option {
	return func(l *loginClient) {
		if strings.TrimSpace(name) != "" {
			l.tokenField = strings.TrimSpace(name)
		}
	}
}

// WithLogger sets the logger for structural debug output.
func WithLogger(logger observe.Logger) Option {
	return func(l *loginClient) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// loginClient posts form-encoded credentials and extracts the access token.
type loginClient struct {
	httpClient *http.Client
	budget     resilience.Budget
	tokenField string
	logger     observe.Logger
}

func newLoginClient(opts ...Option) *loginClient {
	l := &loginClient{
		httpClient: &http.Client{},
		budget:     resilience.Budget(resilience.DefaultTimeout),
		tokenField: DefaultTokenField,
		logger:     observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// login performs one bounded login exchange.
func (l *loginClient) login(ctx context.Context, op, endpoint string, form url.Values) (AccessToken, error) {
	var token AccessToken
	err := l.budget.Do(ctx, func(ctx context.Context) error {
		t, err := l.post(ctx, op, endpoint, form)
		if err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrTimeout) {
			return "", fault.Wrap(fault.KindAuthentication, op, &fault.Error{Kind: fault.KindTimeout, Err: err})
		}
		return "", err
	}
	return token, nil
}

func (l *loginClient) post(ctx context.Context, op, endpoint string, form url.Values) (AccessToken, error) {
	l.logger.Debug(ctx, "login request",
		observe.Field{Key: "endpoint", Value: endpoint},
		observe.Field{Key: "form_fields", Value: formFieldNames(form)},
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fault.Wrap(fault.KindConfig, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fault.Wrap(fault.KindAuthentication, op, fmt.Errorf("login request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginBody))
	if err != nil {
		return "", fault.Wrap(fault.KindAuthentication, op, fmt.Errorf("read login response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", (&fault.Error{
			Kind: fault.KindAuthentication,
			Op:   op,
			Err:  fmt.Errorf("%w: status %d", ErrLoginRejected, resp.StatusCode),
		}).WithDetail(describeBody(resp.StatusCode, body))
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fault.Wrap(fault.KindAuthentication, op,
			(&fault.Error{Kind: fault.KindInvalidResponse, Err: errors.New("login response is not a JSON object")}).
				WithDetail(describeBody(resp.StatusCode, body)))
	}

	raw, ok := payload[l.tokenField].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", fault.Wrap(fault.KindAuthentication, op,
			(&fault.Error{Kind: fault.KindInvalidResponse, Err: fmt.Errorf("%w: field %q", ErrTokenMissing, l.tokenField)}).
				WithDetail(describeBody(resp.StatusCode, body)))
	}

	fields := []observe.Field{
		{Key: "status", Value: resp.StatusCode},
		{Key: "response_fields", Value: fieldNames(payload)},
	}
	if expiresIn, ok := payload["expiresIn"].(float64); ok {
		fields = append(fields, observe.Field{Key: "expires_in_s", Value: expiresIn})
	}
	l.logger.Debug(ctx, "login succeeded", fields...)

	return AccessToken(raw), nil
}

// describeBody reports the status and top-level field names of a response,
// never its values.
func describeBody(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Sprintf("status %d, non-JSON body (%d bytes)", status, len(body))
	}
	return fmt.Sprintf("status %d, response fields %v", status, fieldNames(payload))
}

func fieldNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func formFieldNames(form url.Values) []string {
	names := make([]string, 0, len(form))
	for k := range form {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
