package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/infisical-secrets/fault"
)

func newUniversalForTest(t *testing.T, domain string, opts ...Option) *Universal {
	t.Helper()
	u, err := NewUniversal(UniversalConfig{
		Domain:       domain,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, opts...)
	if err != nil {
		t.Fatalf("NewUniversal() error = %v", err)
	}
	return u
}

func TestUniversal_Token_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != universalLoginPath {
			t.Errorf("path = %s, want %s", r.URL.Path, universalLoginPath)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("clientId"); got != "client-id" {
			t.Errorf("clientId = %q", got)
		}
		if got := r.PostForm.Get("clientSecret"); got != "client-secret" {
			t.Errorf("clientSecret = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"tok-123","expiresIn":7200,"tokenType":"Bearer"}`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL)
	token, err := u.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.Reveal() != "tok-123" {
		t.Errorf("token = %q, want tok-123", token.Reveal())
	}
	if u.Method() != MethodUniversal {
		t.Errorf("Method() = %q", u.Method())
	}
}

func TestUniversal_Token_CustomTokenField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"alt-token"}`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL, WithTokenField("token"))
	token, err := u.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.Reveal() != "alt-token" {
		t.Errorf("token = %q, want alt-token", token.Reveal())
	}
}

func TestUniversal_Token_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials","statusCode":401}`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL)
	_, err := u.Token(context.Background())
	if !errors.Is(err, fault.ErrAuthentication) {
		t.Fatalf("Token() error = %v, want authentication", err)
	}
	if !errors.Is(err, ErrLoginRejected) {
		t.Errorf("Token() error = %v, want ErrLoginRejected", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry status: %v", err)
	}
	detail := fault.Detail(err)
	if !strings.Contains(detail, "message") {
		t.Errorf("detail = %q, want response field names", detail)
	}
	if strings.Contains(detail, "invalid credentials") {
		t.Errorf("detail leaked response values: %q", detail)
	}
}

func TestUniversal_Token_MissingTokenField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expiresIn":7200}`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL)
	_, err := u.Token(context.Background())
	if fault.KindOf(err) != fault.KindAuthentication {
		t.Fatalf("KindOf() = %q, want authentication", fault.KindOf(err))
	}
	if !errors.Is(err, fault.ErrInvalidResponse) {
		t.Errorf("error should wrap invalid_response: %v", err)
	}
	if !errors.Is(err, ErrTokenMissing) {
		t.Errorf("error should wrap ErrTokenMissing: %v", err)
	}
}

func TestUniversal_Token_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accessToken":""}`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL)
	if _, err := u.Token(context.Background()); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("Token() error = %v, want ErrTokenMissing", err)
	}
}

func TestUniversal_Token_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	u := newUniversalForTest(t, server.URL)
	_, err := u.Token(context.Background())
	if !errors.Is(err, fault.ErrAuthentication) || !errors.Is(err, fault.ErrInvalidResponse) {
		t.Fatalf("Token() error = %v, want authentication wrapping invalid_response", err)
	}
	if !strings.Contains(fault.Detail(err), "non-JSON") {
		t.Errorf("detail = %q", fault.Detail(err))
	}
}

func TestUniversal_Token_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	u := newUniversalForTest(t, server.URL, WithTimeout(50*time.Millisecond))
	_, err := u.Token(context.Background())
	if fault.KindOf(err) != fault.KindAuthentication {
		t.Fatalf("KindOf() = %q, want authentication (err=%v)", fault.KindOf(err), err)
	}
	if !errors.Is(err, fault.ErrTimeout) {
		t.Errorf("error should wrap timeout: %v", err)
	}
}

func TestUniversal_Token_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	u := newUniversalForTest(t, url)
	if _, err := u.Token(context.Background()); !errors.Is(err, fault.ErrAuthentication) {
		t.Fatalf("Token() error = %v, want authentication", err)
	}
}

func TestNewUniversal_MissingCredentials(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name string
		cfg  UniversalConfig
	}{
		{"missing id", UniversalConfig{Domain: server.URL, ClientSecret: "s"}},
		{"missing secret", UniversalConfig{Domain: server.URL, ClientID: "id"}},
		{"blank both", UniversalConfig{Domain: server.URL, ClientID: " ", ClientSecret: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUniversal(tt.cfg)
			if !errors.Is(err, fault.ErrConfig) {
				t.Fatalf("NewUniversal() error = %v, want config", err)
			}
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("NewUniversal() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestNewUniversal_InvalidDomain(t *testing.T) {
	_, err := NewUniversal(UniversalConfig{Domain: "https://", ClientID: "id", ClientSecret: "s"})
	if !errors.Is(err, fault.ErrConfig) {
		t.Fatalf("NewUniversal() error = %v, want config", err)
	}
}

func TestAccessToken_Redacted(t *testing.T) {
	tok := AccessToken("super-secret")
	if tok.String() == "super-secret" {
		t.Error("String() should not reveal the token")
	}
	if strings.Contains(tok.GoString(), "super-secret") {
		t.Error("GoString() should not reveal the token")
	}
	if AccessToken("").String() != "" {
		t.Error("empty token should render empty")
	}
}
