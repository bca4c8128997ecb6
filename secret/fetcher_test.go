package secret

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/infisical-secrets/auth"
	"github.com/jonwraymond/infisical-secrets/fault"
)

func testScope(domain string) Scope {
	return Scope{
		Domain:         domain,
		Environment:    "prod",
		Project:        "acme",
		Path:           "/",
		IncludeImports: true,
	}
}

func TestFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != rawSecretsPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		want := map[string]string{
			"secretPath":             "/",
			"environment":            "prod",
			"include_imports":        "true",
			"recursive":              "false",
			"workspaceSlug":          "acme",
			"expandSecretReferences": "true",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		_, _ = w.Write([]byte(`{"secrets":[{"secretKey":"DB_URL","secretValue":"x"}],"imports":[{"secrets":[{"secretKey":"API_KEY","secretValue":"z"}]}]}`))
	}))
	defer server.Close()

	resp, err := NewFetcher().Fetch(context.Background(), testScope(server.URL), auth.AccessToken("tok"))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.Secrets == nil || len(*resp.Secrets) != 1 {
		t.Fatalf("Secrets = %v", resp.Secrets)
	}
	if len(resp.Imports) != 1 {
		t.Fatalf("Imports = %v", resp.Imports)
	}
}

func TestFetcher_Fetch_DefaultPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secretPath"); got != DefaultPath {
			t.Errorf("secretPath = %q, want %q", got, DefaultPath)
		}
		_, _ = w.Write([]byte(`{"secrets":[]}`))
	}))
	defer server.Close()

	scope := testScope(server.URL)
	scope.Path = ""
	if _, err := NewFetcher().Fetch(context.Background(), scope, auth.AccessToken("tok")); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}

func TestFetcher_Fetch_Preconditions(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name  string
		scope Scope
		token auth.AccessToken
		want  error
	}{
		{"missing domain", Scope{Project: "acme"}, "tok", auth.ErrMissingDomain},
		{"missing project", Scope{Domain: server.URL}, "tok", ErrMissingProject},
		{"missing token", testScope(server.URL), "", ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFetcher().Fetch(context.Background(), tt.scope, tt.token)
			if !errors.Is(err, fault.ErrConfig) {
				t.Fatalf("Fetch() error = %v, want config", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.want)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestFetcher_Fetch_MissingSecretsField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"imports":[{"secrets":[{"secretKey":"K","secretValue":"leaky-secret-value"}]}]}`))
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), testScope(server.URL), auth.AccessToken("tok"))
	if !errors.Is(err, fault.ErrInvalidResponse) {
		t.Fatalf("Fetch() error = %v, want invalid_response", err)
	}
	if !errors.Is(err, ErrMissingSecrets) {
		t.Errorf("Fetch() error = %v, want ErrMissingSecrets", err)
	}
	if strings.Contains(err.Error(), "imports") {
		t.Errorf("Error() must not carry the body excerpt: %v", err)
	}

	detail := fault.Detail(err)
	if !strings.Contains(detail, "imports") {
		t.Errorf("detail = %q, want body excerpt", detail)
	}
	if strings.Contains(detail, "leaky-secret-value") {
		t.Errorf("detail leaked a secret value: %q", detail)
	}
}

func TestFetcher_Fetch_NonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), testScope(server.URL), auth.AccessToken("tok"))
	if !errors.Is(err, ErrUnexpectedBody) || !errors.Is(err, fault.ErrInvalidResponse) {
		t.Fatalf("Fetch() error = %v, want ErrUnexpectedBody", err)
	}
	if !strings.Contains(fault.Detail(err), "bad gateway") {
		t.Errorf("detail = %q", fault.Detail(err))
	}
}

func TestFetcher_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"forbidden"}`))
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), testScope(server.URL), auth.AccessToken("tok"))
	if !errors.Is(err, ErrFetchRejected) {
		t.Fatalf("Fetch() error = %v, want ErrFetchRejected", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewFetcher(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), testScope(server.URL), auth.AccessToken("tok"))
	if fault.KindOf(err) != fault.KindTimeout {
		t.Fatalf("KindOf() = %q, want timeout (err=%v)", fault.KindOf(err), err)
	}
	if errors.Is(err, fault.ErrInvalidResponse) {
		t.Errorf("timeout must be distinct from other failures: %v", err)
	}
}
