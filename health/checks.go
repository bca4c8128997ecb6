package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jonwraymond/infisical-secrets/auth"
	"github.com/jonwraymond/infisical-secrets/fault"
)

const statusPath = "/api/status"

// ConfigCheck passes when validate accepts the configuration.
func ConfigCheck(validate func() error) Check {
	return CheckFunc(func(context.Context) Result {
		if err := validate(); err != nil {
			return Fail("configuration is invalid", err)
		}
		return OK("configuration is valid")
	})
}

// APICheck probes the service status endpoint without credentials. A
// plain-http domain passes with a warning.
func APICheck(domain string, client *http.Client) Check {
	if client == nil {
		client = &http.Client{}
	}
	return CheckFunc(func(ctx context.Context) Result {
		base, err := auth.NormalizeDomain(domain)
		if err != nil {
			return Fail("domain is invalid", fault.Wrap(fault.KindConfig, "health.api", err))
		}
		endpoint := base + statusPath

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return Fail("cannot build status request", err).With("endpoint", endpoint)
		}
		resp, err := client.Do(req)
		if err != nil {
			return Fail("service unreachable", err).With("endpoint", endpoint)
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Fail("service returned an error", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)).
				With("endpoint", endpoint).
				With("status_code", resp.StatusCode)
		}

		result := OK("service reachable")
		if u, err := url.Parse(base); err == nil && u.Scheme == "http" {
			result = Warn("service reachable over plain http; credentials would be sent unencrypted")
		}
		return result.With("endpoint", endpoint).With("status_code", resp.StatusCode)
	})
}

// OutputCheck verifies that the directory of path accepts a new file. An
// existing file at path passes with a warning, since a run replaces it.
func OutputCheck(path string) Check {
	const op = "health.output"
	return CheckFunc(func(context.Context) Result {
		dir := filepath.Dir(path)

		info, err := os.Stat(dir)
		if err != nil {
			return Fail("output directory is missing", fault.Wrap(fault.KindIO, op, err)).With("path", dir)
		}
		if !info.IsDir() {
			return Fail("output directory is not a directory", fault.New(fault.KindIO, op, "not a directory")).With("path", dir)
		}

		f, err := os.CreateTemp(dir, ".preflight-*")
		if err != nil {
			return Fail("output directory is not writable", fault.Wrap(fault.KindIO, op, err)).With("path", dir)
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)

		existing, err := os.Lstat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return OK("output directory is writable").With("path", path)
		case err != nil:
			return Fail("cannot inspect output file", fault.Wrap(fault.KindIO, op, err)).With("path", path)
		case existing.IsDir():
			return Fail("output path is a directory", fault.New(fault.KindIO, op, "is a directory")).With("path", path)
		default:
			return Warn("output file exists and will be replaced").With("path", path)
		}
	})
}
