package actions

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
)

// ErrNoEnvFile is returned by SetEnv outside a runner that provides GITHUB_ENV.
var ErrNoEnvFile = errors.New("actions: GITHUB_ENV is not set")

// Runtime is the GitHub Actions side of a run.
type Runtime struct {
	action   *githubactions.Action
	redactor observe.Redactor
}

// New creates a Runtime. Options are passed to the underlying action; tests
// use them to supply an environment and capture output.
func New(redactor observe.Redactor, opts ...githubactions.Option) *Runtime {
	if redactor == nil {
		redactor = observe.NewRedactor()
	}
	return &Runtime{
		action:   githubactions.New(opts...),
		redactor: redactor,
	}
}

// GetInput returns the trimmed value of a step input.
func (r *Runtime) GetInput(name string) string {
	return r.action.GetInput(name)
}

// Mask registers value with the runner's log masking and the local redactor.
func (r *Runtime) Mask(value string) {
	if value == "" {
		return
	}
	r.action.AddMask(value)
	r.redactor.Register(value)
}

// SetEnv exports key for later steps of the job.
func (r *Runtime) SetEnv(key, value string) error {
	if r.action.Getenv("GITHUB_ENV") == "" {
		return ErrNoEnvFile
	}
	r.action.SetEnv(key, value)
	return nil
}

// IdentityToken requests an OIDC token for audience from the runner. The job
// needs the id-token: write permission.
func (r *Runtime) IdentityToken(ctx context.Context, audience string) (string, error) {
	token, err := r.action.GetIDToken(ctx, audience)
	if err != nil {
		return "", err
	}
	r.Mask(token)
	return token, nil
}

// Workspace returns GITHUB_WORKSPACE, or the working directory when unset.
func (r *Runtime) Workspace() string {
	if ws := strings.TrimSpace(r.action.Getenv("GITHUB_WORKSPACE")); ws != "" {
		return ws
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Debug reports whether step debug logging is enabled.
func (r *Runtime) Debug() bool {
	return r.action.Getenv("RUNNER_DEBUG") == "1"
}

// Redactor returns the redactor fed by Mask.
func (r *Runtime) Redactor() observe.Redactor {
	return r.redactor
}

// Fail reports err as a single error annotation. Only the error text is
// shown; debug detail is logged separately by the caller.
func (r *Runtime) Fail(err error) {
	if err == nil {
		return
	}
	r.action.Errorf("%s", r.redactor.Redact(err.Error()))
}

// Detail logs the debug-only diagnostics carried by err.
func (r *Runtime) Detail(err error) {
	if d := fault.Detail(err); d != "" {
		r.action.Debugf("%s", r.redactor.Redact(d))
	}
}
