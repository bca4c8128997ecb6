package runner

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/infisical-secrets/auth"
	"github.com/jonwraymond/infisical-secrets/export"
	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/secret"
)

// Stage names.
const (
	StageAuthenticate = "authenticate"
	StageFetch        = "fetch"
	StageMerge        = "merge"
	StageExport       = "export"
)

// Environment is what a run needs from the invoking CI system.
type Environment interface {
	export.Masker
	export.EnvPublisher
	auth.IdentityTokenProvider

	// Workspace returns the root that file output paths are resolved against.
	Workspace() string
}

// Result summarizes a successful run.
type Result struct {
	RunID      string
	Method     auth.Method
	ExportType string
	Resolved   int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to every stage.
func WithLogger(logger observe.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMiddleware sets the stage middleware.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(r *Runner) {
		if mw != nil {
			r.middleware = mw
		}
	}
}

// WithHTTPClient sets the HTTP client for login and fetch calls.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(id) != "" {
			r.runID = id
		}
	}
}

// Runner executes one secrets run.
type Runner struct {
	cfg        Config
	env        Environment
	logger     observe.Logger
	middleware *observe.Middleware
	httpClient *http.Client
	runID      string

	source   auth.TokenSource
	fetcher  *secret.Fetcher
	exporter export.Exporter
}

// New validates cfg and prepares every stage, so configuration problems
// surface before any network call.
func New(cfg Config, env Environment, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fault.Config("runner", "environment is required")
	}

	r := &Runner{
		cfg:        cfg,
		env:        env,
		logger:     observe.NopLogger(),
		httpClient: &http.Client{},
		runID:      uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(observe.Field{Key: "run_id", Value: r.runID})
	if r.middleware == nil {
		r.middleware = observe.NewMiddleware(nil, nil, r.logger)
	}

	source, err := auth.New(auth.Method(strings.TrimSpace(cfg.Method)), cfg.AuthConfig(), env,
		auth.WithHTTPClient(r.httpClient),
		auth.WithTimeout(cfg.Timeout),
		auth.WithTokenField(cfg.TokenField),
		auth.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	r.source = source

	r.fetcher = secret.NewFetcher(
		secret.WithHTTPClient(r.httpClient),
		secret.WithTimeout(cfg.Timeout),
		secret.WithLogger(r.logger),
	)

	exporter, err := export.DefaultRegistry.New(cfg.ExportType, export.Options{
		Masker:    env,
		Publisher: env,
		Workspace: env.Workspace(),
		FilePath:  cfg.FileOutputPath,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.exporter = exporter

	return r, nil
}

// RunID returns the identifier attached to this run's logs and spans.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the pipeline. The first failing stage aborts the run and its
// error is returned unchanged.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:      r.runID,
		Method:     r.source.Method(),
		ExportType: strings.TrimSpace(r.cfg.ExportType),
	}
	labels := map[string]string{
		"method":      string(res.Method),
		"export_type": res.ExportType,
	}
	stage := func(name string) observe.Stage {
		return observe.Stage{Name: name, RunID: r.runID, Labels: labels}
	}

	var token auth.AccessToken
	if err := r.middleware.Run(ctx, stage(StageAuthenticate), func(ctx context.Context) error {
		t, err := r.source.Token(ctx)
		if err != nil {
			return err
		}
		r.env.Mask(t.Reveal())
		token = t
		return nil
	}); err != nil {
		return res, err
	}

	var raw *secret.RawResponse
	if err := r.middleware.Run(ctx, stage(StageFetch), func(ctx context.Context) error {
		resp, err := r.fetcher.Fetch(ctx, r.cfg.Scope(), token)
		if err != nil {
			return err
		}
		raw = resp
		return nil
	}); err != nil {
		return res, err
	}

	var resolved secret.Map
	_ = r.middleware.Run(ctx, stage(StageMerge), func(ctx context.Context) error {
		resolved = secret.Merge(raw)
		r.middleware.Metrics().RecordResolved(ctx, resolved.Len())
		return nil
	})
	res.Resolved = resolved.Len()

	if err := r.middleware.Run(ctx, stage(StageExport), func(ctx context.Context) error {
		return r.exporter.Export(ctx, resolved)
	}); err != nil {
		return res, err
	}

	r.logger.Info(ctx, "secrets exported",
		observe.Field{Key: "count", Value: res.Resolved},
		observe.Field{Key: "export_type", Value: res.ExportType},
	)
	return res, nil
}
