package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/infisical-secrets/auth"
	"github.com/jonwraymond/infisical-secrets/export"
	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/resilience"
	"github.com/jonwraymond/infisical-secrets/secret"
)

// Input names read from the invoking environment.
const (
	InputMethod         = "method"
	InputClientID       = "client-id"
	InputClientSecret   = "client-secret"
	InputIdentityID     = "identity-id"
	InputOIDCAudience   = "oidc-audience"
	InputDomain         = "domain"
	InputEnvSlug        = "env-slug"
	InputProjectSlug    = "project-slug"
	InputSecretPath     = "secret-path"
	InputExportType     = "export-type"
	InputFileOutputPath = "file-output-path"
	InputIncludeImports = "include-imports"
	InputRecursive      = "recursive"
)

// InputSource supplies named step inputs. Missing inputs are "".
type InputSource interface {
	GetInput(name string) string
}

// InputFunc adapts a function to InputSource.
type InputFunc func(name string) string

// GetInput calls f.
func (f InputFunc) GetInput(name string) string { return f(name) }

// Config holds everything a run needs.
type Config struct {
	// Method selects the credential flow: "universal" or "oidc". It has no
	// default; an empty method fails validation.
	Method       string `yaml:"method"`
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	IdentityID   string `yaml:"identity-id"`
	OIDCAudience string `yaml:"oidc-audience"`

	// Domain is the service base URL.
	// Default: https://app.infisical.com
	Domain string `yaml:"domain"`

	Environment string `yaml:"env-slug"`
	Project     string `yaml:"project-slug"`

	// SecretPath is the folder to fetch.
	// Default: "/"
	SecretPath string `yaml:"secret-path"`

	// ExportType selects the exporter.
	// Default: "env"
	ExportType     string `yaml:"export-type"`
	FileOutputPath string `yaml:"file-output-path"`

	IncludeImports bool `yaml:"include-imports"`
	Recursive      bool `yaml:"recursive"`

	// Timeout bounds each outbound call.
	// Default: 10 seconds
	Timeout time.Duration `yaml:"timeout"`

	// TokenField names the access token field in login responses.
	// Default: "accessToken"
	TokenField string `yaml:"token-field"`

	LogLevel        string `yaml:"log-level"`
	TraceExporter   string `yaml:"trace-exporter"`
	MetricsExporter string `yaml:"metrics-exporter"`

	// TraceSampleRatio is the share of runs traced, in [0, 1]. Zero traces
	// every run.
	TraceSampleRatio float64 `yaml:"trace-sample-ratio"`
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		Domain:          auth.DefaultDomain,
		SecretPath:      secret.DefaultPath,
		ExportType:      export.TypeEnv,
		Timeout:         resilience.DefaultTimeout,
		TokenField:      auth.DefaultTokenField,
		LogLevel:        "info",
		TraceExporter:   "none",
		MetricsExporter: "none",
	}
}

// LoadConfig reads step inputs on top of the defaults.
func LoadConfig(src InputSource) Config {
	return ApplyInputs(DefaultConfig(), src)
}

// ApplyInputs overrides cfg with every non-empty input. Boolean inputs are
// true only when they equal "true", ignoring case.
func ApplyInputs(cfg Config, src InputSource) Config {
	if src == nil {
		return cfg
	}
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(src.GetInput(name)); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, name string) {
		if v := strings.TrimSpace(src.GetInput(name)); v != "" {
			*dst = strings.EqualFold(v, "true")
		}
	}

	set(&cfg.Method, InputMethod)
	set(&cfg.ClientID, InputClientID)
	set(&cfg.ClientSecret, InputClientSecret)
	set(&cfg.IdentityID, InputIdentityID)
	set(&cfg.OIDCAudience, InputOIDCAudience)
	set(&cfg.Domain, InputDomain)
	set(&cfg.Environment, InputEnvSlug)
	set(&cfg.Project, InputProjectSlug)
	set(&cfg.SecretPath, InputSecretPath)
	set(&cfg.ExportType, InputExportType)
	set(&cfg.FileOutputPath, InputFileOutputPath)
	setBool(&cfg.IncludeImports, InputIncludeImports)
	setBool(&cfg.Recursive, InputRecursive)
	return cfg
}

// LoadConfigFile reads a YAML config file on top of the defaults. Unknown
// keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	const op = "runner.config"

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fault.Wrap(fault.KindConfig, op, fmt.Errorf("read config file: %w", err))
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fault.Wrap(fault.KindConfig, op, fmt.Errorf("parse config file %s: %w", path, err))
	}
	return cfg, nil
}

// Validate reports the first configuration problem as a config error.
func (c *Config) Validate() error {
	const op = "runner.config"

	method := auth.Method(strings.TrimSpace(c.Method))
	if !auth.DefaultRegistry.Supports(method) {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w: %q", auth.ErrInvalidMethod, c.Method))
	}
	switch method {
	case auth.MethodUniversal:
		if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
			return fault.Wrap(fault.KindConfig, op, auth.ErrMissingCredentials)
		}
	case auth.MethodOIDC:
		if strings.TrimSpace(c.IdentityID) == "" {
			return fault.Wrap(fault.KindConfig, op, auth.ErrMissingIdentityID)
		}
	}

	if _, err := auth.NormalizeDomain(c.Domain); err != nil {
		return fault.Wrap(fault.KindConfig, op, err)
	}
	if strings.TrimSpace(c.Project) == "" {
		return fault.Wrap(fault.KindConfig, op, secret.ErrMissingProject)
	}

	if !export.DefaultRegistry.Supports(c.ExportType) {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w: %q", export.ErrUnknownType, c.ExportType))
	}
	if strings.TrimSpace(c.ExportType) == export.TypeFile && strings.TrimSpace(c.FileOutputPath) == "" {
		return fault.Wrap(fault.KindConfig, op, export.ErrMissingFilePath)
	}

	if c.Timeout < 0 {
		return fault.Config(op, "timeout must not be negative")
	}
	if !contains(observe.ValidLogLevels, strings.ToLower(c.LogLevel)) {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w: %q", observe.ErrInvalidLogLevel, c.LogLevel))
	}
	if !contains(observe.ValidTracingExporters, c.TraceExporter) {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w: %q", observe.ErrInvalidTracingExporter, c.TraceExporter))
	}
	if !contains(observe.ValidMetricsExporters, c.MetricsExporter) {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w: %q", observe.ErrInvalidMetricsExporter, c.MetricsExporter))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fault.Wrap(fault.KindConfig, op, fmt.Errorf("%w, got: %g", observe.ErrInvalidSamplePct, c.TraceSampleRatio))
	}
	return nil
}

// Scope returns the fetch scope described by c.
func (c *Config) Scope() secret.Scope {
	return secret.Scope{
		Domain:         c.Domain,
		Environment:    c.Environment,
		Project:        c.Project,
		Path:           c.SecretPath,
		IncludeImports: c.IncludeImports,
		Recursive:      c.Recursive,
	}
}

// AuthConfig returns the credentials described by c.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		Domain:       c.Domain,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		IdentityID:   c.IdentityID,
		Audience:     c.OIDCAudience,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
