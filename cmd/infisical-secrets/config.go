package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/runner"
)

func addConfigFlags(cmd *cobra.Command, opts *options) {
	f := cmd.PersistentFlags()

	f.StringVar(&opts.configFile, "config", "", "Path to a YAML config file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", logFormatActions, "Log format: actions (workflow commands) or json (stderr)")
	f.StringVar(&opts.timeout, "timeout", "", "Time bound for each request, e.g. 10s")
	f.StringVar(&opts.tokenField, "token-field", "", "Login response field holding the access token")
	f.StringVar(&opts.traceExporter, "trace-exporter", "", "Trace exporter: otlp, stdout or none")
	f.StringVar(&opts.metricsExporter, "metrics-exporter", "", "Metrics exporter: otlp, prometheus, stdout or none")
	f.StringVar(&opts.sampleRatio, "trace-sample-ratio", "", "Share of runs traced, between 0 and 1 (0 traces every run)")

	f.String(runner.InputMethod, "", "Authentication method: universal or oidc")
	f.String(runner.InputClientID, "", "Universal auth client ID")
	f.String(runner.InputClientSecret, "", "Universal auth client secret")
	f.String(runner.InputIdentityID, "", "Machine identity ID for OIDC auth")
	f.String(runner.InputOIDCAudience, "", "Audience of the OIDC identity token")
	f.String(runner.InputDomain, "", "Service base URL")
	f.String(runner.InputEnvSlug, "", "Environment slug")
	f.String(runner.InputProjectSlug, "", "Project slug")
	f.String(runner.InputSecretPath, "", "Secret folder path")
	f.String(runner.InputExportType, "", "Export type: env or file")
	f.String(runner.InputFileOutputPath, "", "Output file, relative to the workspace")
	f.String(runner.InputIncludeImports, "", "Include imported secrets (true/false)")
	f.String(runner.InputRecursive, "", "Fetch sub-folders recursively (true/false)")
}

// flagInputs exposes explicitly set flags as inputs.
func flagInputs(cmd *cobra.Command) runner.InputSource {
	return runner.InputFunc(func(name string) string {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			return ""
		}
		return flag.Value.String()
	})
}

// loadConfig layers defaults, the config file, step inputs and flags.
func loadConfig(cmd *cobra.Command, opts *options, inputs runner.InputSource) (runner.Config, error) {
	cfg := runner.DefaultConfig()
	if opts.configFile != "" {
		fileCfg, err := runner.LoadConfigFile(opts.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	cfg = runner.ApplyInputs(cfg, inputs)
	cfg = runner.ApplyInputs(cfg, flagInputs(cmd))

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.tokenField != "" {
		cfg.TokenField = opts.tokenField
	}
	if opts.traceExporter != "" {
		cfg.TraceExporter = opts.traceExporter
	}
	if opts.metricsExporter != "" {
		cfg.MetricsExporter = opts.metricsExporter
	}
	if opts.sampleRatio != "" {
		ratio, err := strconv.ParseFloat(opts.sampleRatio, 64)
		if err != nil {
			return cfg, fault.Wrap(fault.KindConfig, "flags", fmt.Errorf("invalid trace sample ratio %q: %w", opts.sampleRatio, err))
		}
		cfg.TraceSampleRatio = ratio
	}
	if opts.timeout != "" {
		d, err := time.ParseDuration(opts.timeout)
		if err != nil {
			return cfg, fault.Wrap(fault.KindConfig, "flags", fmt.Errorf("invalid timeout %q: %w", opts.timeout, err))
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
