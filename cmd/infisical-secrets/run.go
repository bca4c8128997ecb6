package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/infisical-secrets/actions"
	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/runner"
)

func newRuntime(cmd *cobra.Command) *actions.Runtime {
	return actions.New(observe.NewRedactor(), githubactions.WithWriter(cmd.OutOrStdout()))
}

func runSecrets(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	rt := newRuntime(cmd)

	cfg, err := loadConfig(cmd, opts, rt)
	if err != nil {
		rt.Fail(err)
		return errReported
	}
	rt.Mask(cfg.ClientSecret)
	if err := cfg.Validate(); err != nil {
		rt.Fail(err)
		return errReported
	}

	logger, err := newLogger(cmd, opts, cfg, rt)
	if err != nil {
		rt.Fail(err)
		return errReported
	}

	runID := uuid.NewString()
	tel, err := observe.Setup(ctx, telemetryConfig(cfg, runID, logger, cmd))
	if err != nil {
		rt.Fail(fault.Wrap(fault.KindConfig, "telemetry", err))
		return errReported
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err})
		}
	}()

	mw, err := tel.Middleware()
	if err != nil {
		rt.Fail(err)
		return errReported
	}

	r, err := runner.New(cfg, rt, runner.WithLogger(logger), runner.WithMiddleware(mw), runner.WithRunID(runID))
	if err != nil {
		rt.Fail(err)
		return errReported
	}

	if _, err := r.Run(ctx); err != nil {
		rt.Detail(err)
		rt.Fail(err)
		return errReported
	}
	return nil
}

// newLogger writes workflow commands by default, or JSON lines to stderr.
func newLogger(cmd *cobra.Command, opts *options, cfg runner.Config, rt *actions.Runtime) (observe.Logger, error) {
	level := observe.ParseLogLevel(cfg.LogLevel)
	switch opts.logFormat {
	case "", logFormatActions:
		return rt.Logger(level), nil
	case logFormatJSON:
		if rt.Debug() {
			level = observe.LevelDebug
		}
		return observe.NewLoggerWithWriter(level.String(), cmd.ErrOrStderr(), observe.WithRedactor(rt.Redactor())), nil
	default:
		return nil, fault.Config("flags", fmt.Sprintf("invalid log format %q (want %s or %s)", opts.logFormat, logFormatActions, logFormatJSON))
	}
}

func telemetryConfig(cfg runner.Config, runID string, logger observe.Logger, cmd *cobra.Command) observe.Config {
	return observe.Config{
		ServiceName:     serviceName,
		Version:         version,
		RunID:           runID,
		TraceExporter:   cfg.TraceExporter,
		MetricsExporter: cfg.MetricsExporter,
		SampleRatio:     cfg.TraceSampleRatio,
		Logger:          logger,
		ExportWriter:    cmd.ErrOrStderr(),
	}
}
