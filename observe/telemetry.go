package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/infisical-secrets/observe/exporters"
)

// Config selects where the telemetry of a run goes.
type Config struct {
	ServiceName string
	Version     string

	// RunID is attached to every span and metric as secrets.run_id.
	RunID string

	TraceExporter   string // otlp|stdout|none
	MetricsExporter string // otlp|prometheus|stdout|none

	// SampleRatio is the share of runs traced. Zero traces every run.
	SampleRatio float64

	// Logger receives stage logs. Default: NopLogger.
	Logger Logger

	// ExportWriter receives stdout exporter output. Default: os.Stderr,
	// since stdout carries runner workflow commands.
	ExportWriter io.Writer

	// Getenv resolves OTLP endpoint variables. Default: os.Getenv.
	Getenv func(string) string
}

// Validate checks exporter names and the sample ratio.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if !slices.Contains(ValidTracingExporters, c.TraceExporter) {
		return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.TraceExporter)
	}
	if !slices.Contains(ValidMetricsExporters, c.MetricsExporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.MetricsExporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, c.SampleRatio)
	}
	return nil
}

func (c Config) sampler() sdktrace.Sampler {
	if c.SampleRatio == 0 || c.SampleRatio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.TraceIDRatioBased(c.SampleRatio)
}

func (c Config) exporter(name string) exporters.Options {
	return exporters.Options{Name: name, Writer: c.ExportWriter, Getenv: c.Getenv}
}

// Telemetry owns the tracer and meter providers of one run.
type Telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Setup builds the providers selected by cfg. Disabled signals get no-op
// implementations, so callers never branch on what is enabled.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{
		tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meter:  metricnoop.NewMeterProvider().Meter(cfg.ServiceName),
		logger: cfg.Logger,
	}
	if t.logger == nil {
		t.logger = NopLogger()
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	}
	if cfg.RunID != "" {
		attrs = append(attrs, attribute.String("secrets.run_id", cfg.RunID))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	spans, err := exporters.SpanExporter(ctx, cfg.exporter(cfg.TraceExporter))
	if err != nil {
		return nil, err
	}
	if spans != nil {
		// Runs are short; export synchronously so nothing is left buffered.
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(cfg.sampler()),
			sdktrace.WithSyncer(spans),
		)
		otel.SetTracerProvider(t.tracerProvider)
		t.tracer = t.tracerProvider.Tracer(cfg.ServiceName)
	}

	reader, err := exporters.MetricReader(ctx, cfg.exporter(cfg.MetricsExporter))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if reader != nil {
		t.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(t.meterProvider)
		t.meter = t.meterProvider.Meter(cfg.ServiceName)
	}

	return t, nil
}

// Tracer returns the run tracer.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Meter returns the run meter.
func (t *Telemetry) Meter() metric.Meter { return t.meter }

// Logger returns the run logger.
func (t *Telemetry) Logger() Logger { return t.logger }

// Middleware returns a stage middleware bound to this telemetry.
func (t *Telemetry) Middleware() (*Middleware, error) {
	metrics, err := NewMetrics(t.meter)
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(t.tracer), metrics, t.logger), nil
}

// Shutdown flushes and stops the providers. It is safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if tp := t.tracerProvider; tp != nil {
		t.tracerProvider = nil
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if mp := t.meterProvider; mp != nil {
		t.meterProvider = nil
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
