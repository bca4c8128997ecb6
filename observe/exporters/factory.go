// Package exporters builds the OpenTelemetry backends a run can ship
// spans and metrics to.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names.
const (
	None       = "none"
	Stdout     = "stdout"
	OTLP       = "otlp"
	Prometheus = "prometheus"
)

var (
	// ErrUnknown indicates an exporter name that is not supported for the signal.
	ErrUnknown = errors.New("exporters: unknown exporter")

	// ErrNoEndpoint indicates OTLP was selected without a collector endpoint.
	ErrNoEndpoint = errors.New("exporters: OTLP endpoint not configured")
)

// TraceNames lists the exporters accepted for spans. "" means none.
var TraceNames = []string{OTLP, Stdout, None, ""}

// MetricNames lists the exporters accepted for metrics. "" means none.
var MetricNames = []string{OTLP, Prometheus, Stdout, None, ""}

// Options selects and configures one exporter.
type Options struct {
	// Name is one of the exporter names.
	Name string

	// Writer receives stdout exporter output. Default: os.Stderr.
	Writer io.Writer

	// Getenv looks up the OTLP endpoint variables. Default: os.Getenv.
	Getenv func(string) string
}

func (o Options) writer() io.Writer {
	if o.Writer == nil {
		return os.Stderr
	}
	return o.Writer
}

// endpoint returns the collector endpoint for a signal, preferring the
// shared variable over the signal-specific one.
func (o Options) endpoint(signalVar string) string {
	getenv := o.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		return v
	}
	return getenv(signalVar)
}

// SpanExporter returns the span exporter named by o, or nil for none.
func SpanExporter(ctx context.Context, o Options) (sdktrace.SpanExporter, error) {
	switch o.Name {
	case None, "":
		return nil, nil
	case Stdout:
		return stdouttrace.New(stdouttrace.WithWriter(o.writer()))
	case OTLP:
		endpoint := o.endpoint("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("%w: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ErrNoEndpoint)
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	default:
		return nil, fmt.Errorf("%w for traces: %q", ErrUnknown, o.Name)
	}
}

// MetricReader returns the metric reader named by o, or nil for none.
// Push exporters are wrapped in a periodic reader flushed on shutdown.
func MetricReader(ctx context.Context, o Options) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch o.Name {
	case None, "":
		return nil, nil
	case Prometheus:
		reader, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		return reader, nil
	case Stdout:
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(o.writer()))
	case OTLP:
		endpoint := o.endpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("%w: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ErrNoEndpoint)
		}
		exp, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(endpoint))
	default:
		return nil, fmt.Errorf("%w for metrics: %q", ErrUnknown, o.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s metrics exporter: %w", o.Name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
