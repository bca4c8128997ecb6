package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/infisical-secrets/fault"
)

// Metrics records stage and secret-count metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordStage records a stage execution with duration and error status.
	RecordStage(ctx context.Context, stage Stage, duration time.Duration, err error)

	// RecordResolved records how many secrets a run resolved.
	RecordResolved(ctx context.Context, count int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	resolvedCount metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"secrets.stage.total",
		metric.WithDescription("Total number of pipeline stage executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"secrets.stage.errors",
		metric.WithDescription("Total number of pipeline stage failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"secrets.stage.duration_ms",
		metric.WithDescription("Pipeline stage duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	resolvedCount, err := meter.Int64Counter(
		"secrets.resolved",
		metric.WithDescription("Number of secrets resolved after import merging"),
		metric.WithUnit("{secret}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:    totalCount,
		errorCount:    errorCount,
		durationHist:  durationHist,
		resolvedCount: resolvedCount,
	}, nil
}

// RecordStage records metrics for a stage execution.
func (m *metricsImpl) RecordStage(ctx context.Context, stage Stage, duration time.Duration, err error) {
	opt := metric.WithAttributes(stage.attributes()...)

	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		attrs := append(stage.attributes(), attribute.String("error.kind", kindLabel(err)))
		m.errorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordResolved records the number of resolved secrets.
func (m *metricsImpl) RecordResolved(ctx context.Context, count int) {
	m.resolvedCount.Add(ctx, int64(count))
}

func kindLabel(err error) string {
	if kind := fault.KindOf(err); kind != "" {
		return string(kind)
	}
	return "unknown"
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordStage(ctx context.Context, stage Stage, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordResolved(ctx context.Context, count int) {}
