package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/infisical-secrets/fault"
)

// StageFunc is the signature for a pipeline stage.
type StageFunc func(ctx context.Context) error

// Middleware wraps pipeline stages with tracing, metrics, and logging.
//
// Contract:
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped stage are recorded and returned unchanged.
//   - Diagnostics attached to classified errors are logged only at debug level.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes fn as the given stage.
func (m *Middleware) Run(ctx context.Context, stage Stage, fn StageFunc) error {
	if stage.Name == "" {
		return ErrMissingStageName
	}

	ctx, span := m.tracer.StartSpan(ctx, stage)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	m.tracer.EndSpan(span, err)
	m.metrics.RecordStage(ctx, stage, duration, err)

	stageLogger := m.logger.With(stage.fields()...)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}

	if err != nil {
		fields = append(fields,
			Field{Key: "error", Value: err.Error()},
			Field{Key: "error_kind", Value: kindLabel(err)},
		)
		stageLogger.Error(ctx, "stage failed", fields...)
		if detail := fault.Detail(err); detail != "" && stageLogger.Enabled(LevelDebug) {
			stageLogger.Debug(ctx, "stage diagnostics", Field{Key: "detail", Value: detail})
		}
		return err
	}

	stageLogger.Info(ctx, "stage completed", fields...)
	return nil
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}
