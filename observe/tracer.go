package observe

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/infisical-secrets/fault"
)

// Stage identifies one step of a secrets run for telemetry purposes.
type Stage struct {
	Name   string            // authenticate, fetch, merge or export (required)
	RunID  string            // Identifier shared by all stages of one run
	Labels map[string]string // Low-cardinality attributes such as method or export type
}

// SpanName returns the deterministic span name for this stage.
// Format: secrets.<name>
func (s Stage) SpanName() string {
	return "secrets." + s.Name
}

// labelKeys returns label keys in a stable order.
func (s Stage) labelKeys() []string {
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Stage) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("secrets.stage", s.Name),
	}
	for _, k := range s.labelKeys() {
		attrs = append(attrs, attribute.String("secrets."+k, s.Labels[k]))
	}
	return attrs
}

func (s Stage) fields() []Field {
	fields := []Field{{Key: "stage", Value: s.Name}}
	if s.RunID != "" {
		fields = append(fields, Field{Key: "run_id", Value: s.RunID})
	}
	for _, k := range s.labelKeys() {
		fields = append(fields, Field{Key: k, Value: s.Labels[k]})
	}
	return fields
}

// Tracer wraps OpenTelemetry tracing with stage-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a stage.
	StartSpan(ctx context.Context, stage Stage) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with stage metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, stage Stage) (context.Context, trace.Span) {
	attrs := append(stage.attributes(), attribute.Bool("secrets.error", false))
	if stage.RunID != "" {
		attrs = append(attrs, attribute.String("secrets.run_id", stage.RunID))
	}

	return t.tracer.Start(ctx, stage.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status and kind if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("secrets.error", true))
		if kind := fault.KindOf(err); kind != "" {
			span.SetAttributes(attribute.String("error.kind", string(kind)))
		}
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, stage Stage) (context.Context, trace.Span) {
	return t.noop.Start(ctx, stage.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
