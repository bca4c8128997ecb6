package observe

import (
	"errors"

	"github.com/jonwraymond/infisical-secrets/observe/exporters"
)

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Config.SampleRatio is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample ratio must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// ErrMissingStageName indicates Stage.Name is empty.
var ErrMissingStageName = errors.New("observe: stage name is required")

// ValidTracingExporters lists valid tracing exporter names.
var ValidTracingExporters = exporters.TraceNames

// ValidMetricsExporters lists valid metrics exporter names.
var ValidMetricsExporters = exporters.MetricNames

// ValidLogLevels lists valid log level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields lists field keys whose values are always replaced in logs,
// whatever the value is.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"access_token",
	"accessToken",
	"client_secret",
	"clientSecret",
	"jwt",
	"id_token",
	"authorization",
	"credential",
	"value",
}
