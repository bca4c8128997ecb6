package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the structured logging contract used across a run.
//
// Implementations must be safe for concurrent use, must never panic, and
// must scrub redacted field keys and registered secret values.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)

	// With returns a logger that adds fields to every entry.
	With(fields ...Field) Logger

	// Enabled reports whether entries at level are written.
	Enabled(level LogLevel) bool
}

// Field is a structured log field.
type Field struct {
	Key   string
	Value any
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (l nopLogger) With(...Field) Logger                  { return l }
func (nopLogger) Enabled(LogLevel) bool                   { return false }

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// LoggerOption configures a structured logger.
type LoggerOption func(*structuredLogger)

// WithRedactor scrubs registered values from messages and string fields.
func WithRedactor(r Redactor) LoggerOption {
	return func(l *structuredLogger) {
		l.redactor = r
	}
}

// structuredLogger is a JSON structured logger implementation.
type structuredLogger struct {
	level     LogLevel
	writer    io.Writer
	mu        *sync.Mutex
	redactor  Redactor
	baseAttrs map[string]any
}

// NewLogger creates a new structured logger writing to stderr.
func NewLogger(level string, opts ...LoggerOption) Logger {
	return NewLoggerWithWriter(level, os.Stderr, opts...)
}

// NewLoggerWithWriter creates a new structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer, opts ...LoggerOption) Logger {
	l := &structuredLogger{
		level:     ParseLogLevel(level),
		writer:    w,
		mu:        &sync.Mutex{},
		baseAttrs: make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a logger that adds fields to every entry.
func (l *structuredLogger) With(fields ...Field) Logger {
	attrs := make(map[string]any, len(l.baseAttrs)+len(fields))
	for k, v := range l.baseAttrs {
		attrs[k] = v
	}
	for _, f := range fields {
		attrs[f.Key] = f.Value
	}

	return &structuredLogger{
		level:     l.level,
		writer:    l.writer,
		mu:        l.mu,
		redactor:  l.redactor,
		baseAttrs: attrs,
	}
}

func (l *structuredLogger) Enabled(level LogLevel) bool {
	return level >= l.level
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

func (l *structuredLogger) log(_ context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.baseAttrs)+len(fields)+3)

	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = redactString(l.redactor, msg)

	for k, v := range l.baseAttrs {
		entry[k] = scrubValue(l.redactor, k, v)
	}
	for _, f := range fields {
		entry[f.Key] = scrubValue(l.redactor, f.Key, f.Value)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // Silently drop malformed log entries
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = l.writer.Write(append(data, '\n'))
}

// RenderFields formats fields as space-separated key=value pairs for
// line-oriented sinks, applying the same redaction as the JSON logger.
func RenderFields(r Redactor, fields ...Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := scrubValue(r, f.Key, f.Value)
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, v))
	}
	return strings.Join(parts, " ")
}

func scrubValue(r Redactor, key string, value any) any {
	if isRedactedField(key) {
		return "[REDACTED]"
	}
	switch v := value.(type) {
	case string:
		return redactString(r, v)
	case error:
		return redactString(r, v.Error())
	case fmt.Stringer:
		return redactString(r, v.String())
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = redactString(r, s)
		}
		return out
	default:
		return value
	}
}

func redactString(r Redactor, s string) string {
	if r == nil {
		return s
	}
	return r.Redact(s)
}

var redactedKeys = func() map[string]bool {
	m := make(map[string]bool, len(RedactedFields))
	for _, k := range RedactedFields {
		m[strings.ToLower(k)] = true
	}
	return m
}()

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	return redactedKeys[strings.ToLower(key)]
}

var _ Logger = (*structuredLogger)(nil)
