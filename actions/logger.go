package actions

import (
	"context"

	"github.com/sethvargo/go-githubactions"

	"github.com/jonwraymond/infisical-secrets/observe"
)

// Logger returns an observe.Logger that writes workflow commands. Debug
// entries become ::debug:: lines, warnings become annotations, and info and
// error entries are plain lines so only Fail produces an error annotation.
// Debug entries are written when level is debug or the runner has step
// debugging enabled.
func (r *Runtime) Logger(level observe.LogLevel) observe.Logger {
	if r.Debug() {
		level = observe.LevelDebug
	}
	return &logger{action: r.action, redactor: r.redactor, level: level}
}

type logger struct {
	action   *githubactions.Action
	redactor observe.Redactor
	level    observe.LogLevel
	fields   []observe.Field
}

func (l *logger) With(fields ...observe.Field) observe.Logger {
	merged := make([]observe.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{action: l.action, redactor: l.redactor, level: l.level, fields: merged}
}

func (l *logger) Enabled(level observe.LogLevel) bool {
	return level >= l.level
}

func (l *logger) Debug(_ context.Context, msg string, fields ...observe.Field) {
	if l.Enabled(observe.LevelDebug) {
		l.action.Debugf("%s", l.line(msg, fields))
	}
}

func (l *logger) Info(_ context.Context, msg string, fields ...observe.Field) {
	if l.Enabled(observe.LevelInfo) {
		l.action.Infof("%s", l.line(msg, fields))
	}
}

func (l *logger) Warn(_ context.Context, msg string, fields ...observe.Field) {
	if l.Enabled(observe.LevelWarn) {
		l.action.Warningf("%s", l.line(msg, fields))
	}
}

func (l *logger) Error(_ context.Context, msg string, fields ...observe.Field) {
	if l.Enabled(observe.LevelError) {
		l.action.Infof("error: %s", l.line(msg, fields))
	}
}

func (l *logger) line(msg string, fields []observe.Field) string {
	all := fields
	if len(l.fields) > 0 {
		all = append(append([]observe.Field{}, l.fields...), fields...)
	}
	out := l.redactor.Redact(msg)
	if rendered := observe.RenderFields(l.redactor, all...); rendered != "" {
		out += " " + rendered
	}
	return out
}

var _ observe.Logger = (*logger)(nil)
