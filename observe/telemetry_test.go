package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/infisical-secrets/observe/exporters"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "minimal", cfg: Config{ServiceName: "svc"}},
		{name: "explicit none", cfg: Config{ServiceName: "svc", TraceExporter: "none", MetricsExporter: "none"}},
		{name: "missing service name", cfg: Config{}, wantErr: ErrMissingServiceName},
		{name: "bad trace exporter", cfg: Config{ServiceName: "svc", TraceExporter: "zipkin"}, wantErr: ErrInvalidTracingExporter},
		{name: "prometheus is metrics only", cfg: Config{ServiceName: "svc", TraceExporter: "prometheus"}, wantErr: ErrInvalidTracingExporter},
		{name: "bad metrics exporter", cfg: Config{ServiceName: "svc", MetricsExporter: "statsd"}, wantErr: ErrInvalidMetricsExporter},
		{name: "ratio above one", cfg: Config{ServiceName: "svc", SampleRatio: 1.5}, wantErr: ErrInvalidSamplePct},
		{name: "negative ratio", cfg: Config{ServiceName: "svc", SampleRatio: -0.1}, wantErr: ErrInvalidSamplePct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetup_Noops(t *testing.T) {
	tel, err := Setup(context.Background(), Config{ServiceName: "secrets-test"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if tel.Tracer() == nil || tel.Meter() == nil || tel.Logger() == nil {
		t.Fatal("expected non-nil telemetry primitives")
	}
	if tel.Logger().Enabled(LevelError) {
		t.Error("default logger should discard everything")
	}
	if _, err := tel.Middleware(); err != nil {
		t.Errorf("Middleware() error = %v", err)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSetup_StdoutExportersWriteToExportWriter(t *testing.T) {
	var buf bytes.Buffer
	tel, err := Setup(context.Background(), Config{
		ServiceName:     "secrets-test",
		RunID:           "run-42",
		TraceExporter:   exporters.Stdout,
		MetricsExporter: exporters.Stdout,
		ExportWriter:    &buf,
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	mw, err := tel.Middleware()
	if err != nil {
		t.Fatalf("Middleware() error = %v", err)
	}
	_ = mw.Run(context.Background(), Stage{Name: "merge", RunID: "run-42"}, func(ctx context.Context) error { return nil })
	mw.Metrics().RecordResolved(context.Background(), 3)

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	for _, want := range []string{"secrets.merge", "run-42", "secrets.resolved"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("export writer missing %q:\n%s", want, buf.String())
		}
	}

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestSetup_OTLPWithoutEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), Config{
		ServiceName:   "secrets-test",
		TraceExporter: exporters.OTLP,
		Getenv:        func(string) string { return "" },
	})
	if !errors.Is(err, exporters.ErrNoEndpoint) {
		t.Errorf("Setup() error = %v, want ErrNoEndpoint", err)
	}
}

func TestSetup_CustomLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := NewLoggerWithWriter("debug", &buf)

	tel, err := Setup(context.Background(), Config{ServiceName: "secrets-test", Logger: custom})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if tel.Logger() != custom {
		t.Error("expected custom logger to be used")
	}
}
