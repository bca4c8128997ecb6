package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/secret"
)

func TestDefaultRegistry_Types(t *testing.T) {
	assert.Equal(t, []string{TypeEnv, TypeFile}, DefaultRegistry.Types())
	assert.True(t, DefaultRegistry.Supports("env"))
	assert.True(t, DefaultRegistry.Supports(" file "))
	assert.False(t, DefaultRegistry.Supports("dotenv"))
}

func TestRegistry_UnknownTypeIsConfigError(t *testing.T) {
	_, err := DefaultRegistry.New("yaml", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrConfig)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	f := func(Options) (Exporter, error) { return nil, nil }

	assert.Error(t, r.Register("", f))
	assert.Error(t, r.Register("x", nil))
	require.NoError(t, r.Register("x", f))
	assert.Error(t, r.Register("x", f))
}

func TestRegistry_NewDispatch(t *testing.T) {
	masker := &recordingMasker{}
	pub := &recordingPublisher{}

	exp, err := DefaultRegistry.New(TypeEnv, Options{Masker: masker, Publisher: pub})
	require.NoError(t, err)
	assert.IsType(t, &Env{}, exp)

	exp, err = DefaultRegistry.New(TypeFile, Options{Workspace: t.TempDir(), FilePath: "out.env"})
	require.NoError(t, err)
	assert.IsType(t, &File{}, exp)
}

type recordingMasker struct {
	masked []string
}

func (m *recordingMasker) Mask(value string) { m.masked = append(m.masked, value) }

type call struct {
	kind  string
	key   string
	value string
}

type recordingPublisher struct {
	log    *[]call
	set    map[string]string
	failOn string
}

func (p *recordingPublisher) SetEnv(key, value string) error {
	if key == p.failOn {
		return errors.New("env file not writable")
	}
	if p.set == nil {
		p.set = make(map[string]string)
	}
	p.set[key] = value
	if p.log != nil {
		*p.log = append(*p.log, call{kind: "set", key: key, value: value})
	}
	return nil
}

func TestEnv_MasksBeforePublishing(t *testing.T) {
	var log []call
	masker := MaskerFunc(func(v string) { log = append(log, call{kind: "mask", value: v}) })
	pub := &recordingPublisher{log: &log}

	exp, err := NewEnv(masker, pub, nil)
	require.NoError(t, err)

	m := secret.NewMap(map[string]string{"DB_URL": "x", "API_KEY": "z", "EMPTY": ""})
	require.NoError(t, exp.Export(context.Background(), m))

	assert.Equal(t, map[string]string{"DB_URL": "x", "API_KEY": "z", "EMPTY": ""}, pub.set)

	masked := map[string]bool{}
	for _, c := range log {
		switch c.kind {
		case "mask":
			masked[c.value] = true
		case "set":
			if c.value != "" {
				assert.True(t, masked[c.value], "value for %s published before masking", c.key)
			}
		}
	}
	assert.False(t, masked[""], "empty values are not masked")
}

func TestEnv_PublishFailureIsIOError(t *testing.T) {
	pub := &recordingPublisher{failOn: "B"}
	exp, err := NewEnv(&recordingMasker{}, pub, nil)
	require.NoError(t, err)

	err = exp.Export(context.Background(), secret.NewMap(map[string]string{"A": "1", "B": "2", "C": "3"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrIO)
	assert.NotContains(t, err.Error(), "2")
	assert.Equal(t, map[string]string{"A": "1"}, pub.set)
}

func TestEnv_CancelledContext(t *testing.T) {
	exp, err := NewEnv(&recordingMasker{}, &recordingPublisher{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = exp.Export(ctx, secret.NewMap(map[string]string{"A": "1"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEnv_Validation(t *testing.T) {
	_, err := NewEnv(nil, &recordingPublisher{}, nil)
	assert.ErrorIs(t, err, ErrMissingMasker)
	assert.Equal(t, fault.KindConfig, fault.KindOf(err))

	_, err = NewEnv(&recordingMasker{}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingPublisher)
}
