package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/secret"
)

// Built-in export types.
const (
	TypeEnv  = "env"
	TypeFile = "file"
)

// Exporter publishes a resolved secret map.
//
// Contract:
// - Context: Export should stop early when ctx is cancelled.
// - Errors: failures are *fault.Error values; a partial env export is not
//   rolled back.
type Exporter interface {
	Export(ctx context.Context, secrets secret.Map) error
}

// Masker marks a value as sensitive so surrounding output redacts it.
type Masker interface {
	Mask(value string)
}

// MaskerFunc adapts a function to Masker.
type MaskerFunc func(value string)

// Mask calls f.
func (f MaskerFunc) Mask(value string) { f(value) }

// EnvPublisher makes a variable visible to later workflow steps.
type EnvPublisher interface {
	SetEnv(key, value string) error
}

// Options carries what the built-in exporters need. Each factory reads the
// fields relevant to it.
type Options struct {
	Masker    Masker
	Publisher EnvPublisher

	// Workspace is the root that FilePath is resolved against.
	Workspace string

	// FilePath is the output file, relative to Workspace.
	FilePath string

	Logger observe.Logger
}

// Factory creates an Exporter.
type Factory func(opts Options) (Exporter, error)

// Registry manages exporter factories by export type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory.
func (r *Registry) Register(name string, factory Factory) error {
	if strings.TrimSpace(name) == "" || factory == nil {
		return errors.New("invalid exporter registration")
	}
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("exporter %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// New instantiates the exporter for name.
func (r *Registry) New(name string, opts Options) (Exporter, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fault.Wrap(fault.KindConfig, "export", fmt.Errorf("%w: %q", ErrUnknownType, name))
	}
	return factory(opts)
}

// Supports reports whether name is registered.
func (r *Registry) Supports(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[strings.TrimSpace(name)]
	return ok
}

// Types returns registered export types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in exporters.
var DefaultRegistry = NewRegistry()

func init() {
	_ = DefaultRegistry.Register(TypeEnv, func(opts Options) (Exporter, error) {
		return NewEnv(opts.Masker, opts.Publisher, opts.Logger)
	})
	_ = DefaultRegistry.Register(TypeFile, func(opts Options) (Exporter, error) {
		return NewFile(opts.Workspace, opts.FilePath, opts.Logger)
	})
}
