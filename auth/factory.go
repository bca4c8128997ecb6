package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/infisical-secrets/fault"
)

// Config carries the credentials for every method; each factory reads the
// fields it needs.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	IdentityID   string
	Audience     string
}

// Factory creates a TokenSource from configuration.
type Factory func(cfg Config, provider IdentityTokenProvider, opts ...Option) (TokenSource, error)

// Registry manages token source factories by method.
type Registry struct {
	mu        sync.RWMutex
	factories map[Method]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Method]Factory)}
}

// Register adds a factory.
func (r *Registry) Register(method Method, factory Factory) error {
	if strings.TrimSpace(string(method)) == "" || factory == nil {
		return errors.New("invalid token source registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[method]; exists {
		return fmt.Errorf("token source %q already registered", method)
	}
	r.factories[method] = factory
	return nil
}

// New instantiates the token source for method. An unknown method is a
// config error.
func (r *Registry) New(method Method, cfg Config, provider IdentityTokenProvider, opts ...Option) (TokenSource, error) {
	r.mu.RLock()
	factory, ok := r.factories[method]
	r.mu.RUnlock()

	if !ok {
		return nil, fault.Wrap(fault.KindConfig, "auth", fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	return factory(cfg, provider, opts...)
}

// Methods returns registered method names.
func (r *Registry) Methods() []Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]Method, 0, len(r.factories))
	for m := range r.factories {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// Supports reports whether method is registered.
func (r *Registry) Supports(method Method) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[method]
	return ok
}

// DefaultRegistry holds the built-in methods.
var DefaultRegistry = NewRegistry()

func init() {
	_ = DefaultRegistry.Register(MethodUniversal, func(cfg Config, _ IdentityTokenProvider, opts ...Option) (TokenSource, error) {
		return NewUniversal(UniversalConfig{
			Domain:       cfg.Domain,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		}, opts...)
	})

	_ = DefaultRegistry.Register(MethodOIDC, func(cfg Config, provider IdentityTokenProvider, opts ...Option) (TokenSource, error) {
		return NewOIDC(OIDCConfig{
			Domain:     cfg.Domain,
			IdentityID: cfg.IdentityID,
			Audience:   cfg.Audience,
		}, provider, opts...)
	})
}

// New creates a token source from the default registry.
func New(method Method, cfg Config, provider IdentityTokenProvider, opts ...Option) (TokenSource, error) {
	return DefaultRegistry.New(method, cfg, provider, opts...)
}
