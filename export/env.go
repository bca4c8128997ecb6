package export

import (
	"context"
	"fmt"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/secret"
)

// Env publishes each secret as an environment variable.
type Env struct {
	masker    Masker
	publisher EnvPublisher
	logger    observe.Logger
}

// NewEnv creates an env exporter.
func NewEnv(masker Masker, publisher EnvPublisher, logger observe.Logger) (*Env, error) {
	const op = "export.env"
	if masker == nil {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingMasker)
	}
	if publisher == nil {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingPublisher)
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Env{masker: masker, publisher: publisher, logger: logger}, nil
}

// Export masks every value before publishing it. Empty values are published
// without masking.
func (e *Env) Export(ctx context.Context, secrets secret.Map) error {
	const op = "export.env"

	var err error
	published := 0
	secrets.Range(func(key, value string) bool {
		if err = ctx.Err(); err != nil {
			err = fault.Wrap(fault.KindIO, op, err)
			return false
		}
		if value != "" {
			e.masker.Mask(value)
		}
		if perr := e.publisher.SetEnv(key, value); perr != nil {
			err = fault.Wrap(fault.KindIO, op, fmt.Errorf("publish %s: %w", key, perr))
			return false
		}
		published++
		return true
	})

	e.logger.Debug(ctx, "env export finished",
		observe.Field{Key: "published", Value: published},
		observe.Field{Key: "total", Value: secrets.Len()},
	)
	return err
}

var _ Exporter = (*Env)(nil)
