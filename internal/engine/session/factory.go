package session

import (
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory builds sessions from loaded configuration.
type Factory struct {
	backends ports.BackendFactory
	notifier ports.Notifier
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(backends ports.BackendFactory, notifier ports.Notifier, tracer ports.Tracer, logger ports.Logger) *Factory {
	return &Factory{
		backends: backends,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
	}
}

// New opens backend clients for cfg and assembles a Session.
func (f *Factory) New(cfg *domain.Config, opts ...Option) (*Session, error) {
	backend, err := f.backends.Open(cfg)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open backend"), "api", cfg.APIURL)
	}
	return New(cfg, backend, f.notifier, f.tracer, f.logger, opts...), nil
}
