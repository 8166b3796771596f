package service

import (
	"github.com/okian/drowsy/internal/adapters/notify"
	"github.com/okian/drowsy/internal/config"
	"github.com/okian/drowsy/internal/domain/detector"
	"github.com/okian/drowsy/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Without it config.New defaults apply.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher sets where frame results are pushed, usually the live hub.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithNotifiers adds delivery channels next to the configured ones.
func WithNotifiers(ns ...Notifier) Option {
	return func(s *Service) {
		s.extraNotifiers = append(s.extraNotifiers, ns...)
	}
}

// WithCommandRunner replaces how the speech and desktop commands are run.
func WithCommandRunner(r notify.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithEngineOptions appends options to the ones derived from the config,
// e.g. detector.WithClock in tests.
func WithEngineOptions(opts ...detector.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}
