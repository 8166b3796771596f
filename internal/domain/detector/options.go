package detector

import (
	"time"

	"github.com/okian/drowsy/internal/domain/alerting"
	"github.com/okian/drowsy/internal/domain/hysteresis"
	"github.com/okian/drowsy/internal/domain/pose"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source used for frames without a capture time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithClassifier replaces the eye/mouth classifier.
func WithClassifier(c *hysteresis.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithPoseClassifier replaces the head pose classifier.
func WithPoseClassifier(c *pose.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.poses = c
		}
	}
}

// WithPolicy replaces the alert policy.
func WithPolicy(p *alerting.Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithNightMode sets the initial night mode flag.
func WithNightMode(on bool) Option {
	return func(e *Engine) {
		e.nightMode = on
	}
}
