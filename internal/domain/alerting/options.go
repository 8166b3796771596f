package alerting

import (
	"time"

	"github.com/google/uuid"
)

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithCooldown sets the minimum time between two alerts. Negative values are ignored.
func WithCooldown(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.cooldown = d
		}
	}
}

// WithTitle sets the notification title used for every alert.
func WithTitle(title string) Option {
	return func(p *Policy) {
		if title != "" {
			p.title = title
		}
	}
}

// WithIDGenerator replaces the alert ID source. Tests use it for stable IDs.
func WithIDGenerator(gen func() string) Option {
	return func(p *Policy) {
		if gen != nil {
			p.newID = gen
		}
	}
}

func newUUID() string {
	return uuid.NewString()
}
