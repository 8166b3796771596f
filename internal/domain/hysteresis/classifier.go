// Package hysteresis turns per-frame eye and mouth ratios into a debounced
// driver status using consecutive-frame counters.
package hysteresis

import "github.com/okian/drowsy/internal/domain/model"

// Default thresholds.
const (
	DefaultEARThreshold     = 0.25
	DefaultEARConsecFrames  = 15
	DefaultMARThreshold     = 0.5
	DefaultYawnConsecFrames = 15
)

// Classifier holds the thresholds. The counters live in model.DetectionState
// so a single classifier can serve any number of engines.
type Classifier struct {
	earThreshold     float64
	earConsecFrames  int
	marThreshold     float64
	yawnConsecFrames int
}

// New creates a Classifier with default thresholds overridden by opts.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		earThreshold:     DefaultEARThreshold,
		earConsecFrames:  DefaultEARConsecFrames,
		marThreshold:     DefaultMARThreshold,
		yawnConsecFrames: DefaultYawnConsecFrames,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe advances the streak counters in state with one frame's ratios and
// returns the resulting status. Yawning takes precedence over Drowsy.
func (c *Classifier) Observe(state *model.DetectionState, ear, mar float64) model.Status {
	if ear < c.earThreshold {
		state.EyeClosedStreak++
	} else {
		state.EyeClosedStreak = 0
	}

	if mar > c.marThreshold {
		state.YawnStreak++
	} else {
		state.YawnStreak = 0
	}

	status := model.StatusNormal
	if state.EyeClosedStreak >= c.earConsecFrames {
		status = model.StatusDrowsy
	}
	if state.YawnStreak >= c.yawnConsecFrames {
		status = model.StatusYawning
	}
	return status
}

// Hold classifies a frame without a face. It takes no state because a missing
// face neither advances nor resets the streaks; the status is Normal.
func (c *Classifier) Hold() model.Status {
	return model.StatusNormal
}

// EARThreshold returns the configured closed-eye threshold.
func (c *Classifier) EARThreshold() float64 { return c.earThreshold }

// MARThreshold returns the configured open-mouth threshold.
func (c *Classifier) MARThreshold() float64 { return c.marThreshold }
