// Package pose maps head Euler angles to a discrete head pose label.
package pose

import (
	"fmt"
	"math"

	"github.com/okian/drowsy/internal/domain/model"
)

// Default thresholds in degrees.
const (
	DefaultPitchDown = -15.0
	DefaultYawRight  = 20.0
	DefaultYawLeft   = -20.0
	DefaultRollLeft  = 15.0
	DefaultRollRight = -15.0

	maxAngle = 180.0
)

// Classifier is a stateless, ordered threshold chain.
type Classifier struct {
	pitchDown float64
	yawRight  float64
	yawLeft   float64
	rollLeft  float64
	rollRight float64
}

// New creates a Classifier with default thresholds overridden by opts.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		pitchDown: DefaultPitchDown,
		yawRight:  DefaultYawRight,
		yawLeft:   DefaultYawLeft,
		rollLeft:  DefaultRollLeft,
		rollRight: DefaultRollRight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the first matching pose in priority order:
// nodding down, looking right, looking left, tilting left, tilting right.
// Anything else is facing forward, including a raised head.
func (c *Classifier) Classify(a model.EulerAngles) model.Pose {
	switch {
	case a.Pitch < c.pitchDown:
		return model.PoseNoddingDown
	case a.Yaw > c.yawRight:
		return model.PoseLookingRight
	case a.Yaw < c.yawLeft:
		return model.PoseLookingLeft
	case a.Roll > c.rollLeft:
		return model.PoseTiltingLeft
	case a.Roll < c.rollRight:
		return model.PoseTiltingRight
	default:
		return model.PoseFacingForward
	}
}

// Validate rejects non-finite angles and angles outside [-180, 180].
func Validate(a model.EulerAngles) error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"pitch", a.Pitch},
		{"yaw", a.Yaw},
		{"roll", a.Roll},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || math.Abs(v.value) > maxAngle {
			return fmt.Errorf("%w: %s=%v", ErrAngleOutOfRange, v.name, v.value)
		}
	}
	return nil
}

// AnglesFor returns representative angles that Classify maps to p with the
// default thresholds. Used by the replay tool to synthesise frames.
func AnglesFor(p model.Pose) model.EulerAngles {
	switch p {
	case model.PoseNoddingDown:
		return model.EulerAngles{Pitch: -25}
	case model.PoseLookingRight:
		return model.EulerAngles{Yaw: 30}
	case model.PoseLookingLeft:
		return model.EulerAngles{Yaw: -30}
	case model.PoseTiltingLeft:
		return model.EulerAngles{Roll: 25}
	case model.PoseTiltingRight:
		return model.EulerAngles{Roll: -25}
	default:
		return model.EulerAngles{}
	}
}
