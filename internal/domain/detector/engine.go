// Package detector runs the per-frame pipeline: landmark geometry, status
// hysteresis, head pose and the alert policy over one detection state.
package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/drowsy/internal/domain/alerting"
	"github.com/okian/drowsy/internal/domain/geometry"
	"github.com/okian/drowsy/internal/domain/hysteresis"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/pose"
)

// Engine owns the detection state of one driver.
// It is not safe for concurrent use.
type Engine struct {
	state      model.DetectionState
	classifier *hysteresis.Classifier
	poses      *pose.Classifier
	policy     *alerting.Policy
	nightMode  bool
	now        func() time.Time
}

// New creates an Engine with default classifiers and policy.
func New(opts ...Option) *Engine {
	e := &Engine{
		classifier: hysteresis.New(),
		poses:      pose.New(),
		policy:     alerting.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessFrame classifies one frame, advances the detection state and runs
// the alert policy. Invalid frames return an error wrapping ErrInvalidFrame
// and leave the state untouched.
func (e *Engine) ProcessFrame(ctx context.Context, f model.Frame) (model.FrameResult, error) {
	if err := ctx.Err(); err != nil {
		return model.FrameResult{}, err
	}
	if err := validate(f); err != nil {
		return model.FrameResult{}, err
	}

	at := f.At
	if at.IsZero() {
		at = e.now()
	}

	res := model.FrameResult{
		FrameID:      f.ID,
		At:           at,
		Pose:         model.PoseFacingForward,
		FaceDetected: f.HasFace(),
		NightMode:    e.nightMode,
	}

	if res.FaceDetected {
		r := geometry.Measure(f.Landmarks)
		res.EAR, res.MAR = r.EAR, r.MAR
		res.Status = e.classifier.Observe(&e.state, r.EAR, r.MAR)
		if f.Angles != nil {
			res.Pose = e.poses.Classify(*f.Angles)
		}
	} else {
		res.Status = e.classifier.Hold()
	}

	d := e.policy.Decide(&e.state, alerting.Input{
		Status:       res.Status,
		Pose:         res.Pose,
		FaceDetected: res.FaceDetected,
		Now:          at,
	})
	res.Alerts = d.Alerts
	res.LogRecords = d.Records
	res.Suppressed = d.Suppressed
	res.EyeClosedStreak = e.state.EyeClosedStreak
	res.YawnStreak = e.state.YawnStreak

	return res, nil
}

func validate(f model.Frame) error {
	if !f.HasFace() {
		if f.Angles != nil {
			return fmt.Errorf("%w: angles without landmarks", ErrInvalidFrame)
		}
		return nil
	}
	if err := geometry.Validate(f.Landmarks); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	if f.Angles != nil {
		if err := pose.Validate(*f.Angles); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFrame, err)
		}
	}
	return nil
}

// SetNightMode sets the night mode flag. It only affects presentation.
func (e *Engine) SetNightMode(on bool) { e.nightMode = on }

// ToggleNightMode flips the night mode flag and returns the new value.
func (e *Engine) ToggleNightMode() bool {
	e.nightMode = !e.nightMode
	return e.nightMode
}

// NightMode returns the night mode flag.
func (e *Engine) NightMode() bool { return e.nightMode }

// State returns a copy of the detection state.
func (e *Engine) State() model.DetectionState { return e.state }

// Reset clears the streaks and the alert cooldown.
func (e *Engine) Reset() { e.state = model.DetectionState{} }

// Cooldown returns the alert policy cooldown.
func (e *Engine) Cooldown() time.Duration { return e.policy.Cooldown() }
