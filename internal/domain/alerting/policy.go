// Package alerting decides, frame by frame, whether the driver must be
// alerted and whether the alert is written to the alert log.
package alerting

import (
	"fmt"
	"time"

	"github.com/okian/drowsy/internal/domain/model"
)

// DefaultCooldown is the minimum time between two alerts.
const DefaultCooldown = 10 * time.Second

// DefaultTitle is the notification title.
const DefaultTitle = "Driver Alert"

// Spoken alert messages.
const (
	MessageDrowsy     = "Stay alert! Drowsiness Detected!, Please take a break!"
	MessageNoFace     = "Stay alert! You are Sleeping, Please wake up!"
	MessageOffForward = "Stay alert! Your Facing not Forward!, Please Look forward!"

	detailNoFace = "You are sleeping"
)

// Input is the classification of one frame.
type Input struct {
	Status       model.Status
	Pose         model.Pose
	FaceDetected bool
	Now          time.Time
}

// Decision is what the policy produced for one frame.
type Decision struct {
	Alerts     []model.AlertEvent
	Records    []model.LogRecord
	Suppressed int // conditions that held but were inside the cooldown
}

// Fired reports whether any alert was raised.
func (d Decision) Fired() bool { return len(d.Alerts) > 0 }

// Policy is a single shared cooldown over three alert conditions.
type Policy struct {
	cooldown time.Duration
	title    string
	newID    func() string
}

// New creates a Policy with defaults overridden by opts.
func New(opts ...Option) *Policy {
	p := &Policy{
		cooldown: DefaultCooldown,
		title:    DefaultTitle,
		newID:    newUUID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cooldown returns the configured cooldown.
func (p *Policy) Cooldown() time.Duration { return p.cooldown }

// Decide evaluates the alert conditions in order and updates
// state.LastAlertAt when one fires. The cooldown guard is re-checked for
// every condition, so at most one alert fires per frame:
//
//  1. status is not Normal: drowsiness alert, logged
//  2. no face in the frame: extended eye closure alert, not logged
//  3. otherwise, pose is not Facing Forward: off-forward alert, logged
func (p *Policy) Decide(state *model.DetectionState, in Input) Decision {
	var d Decision

	if in.Status != model.StatusNormal {
		if p.ready(state, in.Now) {
			p.fire(state, &d, in, model.CategoryDrowsinessOrPose, MessageDrowsy, p.detail(in), true)
		} else {
			d.Suppressed++
		}
	}

	switch {
	case !in.FaceDetected:
		if p.ready(state, in.Now) {
			p.fire(state, &d, in, model.CategoryEyesClosedExtended, MessageNoFace, detailNoFace, false)
		} else {
			d.Suppressed++
		}
	case in.Pose != model.PoseFacingForward:
		if p.ready(state, in.Now) {
			p.fire(state, &d, in, model.CategoryOffForward, MessageOffForward, p.detail(in), true)
		} else {
			d.Suppressed++
		}
	}

	return d
}

// ready reports whether the cooldown has strictly elapsed. A zero LastAlertAt
// means no alert has fired yet.
func (p *Policy) ready(state *model.DetectionState, now time.Time) bool {
	if state.LastAlertAt.IsZero() {
		return true
	}
	return now.Sub(state.LastAlertAt) > p.cooldown
}

func (p *Policy) fire(state *model.DetectionState, d *Decision, in Input, cat model.AlertCategory, msg, detail string, record bool) {
	d.Alerts = append(d.Alerts, model.AlertEvent{
		ID:       p.newID(),
		Category: cat,
		Message:  msg,
		Title:    p.title,
		Detail:   detail,
		Status:   in.Status,
		Pose:     in.Pose,
		At:       in.Now,
	})
	if record {
		d.Records = append(d.Records, model.LogRecord{At: in.Now, Status: in.Status, Pose: in.Pose})
	}
	state.LastAlertAt = in.Now
}

func (p *Policy) detail(in Input) string {
	return fmt.Sprintf("%s | %s", in.Status, in.Pose)
}
