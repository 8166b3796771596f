// Package types contains the read shapes exposed by the HTTP API and the live feed.
package types

import (
	"time"

	"github.com/okian/drowsy/internal/domain/model"
)

// AlertView is a fired alert as shown to API clients.
type AlertView struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Message  string    `json:"message"`
	Title    string    `json:"title"`
	Detail   string    `json:"detail"`
	At       time.Time `json:"at"`
}

// LogEntry is one alert log record.
type LogEntry struct {
	At     time.Time `json:"at"`
	Status string    `json:"status"`
	Pose   string    `json:"pose"`
	Line   string    `json:"line"`
}

// FrameView is the per-frame result forwarded to presentation.
type FrameView struct {
	FrameID         string      `json:"frame_id,omitempty"`
	At              time.Time   `json:"at"`
	EAR             float64     `json:"ear"`
	MAR             float64     `json:"mar"`
	Status          string      `json:"status"`
	Pose            string      `json:"pose"`
	FaceDetected    bool        `json:"face_detected"`
	NightMode       bool        `json:"night_mode"`
	EyeClosedStreak int         `json:"eye_closed_streak"`
	YawnStreak      int         `json:"yawn_streak"`
	Alerts          []AlertView `json:"alerts"`
	Logged          []LogEntry  `json:"logged"`
}

// StateView is the detection state plus engine settings that affect it.
type StateView struct {
	EyeClosedStreak int        `json:"eye_closed_streak"`
	YawnStreak      int        `json:"yawn_streak"`
	LastAlertAt     *time.Time `json:"last_alert_at,omitempty"`
	NightMode       bool       `json:"night_mode"`
	CooldownSeconds float64    `json:"cooldown_seconds"`
}

// StatusView answers GET /status. Last is nil until the first frame.
type StatusView struct {
	State StateView  `json:"state"`
	Last  *FrameView `json:"last,omitempty"`
}

// NewAlertView converts a fired alert.
func NewAlertView(a model.AlertEvent) AlertView { //nolint:gocritic // hugeParam
	return AlertView{
		ID:       a.ID,
		Category: string(a.Category),
		Message:  a.Message,
		Title:    a.Title,
		Detail:   a.Detail,
		At:       a.At,
	}
}

// NewLogEntry converts a log record.
func NewLogEntry(r model.LogRecord) LogEntry {
	return LogEntry{At: r.At, Status: r.Status.String(), Pose: r.Pose.String(), Line: r.String()}
}

// NewLogEntries converts records keeping their order. The result is never nil.
func NewLogEntries(recs []model.LogRecord) []LogEntry {
	out := make([]LogEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, NewLogEntry(r))
	}
	return out
}

// NewFrameView converts an engine result. Slices are never nil so clients
// always see arrays.
func NewFrameView(r model.FrameResult) FrameView { //nolint:gocritic // hugeParam
	alerts := make([]AlertView, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		alerts = append(alerts, NewAlertView(a))
	}
	return FrameView{
		FrameID:         r.FrameID,
		At:              r.At,
		EAR:             r.EAR,
		MAR:             r.MAR,
		Status:          r.Status.String(),
		Pose:            r.Pose.String(),
		FaceDetected:    r.FaceDetected,
		NightMode:       r.NightMode,
		EyeClosedStreak: r.EyeClosedStreak,
		YawnStreak:      r.YawnStreak,
		Alerts:          alerts,
		Logged:          NewLogEntries(r.LogRecords),
	}
}

// NewStateView converts the detection state.
func NewStateView(s model.DetectionState, nightMode bool, cooldown time.Duration) StateView {
	v := StateView{
		EyeClosedStreak: s.EyeClosedStreak,
		YawnStreak:      s.YawnStreak,
		NightMode:       nightMode,
		CooldownSeconds: cooldown.Seconds(),
	}
	if !s.LastAlertAt.IsZero() {
		at := s.LastAlertAt
		v.LastAlertAt = &at
	}
	return v
}
