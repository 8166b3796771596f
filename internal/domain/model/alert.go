package model

import (
	"fmt"
	"time"
)

// LogTimeLayout renders timestamps as DD-MM-YYYY HH:MM:SS.
const LogTimeLayout = "02-01-2006 15:04:05"

// AlertCategory tells delivery channels which condition raised an alert.
type AlertCategory string

// Alert categories.
const (
	CategoryDrowsinessOrPose   AlertCategory = "drowsiness_or_pose"
	CategoryEyesClosedExtended AlertCategory = "eyes_closed_extended"
	CategoryOffForward         AlertCategory = "off_forward"
)

// AlertEvent is a fired alert handed to the delivery channels.
type AlertEvent struct {
	ID       string        `json:"id"`
	Category AlertCategory `json:"category"`
	Message  string        `json:"message"` // spoken text
	Title    string        `json:"title"`   // notification title
	Detail   string        `json:"detail"`  // notification body
	Status   Status        `json:"status"`
	Pose     Pose          `json:"pose"`
	At       time.Time     `json:"at"`
}

// LogRecord is one line of the append-only alert log.
type LogRecord struct {
	At     time.Time `json:"at"`
	Status Status    `json:"status"`
	Pose   Pose      `json:"pose"`
}

// String renders the record in the alert log line format.
func (r LogRecord) String() string {
	return fmt.Sprintf("%s, %s, %s", r.At.Local().Format(LogTimeLayout), r.Status, r.Pose)
}

// Delivery is the unit of work for the asynchronous delivery workers.
// Log records never travel with it; they are written in frame order by the
// caller before the alert is queued.
type Delivery struct {
	Alert AlertEvent
}
