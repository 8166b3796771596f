// Package model contains domain models passed between layers.
package model

import "time"

// LandmarkCount is the number of points produced by the 68-point face shape predictor.
const LandmarkCount = 68

// Point is a 2D landmark coordinate in image pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet is the ordered set of facial landmarks for one face, indices 0-67.
// A nil set means no face was detected in the frame.
type LandmarkSet []Point

// EulerAngles is the head orientation in degrees as solved by the pose solver.
type EulerAngles struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Frame is one unit of input for the detection engine.
type Frame struct {
	ID        string       // optional client id used for idempotency
	Landmarks LandmarkSet  // nil when no face was detected
	Angles    *EulerAngles // nil when the pose was not solved
	At        time.Time    // capture time; zero means "now"
}

// HasFace reports whether the frame carries landmarks.
func (f Frame) HasFace() bool {
	return f.Landmarks != nil
}

// DetectionState is the state the engine carries from one frame to the next.
type DetectionState struct {
	EyeClosedStreak int       // consecutive frames with EAR under threshold
	YawnStreak      int       // consecutive frames with MAR over threshold
	LastAlertAt     time.Time // zero until the first alert fires
}

// FrameResult is everything the engine produces for one frame.
type FrameResult struct {
	FrameID         string
	At              time.Time
	EAR             float64
	MAR             float64
	Status          Status
	Pose            Pose
	FaceDetected    bool
	NightMode       bool
	EyeClosedStreak int
	YawnStreak      int
	Alerts          []AlertEvent
	LogRecords      []LogRecord
	Suppressed      int // alert conditions held back by the cooldown
}
