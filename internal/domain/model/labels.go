package model

// Status is the eyelid/mouth classification of a frame.
type Status string

// Driver status labels.
const (
	StatusNormal  Status = "Normal"
	StatusDrowsy  Status = "Drowsy"
	StatusYawning Status = "Yawning"
)

func (s Status) String() string { return string(s) }

// Pose is the discrete head orientation of a frame.
type Pose string

// Head pose labels. Looking up (high pitch) is deliberately not a label.
const (
	PoseFacingForward Pose = "Facing Forward"
	PoseNoddingDown   Pose = "Nodding Down"
	PoseLookingRight  Pose = "Looking Right"
	PoseLookingLeft   Pose = "Looking Left"
	PoseTiltingLeft   Pose = "Tilting Left"
	PoseTiltingRight  Pose = "Tilting Right"
)

func (p Pose) String() string { return string(p) }

// AllPoses lists every pose label in classification priority order.
func AllPoses() []Pose {
	return []Pose{
		PoseNoddingDown,
		PoseLookingRight,
		PoseLookingLeft,
		PoseTiltingLeft,
		PoseTiltingRight,
		PoseFacingForward,
	}
}
