package replay

import (
	"time"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/types"
)

// Config holds configuration for a replay run.
type Config struct {
	BaseURL    string        // Base URL of the server
	Timeout    time.Duration // HTTP request timeout
	FPS        int           // capture rate used to timestamp generated frames
	OutputFile string        // where generated frames are saved; empty skips saving
	Resend     bool          // resubmit the first frame to check deduplication
	Verbose    bool          // log every frame result
}

// Frame is one line of a frames file and the body of POST /frames.
type Frame struct {
	ID        string             `json:"id"`
	Landmarks []model.Point      `json:"landmarks,omitempty"`
	Angles    *model.EulerAngles `json:"angles,omitempty"`
	At        string             `json:"at,omitempty"`
}

// FrameResponse is the answer to POST /frames.
type FrameResponse struct {
	Status    string           `json:"status"`
	Duplicate bool             `json:"duplicate"`
	Result    *types.FrameView `json:"result,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	FramesSubmitted int
	FramesProcessed int
	FramesDuplicate int
	FramesRejected  int
	FramesFailed    int
	Alerts          map[model.AlertCategory]int
	Logged          int
	FinalStatus     string
	FinalPose       string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

func newStats() *Stats {
	return &Stats{Alerts: make(map[model.AlertCategory]int), StartTime: time.Now()}
}

// TotalAlerts sums alerts over all categories.
func (s *Stats) TotalAlerts() int {
	n := 0
	for _, c := range s.Alerts {
		n += c
	}
	return n
}
