package replay

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/drowsy/internal/domain/geometry"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/pose"
)

// Ratios of an attentive driver, well clear of the default thresholds.
const (
	openEAR   = 0.30
	closedEAR = 0.18
	restMAR   = 0.20
	yawnMAR   = 0.80
)

// Step is a run of identical frames.
type Step struct {
	Frames int
	EAR    float64
	MAR    float64
	Pose   model.Pose
	NoFace bool
}

// Expectation is what the server must report after a scenario. Only
// categories listed in Alerts are checked; an empty FinalStatus is not.
type Expectation struct {
	Alerts      map[model.AlertCategory]int
	FinalStatus model.Status
}

// Scenario is a named sequence of frames with the expected outcome.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
	Expect      Expectation
}

var scenarios = map[string]Scenario{
	"alert": {
		Name:        "alert",
		Description: "attentive driver facing forward; nothing fires",
		Steps:       []Step{{Frames: 60, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward}},
		Expect: Expectation{
			Alerts: map[model.AlertCategory]int{
				model.CategoryDrowsinessOrPose:   0,
				model.CategoryEyesClosedExtended: 0,
				model.CategoryOffForward:         0,
			},
			FinalStatus: model.StatusNormal,
		},
	},
	"drowsy": {
		Name:        "drowsy",
		Description: "eyes close for a second; one drowsiness alert",
		Steps: []Step{
			{Frames: 5, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward},
			{Frames: 30, EAR: closedEAR, MAR: restMAR, Pose: model.PoseFacingForward},
		},
		Expect: Expectation{
			Alerts:      map[model.AlertCategory]int{model.CategoryDrowsinessOrPose: 1},
			FinalStatus: model.StatusDrowsy,
		},
	},
	"yawn": {
		Name:        "yawn",
		Description: "mouth wide open for a second; one yawning alert",
		Steps: []Step{
			{Frames: 5, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward},
			{Frames: 30, EAR: openEAR, MAR: yawnMAR, Pose: model.PoseFacingForward},
		},
		Expect: Expectation{
			Alerts:      map[model.AlertCategory]int{model.CategoryDrowsinessOrPose: 1},
			FinalStatus: model.StatusYawning,
		},
	},
	"distracted": {
		Name:        "distracted",
		Description: "driver looks left; one off-forward alert, the rest cool down",
		Steps: []Step{
			{Frames: 5, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward},
			{Frames: 20, EAR: openEAR, MAR: restMAR, Pose: model.PoseLookingLeft},
		},
		Expect: Expectation{
			Alerts:      map[model.AlertCategory]int{model.CategoryOffForward: 1},
			FinalStatus: model.StatusNormal,
		},
	},
	"noface": {
		Name:        "noface",
		Description: "face leaves the frame; one eyes-closed-extended alert",
		Steps: []Step{
			{Frames: 5, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward},
			{Frames: 20, NoFace: true},
		},
		Expect: Expectation{
			Alerts:      map[model.AlertCategory]int{model.CategoryEyesClosedExtended: 1},
			FinalStatus: model.StatusNormal,
		},
	},
	"cooldown": {
		Name:        "cooldown",
		Description: "eyes closed for over ten seconds; the alert repeats once the cooldown passes",
		Steps: []Step{
			{Frames: 5, EAR: openEAR, MAR: restMAR, Pose: model.PoseFacingForward},
			{Frames: 400, EAR: closedEAR, MAR: restMAR, Pose: model.PoseFacingForward},
		},
		Expect: Expectation{
			Alerts:      map[model.AlertCategory]int{model.CategoryDrowsinessOrPose: 2},
			FinalStatus: model.StatusDrowsy,
		},
	},
}

// Lookup returns the built-in scenario with the given name.
func Lookup(name string) (Scenario, error) {
	sc, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

// Scenarios lists the built-in scenarios by name.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Generate expands a scenario into frames captured at fps starting at start.
// Landmarks come from geometry.SyntheticFace so the server measures exactly
// the ratios of each step.
func Generate(sc Scenario, start time.Time, fps int) []Frame {
	if fps < 1 {
		fps = 30
	}
	var frames []Frame
	i := 0
	for _, st := range sc.Steps {
		for n := 0; n < st.Frames; n++ {
			f := Frame{
				ID: uuid.NewString(),
				At: start.Add(time.Duration(i) * time.Second / time.Duration(fps)).Format(time.RFC3339Nano),
			}
			if !st.NoFace {
				f.Landmarks = geometry.SyntheticFace(st.EAR, st.MAR)
				angles := pose.AnglesFor(st.Pose)
				f.Angles = &angles
			}
			frames = append(frames, f)
			i++
		}
	}
	return frames
}
