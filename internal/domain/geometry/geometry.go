// Package geometry computes eye and mouth openness ratios from facial landmarks.
package geometry

import (
	"fmt"
	"math"

	"github.com/okian/drowsy/internal/domain/model"
)

// Landmark index ranges of the 68-point layout, half-open [start, end).
const (
	leftEyeStart    = 36
	leftEyeEnd      = 42
	rightEyeStart   = 42
	rightEyeEnd     = 48
	innerMouthStart = 60
	innerMouthEnd   = 68

	eyePoints   = leftEyeEnd - leftEyeStart
	mouthPoints = innerMouthEnd - innerMouthStart
)

// Ratios holds the openness measures of one face.
type Ratios struct {
	LeftEAR  float64
	RightEAR float64
	EAR      float64 // mean of both eyes
	MAR      float64
}

// Distance is the Euclidean distance between two points.
func Distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EyeAspectRatio computes (|p2-p6| + |p3-p5|) / (2|p1-p4|) over a 6-point eye
// contour ordered outer corner, two upper lid points, inner corner, two lower
// lid points. It panics unless len(eye) == 6.
func EyeAspectRatio(eye []model.Point) float64 {
	if len(eye) != eyePoints {
		panic(fmt.Sprintf("geometry: eye contour needs %d points, got %d", eyePoints, len(eye)))
	}
	a := Distance(eye[1], eye[5])
	b := Distance(eye[2], eye[4])
	c := Distance(eye[0], eye[3])
	return (a + b) / (2 * c)
}

// MouthAspectRatio computes (|p4-p8| + |p3-p7| + |p2-p6|) / (3|p1-p5|) over the
// 8-point inner mouth contour. It panics unless len(mouth) == 8.
func MouthAspectRatio(mouth []model.Point) float64 {
	if len(mouth) != mouthPoints {
		panic(fmt.Sprintf("geometry: mouth contour needs %d points, got %d", mouthPoints, len(mouth)))
	}
	a := Distance(mouth[3], mouth[7])
	b := Distance(mouth[2], mouth[6])
	c := Distance(mouth[1], mouth[5])
	d := Distance(mouth[0], mouth[4])
	return (a + b + c) / (3 * d)
}

// LeftEye returns the six left eye points (36-41).
func LeftEye(l model.LandmarkSet) []model.Point {
	return l[leftEyeStart:leftEyeEnd]
}

// RightEye returns the six right eye points (42-47).
func RightEye(l model.LandmarkSet) []model.Point {
	return l[rightEyeStart:rightEyeEnd]
}

// InnerMouth returns the eight inner mouth points (60-67).
func InnerMouth(l model.LandmarkSet) []model.Point {
	return l[innerMouthStart:innerMouthEnd]
}

// Measure computes both eye ratios, their mean and the mouth ratio.
// The set must have passed Validate.
func Measure(l model.LandmarkSet) Ratios {
	left := EyeAspectRatio(LeftEye(l))
	right := EyeAspectRatio(RightEye(l))
	return Ratios{
		LeftEAR:  left,
		RightEAR: right,
		EAR:      (left + right) / 2,
		MAR:      MouthAspectRatio(InnerMouth(l)),
	}
}

// Validate checks that l is a complete landmark set with finite coordinates
// whose ratios can be measured: both eyes and the inner mouth need a non-zero
// width and every ratio must come out finite.
func Validate(l model.LandmarkSet) error {
	if len(l) != model.LandmarkCount {
		return fmt.Errorf("%w: want %d, got %d", ErrLandmarkCount, model.LandmarkCount, len(l))
	}
	for i, p := range l {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("%w: point %d", ErrNonFinite, i)
		}
	}

	widths := []struct {
		name string
		a, b int
	}{
		{"left eye", leftEyeStart, leftEyeStart + 3},
		{"right eye", rightEyeStart, rightEyeStart + 3},
		{"inner mouth", innerMouthStart, innerMouthStart + 4},
	}
	for _, w := range widths {
		if Distance(l[w.a], l[w.b]) == 0 {
			return fmt.Errorf("%w: %s has zero width", ErrDegenerate, w.name)
		}
	}

	// huge coordinates can still overflow the distances
	r := Measure(l)
	if !isFinite(r.EAR) || !isFinite(r.MAR) {
		return fmt.Errorf("%w: ratios overflow", ErrDegenerate)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
