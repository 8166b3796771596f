package geometry

import (
	"math"

	"github.com/okian/drowsy/internal/domain/model"
)

// Layout of the synthetic face, in pixels.
const (
	faceCenterX   = 200.0
	faceCenterY   = 200.0
	eyeWidth      = 30.0
	eyeOffsetX    = 40.0
	eyeOffsetY    = -20.0
	mouthWidth    = 40.0
	mouthOffsetY  = 60.0
	jawRadius     = 110.0
	lipPointShift = 10.0
)

// SyntheticFace builds a complete 68-point landmark set whose averaged eye
// aspect ratio is ear and whose mouth aspect ratio is mar. Points outside the
// eyes and inner mouth are plausible placeholders. Negative ratios are treated
// as zero.
func SyntheticFace(ear, mar float64) model.LandmarkSet {
	ear = math.Max(ear, 0)
	mar = math.Max(mar, 0)

	l := make(model.LandmarkSet, model.LandmarkCount)

	// jaw line 0-16
	for i := 0; i <= 16; i++ {
		theta := math.Pi * float64(i) / 16
		l[i] = model.Point{
			X: faceCenterX - jawRadius*math.Cos(theta),
			Y: faceCenterY + jawRadius*math.Sin(theta)*0.9,
		}
	}
	// brows 17-26
	for i := 17; i <= 26; i++ {
		l[i] = model.Point{X: faceCenterX - 70 + float64(i-17)*15.5, Y: faceCenterY - 45}
	}
	// nose bridge 27-30 and base 31-35
	for i := 27; i <= 30; i++ {
		l[i] = model.Point{X: faceCenterX, Y: faceCenterY - 25 + float64(i-27)*12}
	}
	for i := 31; i <= 35; i++ {
		l[i] = model.Point{X: faceCenterX - 16 + float64(i-31)*8, Y: faceCenterY + 20}
	}

	placeEye(l[leftEyeStart:leftEyeEnd], faceCenterX-eyeOffsetX, faceCenterY+eyeOffsetY, ear)
	placeEye(l[rightEyeStart:rightEyeEnd], faceCenterX+eyeOffsetX, faceCenterY+eyeOffsetY, ear)

	// outer lip 48-59
	for i := 48; i <= 59; i++ {
		theta := 2 * math.Pi * float64(i-48) / 12
		l[i] = model.Point{
			X: faceCenterX - 30*math.Cos(theta),
			Y: faceCenterY + mouthOffsetY - 15*math.Sin(theta),
		}
	}
	placeMouth(l[innerMouthStart:innerMouthEnd], faceCenterX, faceCenterY+mouthOffsetY, mar)

	return l
}

// placeEye lays out corners eyeWidth apart and lids spaced so that both
// vertical pairs measure ear*eyeWidth.
func placeEye(eye []model.Point, cx, cy, ear float64) {
	half := ear * eyeWidth / 2
	eye[0] = model.Point{X: cx - eyeWidth/2, Y: cy}
	eye[1] = model.Point{X: cx - eyeWidth/6, Y: cy - half}
	eye[2] = model.Point{X: cx + eyeWidth/6, Y: cy - half}
	eye[3] = model.Point{X: cx + eyeWidth/2, Y: cy}
	eye[4] = model.Point{X: cx + eyeWidth/6, Y: cy + half}
	eye[5] = model.Point{X: cx - eyeWidth/6, Y: cy + half}
}

// placeMouth lays out the inner lip with each ratio pair vertically aligned,
// so every pair measures mar*mouthWidth.
func placeMouth(mouth []model.Point, cx, cy, mar float64) {
	half := mar * mouthWidth / 2
	mouth[0] = model.Point{X: cx - mouthWidth/2, Y: cy}
	mouth[1] = model.Point{X: cx - lipPointShift, Y: cy - half}
	mouth[2] = model.Point{X: cx, Y: cy - half}
	mouth[3] = model.Point{X: cx + lipPointShift, Y: cy - half}
	mouth[4] = model.Point{X: cx + mouthWidth/2, Y: cy}
	mouth[5] = model.Point{X: cx - lipPointShift, Y: cy + half}
	mouth[6] = model.Point{X: cx, Y: cy + half}
	mouth[7] = model.Point{X: cx + lipPointShift, Y: cy + half}
}
