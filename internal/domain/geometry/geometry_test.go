package geometry_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/drowsy/internal/domain/geometry"
	"github.com/okian/drowsy/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func translate(pts []model.Point, dx, dy float64) []model.Point {
	out := make([]model.Point, len(pts))
	for i, p := range pts {
		out[i] = model.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

func scale(pts []model.Point, k float64) []model.Point {
	out := make([]model.Point, len(pts))
	for i, p := range pts {
		out[i] = model.Point{X: p.X * k, Y: p.Y * k}
	}
	return out
}

func TestEyeAspectRatio(t *testing.T) {
	Convey("Given six eye contour points", t, func() {
		open := []model.Point{
			{X: 0, Y: 0}, {X: 10, Y: -5}, {X: 20, Y: -5},
			{X: 30, Y: 0}, {X: 20, Y: 5}, {X: 10, Y: 5},
		}

		Convey("When the lids are 10px apart on a 30px wide eye", func() {
			Convey("Then EAR is 20/60", func() {
				So(geometry.EyeAspectRatio(open), ShouldAlmostEqual, 1.0/3.0, tolerance)
			})
		})

		Convey("When the eye is perfectly closed", func() {
			closed := []model.Point{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0},
				{X: 30, Y: 0}, {X: 20, Y: 0}, {X: 10, Y: 0},
			}
			Convey("Then EAR is zero", func() {
				So(geometry.EyeAspectRatio(closed), ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When the contour is translated", func() {
			moved := translate(open, 123.5, -77)
			Convey("Then EAR is unchanged", func() {
				So(geometry.EyeAspectRatio(moved), ShouldAlmostEqual, geometry.EyeAspectRatio(open), tolerance)
			})
		})

		Convey("When the contour is scaled uniformly", func() {
			bigger := scale(open, 3.5)
			Convey("Then EAR is unchanged because it is a ratio of lengths", func() {
				So(geometry.EyeAspectRatio(bigger), ShouldAlmostEqual, geometry.EyeAspectRatio(open), tolerance)
			})
		})

		Convey("When the contour has the wrong length", func() {
			Convey("Then it fails fast", func() {
				So(func() { geometry.EyeAspectRatio(open[:5]) }, ShouldPanic)
			})
		})
	})
}

func TestMouthAspectRatio(t *testing.T) {
	Convey("Given eight inner mouth points", t, func() {
		Convey("When the mouth is a regular octagon", func() {
			mouth := make([]model.Point, 8)
			for i := range mouth {
				theta := math.Pi - float64(i)*math.Pi/4
				mouth[i] = model.Point{X: 10 * math.Cos(theta), Y: -10 * math.Sin(theta)}
			}
			Convey("Then every ratio pair spans the diameter and MAR is 1", func() {
				So(geometry.MouthAspectRatio(mouth), ShouldAlmostEqual, 1.0, tolerance)
			})
		})

		Convey("When the lips touch", func() {
			mouth := []model.Point{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0},
				{X: 40, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0},
			}
			Convey("Then MAR is zero", func() {
				So(geometry.MouthAspectRatio(mouth), ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When the contour has the wrong length", func() {
			Convey("Then it fails fast", func() {
				So(func() { geometry.MouthAspectRatio(make([]model.Point, 6)) }, ShouldPanic)
			})
		})
	})
}

func TestMeasure(t *testing.T) {
	Convey("Given synthetic faces with known ratios", t, func() {
		cases := []struct{ ear, mar float64 }{
			{0.30, 0.20}, {0.10, 0.70}, {0.0, 0.0}, {0.25, 0.5},
		}
		for _, c := range cases {
			face := geometry.SyntheticFace(c.ear, c.mar)
			So(geometry.Validate(face), ShouldBeNil)

			r := geometry.Measure(face)
			So(r.LeftEAR, ShouldAlmostEqual, c.ear, tolerance)
			So(r.RightEAR, ShouldAlmostEqual, c.ear, tolerance)
			So(r.EAR, ShouldAlmostEqual, c.ear, tolerance)
			So(r.MAR, ShouldAlmostEqual, c.mar, tolerance)
		}
	})

	Convey("Given a face with one eye closed", t, func() {
		face := geometry.SyntheticFace(0.3, 0.2)
		closed := geometry.SyntheticFace(0.0, 0.2)
		copy(face[42:48], closed[42:48])

		Convey("Then EAR averages both eyes", func() {
			r := geometry.Measure(face)
			So(r.LeftEAR, ShouldAlmostEqual, 0.3, tolerance)
			So(r.RightEAR, ShouldAlmostEqual, 0, tolerance)
			So(r.EAR, ShouldAlmostEqual, 0.15, tolerance)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given landmark sets", t, func() {
		Convey("When the set is short", func() {
			err := geometry.Validate(make(model.LandmarkSet, 67))
			Convey("Then it reports the count", func() {
				So(errors.Is(err, geometry.ErrLandmarkCount), ShouldBeTrue)
			})
		})

		Convey("When the set is empty but not nil", func() {
			err := geometry.Validate(model.LandmarkSet{})
			So(errors.Is(err, geometry.ErrLandmarkCount), ShouldBeTrue)
		})

		Convey("When a coordinate is NaN", func() {
			face := geometry.SyntheticFace(0.3, 0.3)
			face[10].Y = math.NaN()
			err := geometry.Validate(face)
			Convey("Then it reports a non-finite point", func() {
				So(errors.Is(err, geometry.ErrNonFinite), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "point 10")
			})
		})

		Convey("When a coordinate is infinite", func() {
			face := geometry.SyntheticFace(0.3, 0.3)
			face[40].X = math.Inf(1)
			So(errors.Is(geometry.Validate(face), geometry.ErrNonFinite), ShouldBeTrue)
		})

		Convey("When every point coincides", func() {
			face := make(model.LandmarkSet, model.LandmarkCount)
			for i := range face {
				face[i] = model.Point{X: 1, Y: 1}
			}
			err := geometry.Validate(face)
			Convey("Then the zero-width eye is reported", func() {
				So(errors.Is(err, geometry.ErrDegenerate), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "left eye")
			})
		})

		Convey("When only the mouth corners coincide", func() {
			face := geometry.SyntheticFace(0.3, 0.3)
			face[64] = face[60]
			err := geometry.Validate(face)
			So(errors.Is(err, geometry.ErrDegenerate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "inner mouth")
		})

		Convey("When the right eye corners coincide", func() {
			face := geometry.SyntheticFace(0.3, 0.3)
			face[45] = face[42]
			So(errors.Is(geometry.Validate(face), geometry.ErrDegenerate), ShouldBeTrue)
		})

		Convey("When the coordinates are large enough to overflow", func() {
			face := geometry.SyntheticFace(0.3, 0.3)
			face[37].Y = -0.9 * math.MaxFloat64
			face[41].Y = 0.9 * math.MaxFloat64
			So(errors.Is(geometry.Validate(face), geometry.ErrDegenerate), ShouldBeTrue)
		})

		Convey("When the eyes are closed but have a width", func() {
			So(geometry.Validate(geometry.SyntheticFace(0, 0)), ShouldBeNil)
		})
	})
}

func TestRegions(t *testing.T) {
	Convey("Given a landmark set", t, func() {
		face := geometry.SyntheticFace(0.3, 0.3)
		So(len(geometry.LeftEye(face)), ShouldEqual, 6)
		So(len(geometry.RightEye(face)), ShouldEqual, 6)
		So(len(geometry.InnerMouth(face)), ShouldEqual, 8)
		So(geometry.LeftEye(face)[0], ShouldResemble, face[36])
		So(geometry.RightEye(face)[5], ShouldResemble, face[47])
		So(geometry.InnerMouth(face)[0], ShouldResemble, face[60])
		So(geometry.Distance(model.Point{X: 0, Y: 0}, model.Point{X: 3, Y: 4}), ShouldEqual, 5)
	})
}
