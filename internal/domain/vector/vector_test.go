package vector_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/domain/vector"
)

func TestValidate(t *testing.T) {
	Convey("Given a stroke-sized vector", t, func() {
		v := vector.New(vector.StrokeDims)

		Convey("Then it validates against the stroke dimension", func() {
			So(v.Validate(vector.StrokeDims), ShouldBeNil)
		})

		Convey("And fails against other dimensions", func() {
			err := v.Validate(vector.ImageDims)
			So(errors.Is(err, vector.ErrBadDimension), ShouldBeTrue)
		})

		Convey("And rejects NaN slots", func() {
			v[3] = float32(math.NaN())
			err := v.Validate(vector.StrokeDims)
			So(errors.Is(err, vector.ErrNonFinite), ShouldBeTrue)
		})

		Convey("And rejects infinite slots", func() {
			v[7] = float32(math.Inf(1))
			err := v.Validate(vector.StrokeDims)
			So(errors.Is(err, vector.ErrNonFinite), ShouldBeTrue)
		})
	})
}

func TestCloneIsIndependent(t *testing.T) {
	Convey("Given a clone", t, func() {
		v := vector.Vector{1, 2, 3}
		c := v.Clone()
		c[0] = 9

		Convey("Mutating it does not touch the original", func() {
			So(v[0], ShouldEqual, 1)
		})
	})
}

func TestStrokeViewRoundTrip(t *testing.T) {
	Convey("Given a packed stroke feature set", t, func() {
		f := &vector.StrokeFeatures{
			MeanX: 0.5, MeanY: 0.25, Width: 100, Height: 40,
			CurvMean: 0.1, Corners: 3, Duration: 2.5, Pauses: 1,
		}
		v := f.Pack()

		Convey("Then the buffer is exactly the stroke dimension", func() {
			So(len(v), ShouldEqual, vector.StrokeDims)
		})

		Convey("And unpacking restores every field", func() {
			got, err := vector.UnpackStroke(v)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, f)
		})

		Convey("And named fields land on their fixed slots", func() {
			So(v[0], ShouldEqual, float32(0.5))  // MeanX
			So(v[19], ShouldEqual, float32(3))   // Corners
			So(v[28], ShouldEqual, float32(2.5)) // Duration
		})
	})

	Convey("Unpacking a wrong-sized buffer fails", t, func() {
		_, err := vector.UnpackStroke(vector.New(29))
		So(errors.Is(err, vector.ErrBadDimension), ShouldBeTrue)
	})
}

func TestBandLayouts(t *testing.T) {
	Convey("The image bands concatenate to the image dimension", t, func() {
		sum := vector.ImageEdgeBand + vector.ImageOrientBand + vector.ImageColorBand +
			vector.ImageStructureBand + vector.ImageSemanticBand
		So(sum, ShouldEqual, vector.ImageDims)

		var f vector.ImageFeatures
		f.Edge[0] = 1
		f.Semantic[vector.ImageSemanticBand-1] = 2
		v := f.Pack()
		So(len(v), ShouldEqual, vector.ImageDims)
		So(v[0], ShouldEqual, float32(1))
		So(v[vector.ImageDims-1], ShouldEqual, float32(2))

		got, err := vector.UnpackImage(v)
		So(err, ShouldBeNil)
		So(got, ShouldResemble, &f)
	})

	Convey("The temporal bands concatenate to the temporal dimension", t, func() {
		var f vector.TemporalFeatures
		f.Learning[0] = 0.5
		f.Reserved[1] = 0.75
		v := f.Pack()
		So(len(v), ShouldEqual, vector.TemporalDims)

		got, err := vector.UnpackTemporal(v)
		So(err, ShouldBeNil)
		So(got, ShouldResemble, &f)
	})
}
