package distance_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/domain/distance"
	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

func TestMetrics(t *testing.T) {
	Convey("Given two simple vectors", t, func() {
		a := vector.Vector{1, 0, 0}
		b := vector.Vector{0, 1, 0}

		Convey("Euclidean and Manhattan distance to self is zero", func() {
			for _, m := range []distance.Metric{distance.Euclidean, distance.Manhattan} {
				d, err := distance.Between(a, a, m)
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 0)
			}
		})

		Convey("All metrics are symmetric", func() {
			for _, m := range []distance.Metric{distance.Euclidean, distance.Cosine, distance.Manhattan} {
				ab, err := distance.Between(a, b, m)
				So(err, ShouldBeNil)
				ba, err := distance.Between(b, a, m)
				So(err, ShouldBeNil)
				So(ab, ShouldEqual, ba)
			}
		})

		Convey("Known values come out right", func() {
			d, err := distance.Between(a, b, distance.Euclidean)
			So(err, ShouldBeNil)
			So(d, ShouldAlmostEqual, 1.41421356, 0.0001)

			d, err = distance.Between(a, b, distance.Manhattan)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 2)

			d, err = distance.Between(a, b, distance.Cosine)
			So(err, ShouldBeNil)
			So(d, ShouldAlmostEqual, 1, 0.0001) // orthogonal
		})

		Convey("Cosine distance against a zero vector is maximal", func() {
			zero := vector.Vector{0, 0, 0}
			d, err := distance.Between(zero, b, distance.Cosine)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 1)

			d, err = distance.Between(b, zero, distance.Cosine)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 1)
		})

		Convey("Unequal lengths are rejected", func() {
			_, err := distance.Between(a, vector.Vector{1, 2}, distance.Euclidean)
			So(errors.Is(err, distance.ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("Unknown metrics are rejected", func() {
			_, err := distance.Between(a, b, distance.Metric("chebyshev"))
			So(errors.Is(err, distance.ErrUnknownMetric), ShouldBeTrue)
		})
	})
}

func TestKNearest(t *testing.T) {
	Convey("Given a small corpus", t, func() {
		calc := distance.New(distance.WithMetric(distance.Euclidean))
		corpus := []vector.Vector{
			{0, 0}, {1, 0}, {5, 5}, {0.5, 0},
		}
		query := vector.Vector{0.4, 0}

		Convey("Nearest finds the closest vector", func() {
			n, err := calc.Nearest(query, corpus)
			So(err, ShouldBeNil)
			So(n.Index, ShouldEqual, 3)
		})

		Convey("KNearest orders by ascending distance and clamps k", func() {
			ns, err := calc.KNearest(query, corpus, 10)
			So(err, ShouldBeNil)
			So(len(ns), ShouldEqual, 4)
			So(ns[0].Index, ShouldEqual, 3)
			So(ns[1].Index, ShouldEqual, 0)
			So(ns[3].Index, ShouldEqual, 2)
			for i := 1; i < len(ns); i++ {
				So(ns[i].Distance, ShouldBeGreaterThanOrEqualTo, ns[i-1].Distance)
			}
		})

		Convey("An empty corpus is rejected", func() {
			_, err := calc.KNearest(query, nil, 1)
			So(errors.Is(err, distance.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

// strokeSeq builds a sequence of stroke records whose vectors march along a
// line, optionally stretched to a different length.
func strokeSeq(vals ...float32) []*model.StrokeDNA {
	out := make([]*model.StrokeDNA, len(vals))
	for i, v := range vals {
		vec := vector.New(vector.StrokeDims)
		vec[0] = v
		vec[1] = 1 // keep vectors non-zero for cosine
		out[i] = &model.StrokeDNA{Vector: vec}
	}
	return out
}

func TestSequence(t *testing.T) {
	Convey("Given stroke sequences", t, func() {
		calc := distance.New(distance.WithMetric(distance.Euclidean))

		Convey("Index alignment truncates to the shorter sequence", func() {
			a := strokeSeq(0, 1, 2, 3, 4, 5)
			b := strokeSeq(0, 1, 2)
			d, err := calc.Sequence(a, b, distance.AlignIndex)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 0) // the first three match exactly
		})

		Convey("A sequence is at distance zero from itself under DTW", func() {
			a := strokeSeq(0, 1, 2, 3)
			d, err := calc.Sequence(a, a, distance.AlignDTW)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 0)
		})

		Convey("DTW tolerates a stretched copy better than index alignment", func() {
			a := strokeSeq(0, 1, 2, 3)
			b := strokeSeq(0, 0, 1, 1, 2, 2, 3, 3)
			dtw, err := calc.Sequence(a, b, distance.AlignDTW)
			So(err, ShouldBeNil)
			idx, err := calc.Sequence(a, b, distance.AlignIndex)
			So(err, ShouldBeNil)
			So(dtw, ShouldBeLessThan, idx)
			So(dtw, ShouldEqual, 0) // perfect warp exists
		})

		Convey("Empty sequences are rejected", func() {
			_, err := calc.Sequence(nil, strokeSeq(1), distance.AlignIndex)
			So(errors.Is(err, distance.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

// testSession builds a session with count strokes whose first feature is v.
func testSession(id string, v float32, count int) *model.Session {
	s := model.NewSession(id, "", time.Now())
	for i := 0; i < count; i++ {
		vec := vector.New(vector.StrokeDims)
		vec[0] = v
		vec[1] = 1
		s.AddStroke(&model.StrokeDNA{Vector: vec})
	}
	return s
}

func TestMultiTier(t *testing.T) {
	Convey("Given two sessions with only stroke tiers", t, func() {
		calc := distance.New()
		a := testSession("a", 1, 3)
		b := testSession("b", 1, 3)

		Convey("Identical strokes with missing image/temporal tiers still pay the missing-tier penalty", func() {
			d, err := calc.MultiTier(a, b)
			So(err, ShouldBeNil)
			// stroke 0 * 0.4 + image 1.0 * 0.3 + temporal 1.0 * 0.2, over 0.9
			So(d, ShouldAlmostEqual, 0.5/0.9, 0.0001)
		})

		Convey("Present image tiers replace the penalty with a real distance", func() {
			iv := vector.New(vector.ImageDims)
			iv[0] = 1
			a.AddImage(&model.ImageDNA{Vector: iv})
			b.AddImage(&model.ImageDNA{Vector: iv.Clone()})

			d, err := calc.MultiTier(a, b)
			So(err, ShouldBeNil)
			// image distance now 0; only the temporal penalty remains.
			So(d, ShouldAlmostEqual, 0.2/0.9, 0.0001)
		})

		Convey("Aesthetic scores fold in only when both sides carry one", func() {
			sa, sb := 0.9, 0.4
			a.AestheticScore = &sa
			d1, err := calc.MultiTier(a, b)
			So(err, ShouldBeNil)

			b.AestheticScore = &sb
			d2, err := calc.MultiTier(a, b)
			So(err, ShouldBeNil)

			// One-sided score: unchanged from the stroke+penalty case.
			So(d1, ShouldAlmostEqual, 0.5/0.9, 0.0001)
			// Both sides: |0.9-0.4| * 0.1 joins the sum and the normalizer.
			So(d2, ShouldAlmostEqual, (0.5+0.05)/1.0, 0.0001)
		})

		Convey("Sessions without strokes are rejected", func() {
			empty := model.NewSession("e", "", time.Now())
			_, err := calc.MultiTier(a, empty)
			So(errors.Is(err, distance.ErrEmptyInput), ShouldBeTrue)
		})
	})
}
