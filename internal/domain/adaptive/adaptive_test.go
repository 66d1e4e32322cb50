package adaptive_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/domain/adaptive"
	"github.com/strokeforge/dna/internal/domain/model"
)

func temporalWith(fatigue, focus float64, flow bool) *model.TemporalDNA {
	return &model.TemporalDNA{FatigueLevel: fatigue, FocusScore: focus, FlowState: flow}
}

func TestFatigueBuckets(t *testing.T) {
	cases := []struct {
		fatigue float64
		want    adaptive.FatigueBucket
	}{
		{0, adaptive.BucketFresh},
		{0.24, adaptive.BucketFresh},
		{0.25, adaptive.BucketFocused},
		{0.49, adaptive.BucketFocused},
		{0.5, adaptive.BucketTired},
		{0.74, adaptive.BucketTired},
		{0.75, adaptive.BucketExhausted},
		{1, adaptive.BucketExhausted},
	}
	for _, tc := range cases {
		if got := adaptive.BucketFor(tc.fatigue); got != tc.want {
			t.Errorf("BucketFor(%v) = %q, want %q", tc.fatigue, got, tc.want)
		}
	}
}

func TestAdvise(t *testing.T) {
	Convey("Given an advisory manager", t, func() {
		m := adaptive.New()
		now := time.Now()

		Convey("Exhaustion produces a critical intervention", func() {
			out := m.Advise(temporalWith(0.8, 0.9, false), nil, now)
			So(len(out), ShouldEqual, 1)
			So(out[0].Kind, ShouldEqual, adaptive.KindIntervention)
			So(out[0].Priority, ShouldEqual, adaptive.PriorityCritical)
		})

		Convey("Tiredness produces a high-priority warning", func() {
			out := m.Advise(temporalWith(0.6, 0.9, false), nil, now)
			So(len(out), ShouldEqual, 1)
			So(out[0].Kind, ShouldEqual, adaptive.KindWarning)
			So(out[0].Priority, ShouldEqual, adaptive.PriorityHigh)
		})

		Convey("A fresh focused artist gets nothing", func() {
			So(m.Advise(temporalWith(0.1, 0.9, false), nil, now), ShouldBeEmpty)
		})

		Convey("Two continuous hours always earn a break suggestion", func() {
			artist := model.NewArtistContext("artist", now.Add(-3*time.Hour))
			out := m.Advise(temporalWith(0.1, 0.9, false), artist, now)
			So(len(out), ShouldEqual, 1)
			So(out[0].Kind, ShouldEqual, adaptive.KindSuggestion)
		})

		Convey("Advisories come out ordered by urgency", func() {
			artist := model.NewArtistContext("artist", now.Add(-3*time.Hour))
			out := m.Advise(temporalWith(0.8, 0.3, true), artist, now)

			So(len(out), ShouldEqual, 4)
			for i := 1; i < len(out); i++ {
				So(out[i-1].Priority, ShouldBeLessThanOrEqualTo, out[i].Priority)
			}
			So(out[0].Kind, ShouldEqual, adaptive.KindIntervention)
		})

		Convey("A nil temporal fingerprint still yields duration advice", func() {
			artist := model.NewArtistContext("artist", now.Add(-3*time.Hour))
			out := m.Advise(nil, artist, now)
			So(len(out), ShouldEqual, 1)
			So(out[0].Kind, ShouldEqual, adaptive.KindSuggestion)
		})
	})
}

func TestAdjustBrush(t *testing.T) {
	Convey("Given the brush adjuster", t, func() {
		m := adaptive.New()

		Convey("Inside the gates nothing changes", func() {
			adj := m.AdjustBrush(0.2, 0.9)
			So(adj.Active, ShouldBeFalse)
			So(adj.SizeScale, ShouldEqual, 1)
			So(adj.OpacityScale, ShouldEqual, 1)
			So(adj.SmoothingScale, ShouldEqual, 1)
		})

		Convey("Full fatigue maxes out size and smoothing", func() {
			adj := m.AdjustBrush(1, 0.9)
			So(adj.Active, ShouldBeTrue)
			So(adj.SizeScale, ShouldAlmostEqual, 1.3, 1e-9)
			So(adj.SmoothingScale, ShouldAlmostEqual, 1.5, 1e-9)
			So(adj.OpacityScale, ShouldEqual, 1) // focus still sharp
		})

		Convey("Low focus drops opacity toward the floor", func() {
			adj := m.AdjustBrush(0.1, 0)
			So(adj.Active, ShouldBeTrue)
			So(adj.OpacityScale, ShouldAlmostEqual, 0.7, 1e-9)

			half := m.AdjustBrush(0.1, 0.35)
			So(half.OpacityScale, ShouldAlmostEqual, 0.85, 1e-9)
		})

		Convey("Scales stay inside their documented ranges", func() {
			for _, f := range []float64{0, 0.3, 0.6, 1, 2} {
				for _, fo := range []float64{0, 0.4, 0.7, 1} {
					adj := m.AdjustBrush(f, fo)
					So(adj.SizeScale, ShouldBeBetweenOrEqual, 1, 1.3)
					So(adj.OpacityScale, ShouldBeBetweenOrEqual, 0.7, 1)
					So(adj.SmoothingScale, ShouldBeBetweenOrEqual, 1, 1.5)
				}
			}
		})
	})
}
