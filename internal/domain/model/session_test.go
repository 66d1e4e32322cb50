package model_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

func TestSessionStrokeCountInvariant(t *testing.T) {
	Convey("Given a session accumulating strokes", t, func() {
		s := model.NewSession("s1", "artist", time.Now())

		for i := 0; i < 5; i++ {
			s.AddStroke(&model.StrokeDNA{ID: "d", SessionID: "s1", Vector: vector.New(vector.StrokeDims)})
		}

		Convey("TotalStrokes always equals the stroke list length", func() {
			So(s.TotalStrokes, ShouldEqual, len(s.Strokes))
			So(s.TotalStrokes, ShouldEqual, 5)
		})
	})
}

func TestSessionClone(t *testing.T) {
	Convey("Given a cloned session", t, func() {
		s := model.NewSession("s1", "artist", time.Now())
		s.AddStroke(&model.StrokeDNA{ID: "a"})
		score := 0.8
		s.AestheticScore = &score

		c := s.Clone()
		c.AddStroke(&model.StrokeDNA{ID: "b"})
		*c.AestheticScore = 0.1
		c.Artist.SessionStrokes = 99

		Convey("Mutating the clone leaves the original untouched", func() {
			So(s.TotalStrokes, ShouldEqual, 1)
			So(*s.AestheticScore, ShouldEqual, 0.8)
			So(s.Artist.SessionStrokes, ShouldEqual, 0)
		})
	})
}

func TestArtistContextRecordStroke(t *testing.T) {
	Convey("Given an artist context", t, func() {
		start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
		a := model.NewArtistContext("artist", start)

		in := &model.StrokeInput{Tool: "pen", Color: "#ff0000", BrushSize: 4}

		Convey("When strokes arrive in a steady rhythm", func() {
			now := start
			for i := 0; i < 10; i++ {
				now = now.Add(2 * time.Second)
				a.RecordStroke(in, now)
			}

			Convey("Counters and current tool state follow", func() {
				So(a.SessionStrokes, ShouldEqual, 10)
				So(a.LifetimeStrokes, ShouldEqual, 10)
				So(a.CurrentTool, ShouldEqual, "pen")
				So(a.BrushSize, ShouldEqual, 4)
			})

			Convey("Fatigue stays near zero after seconds of work", func() {
				So(a.FatigueLevel, ShouldBeLessThan, 0.05)
			})

			Convey("Focus stays high with a regular rhythm", func() {
				So(a.FocusScore, ShouldBeGreaterThan, 0.8)
			})
		})

		Convey("When a long gap occurs, it registers as a break", func() {
			a.RecordStroke(in, start.Add(time.Second))
			a.RecordStroke(in, start.Add(10*time.Minute))

			So(a.ContinuousDuration(start.Add(10*time.Minute)), ShouldEqual, time.Duration(0))
		})

		Convey("Fatigue ramps with continuous work", func() {
			now := start
			for i := 0; i < 45; i++ {
				now = now.Add(2 * time.Minute)
				a.RecordStroke(in, now)
			}
			// 90 continuous minutes against a 3h ramp.
			So(a.FatigueLevel, ShouldAlmostEqual, 0.5, 0.01)
		})
	})
}
