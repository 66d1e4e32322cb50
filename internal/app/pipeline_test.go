package app_test

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/adapters/repository"
	"github.com/strokeforge/dna/internal/app"
	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

func strokeInput(sessionID, strokeID string, points int) *model.StrokeInput {
	pts := make([]model.Point, points)
	for i := range pts {
		pts[i] = model.Point{
			X:        100 + float64(i)*8,
			Y:        200 + float64(i)*4,
			Pressure: 0.5,
			TimeMS:   float64(i) * 16,
		}
	}
	return &model.StrokeInput{
		StrokeID:     strokeID,
		SessionID:    sessionID,
		Points:       pts,
		Tool:         "pen",
		Color:        "#202020",
		BrushSize:    4,
		CanvasWidth:  1920,
		CanvasHeight: 1080,
	}
}

func testCanvas() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 230, G: 230, B: 230, A: 255}
			if x > 32 {
				c = color.RGBA{R: 30, G: 60, B: 120, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// waitFor polls until check passes or the deadline hits.
func waitFor(t *testing.T, timeout time.Duration, check func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return check()
}

func TestPipelineHotPath(t *testing.T) {
	Convey("Given a started pipeline", t, func() {
		ctx := context.Background()
		p := app.New(app.WithBudget(time.Second), app.WithSnapshotCadence(5))
		So(p.Start(ctx), ShouldBeNil)
		defer p.Stop(ctx)

		Convey("Encoding a stroke returns a finite 30-dim fingerprint", func() {
			dna, err := p.EncodeStroke(ctx, strokeInput("sess", "st-1", 20))
			So(err, ShouldBeNil)
			So(len(dna.Vector), ShouldEqual, vector.StrokeDims)
			for _, v := range dna.Vector {
				So(math.IsNaN(float64(v)), ShouldBeFalse)
				So(math.IsInf(float64(v), 0), ShouldBeFalse)
			}
			So(dna.SessionID, ShouldEqual, "sess")
			So(dna.EncodingTime, ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("Strokes accumulate into their session", func() {
			for i := 0; i < 3; i++ {
				_, err := p.EncodeStroke(ctx, strokeInput("sess", "st", 10))
				So(err, ShouldBeNil)
			}
			s := p.Session("sess")
			So(s, ShouldNotBeNil)
			So(s.TotalStrokes, ShouldEqual, 3)
			So(len(s.Strokes), ShouldEqual, 3)
		})

		Convey("Empty strokes are rejected without touching the session", func() {
			_, err := p.EncodeStroke(ctx, &model.StrokeInput{SessionID: "sess", CanvasWidth: 100, CanvasHeight: 100})
			So(err, ShouldNotBeNil)
			So(p.Session("sess"), ShouldBeNil)
		})

		Convey("The temporal tier arrives at the snapshot cadence", func() {
			for i := 0; i < 5; i++ {
				_, err := p.EncodeStroke(ctx, strokeInput("sess", "st", 10))
				So(err, ShouldBeNil)
			}
			ok := waitFor(t, 2*time.Second, func() bool {
				s := p.Session("sess")
				return s != nil && s.LatestTemporal() != nil
			})
			So(ok, ShouldBeTrue)
			tmp := p.Session("sess").LatestTemporal()
			So(len(tmp.Vector), ShouldEqual, vector.TemporalDims)
			So(tmp.StrokeCount, ShouldEqual, 5)
		})
	})
}

func TestPipelineColdPath(t *testing.T) {
	Convey("Given a started pipeline with a session", t, func() {
		ctx := context.Background()
		p := app.New(app.WithBudget(time.Second))
		So(p.Start(ctx), ShouldBeNil)
		defer p.Stop(ctx)

		_, err := p.EncodeStroke(ctx, strokeInput("sess", "st-1", 10))
		So(err, ShouldBeNil)

		Convey("A submitted snapshot resolves to an image fingerprint and merges", func() {
			f := p.SubmitSnapshot(ctx, "sess", &model.Snapshot{ID: "snap-1", Canvas: testCanvas()})
			v, err := f.Wait(ctx)
			So(err, ShouldBeNil)

			img, ok := v.(*model.ImageDNA)
			So(ok, ShouldBeTrue)
			So(len(img.Vector), ShouldEqual, vector.ImageDims)
			So(len(img.DominantColors), ShouldBeLessThanOrEqualTo, 5)

			merged := waitFor(t, 2*time.Second, func() bool {
				s := p.Session("sess")
				return s != nil && s.LatestImage() != nil
			})
			So(merged, ShouldBeTrue)
		})

		Convey("Stats reflect the work done", func() {
			st := p.Snapshot(ctx)
			So(st.Strokes, ShouldEqual, 1)
			So(st.ActiveSessions, ShouldEqual, 1)
			So(st.Healthy, ShouldBeTrue)
			So(p.IsHealthy(), ShouldBeTrue)
		})
	})
}

func TestPipelineReportsAndPersistence(t *testing.T) {
	Convey("Given a pipeline backed by the in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		p := app.New(
			app.WithBudget(time.Second),
			app.WithSnapshotCadence(5),
			app.WithStore(store),
		)
		So(p.Start(ctx), ShouldBeNil)
		defer p.Stop(ctx)

		for i := 0; i < 5; i++ {
			_, err := p.EncodeStroke(ctx, strokeInput("sess", "st", 10))
			So(err, ShouldBeNil)
		}
		waitFor(t, 2*time.Second, func() bool {
			s := p.Session("sess")
			return s != nil && s.LatestTemporal() != nil
		})

		Convey("Report bundles confidence, aesthetics, and advisories", func() {
			rep, err := p.Report("sess", time.Now())
			So(err, ShouldBeNil)
			So(rep.Confidence.Overall, ShouldBeBetweenOrEqual, 0, 1)
			So(rep.Confidence.Completeness, ShouldBeGreaterThan, 0)
			So(rep.Aesthetic.Mode, ShouldNotBeEmpty)
		})

		Convey("Reporting an unknown session fails", func() {
			_, err := p.Report("ghost", time.Now())
			So(err, ShouldNotBeNil)
		})

		Convey("EndSession persists the session and removes it from the live set", func() {
			So(p.EndSession(ctx, "sess"), ShouldBeNil)
			So(p.Session("sess"), ShouldBeNil)

			stored, err := store.LoadSession(ctx, "sess")
			So(err, ShouldBeNil)
			So(stored.TotalStrokes, ShouldEqual, 5)
			So(stored.Confidence, ShouldBeGreaterThanOrEqualTo, 0)
			So(stored.AestheticScore, ShouldNotBeNil)
		})
	})
}

func TestPipelineLifecycle(t *testing.T) {
	Convey("Given an unstarted pipeline", t, func() {
		ctx := context.Background()
		p := app.New()

		Convey("Start is idempotent and Stop drains cleanly", func() {
			So(p.Start(ctx), ShouldBeNil)
			So(p.Start(ctx), ShouldBeNil)

			_, err := p.EncodeStroke(ctx, strokeInput("sess", "st", 10))
			So(err, ShouldBeNil)

			So(p.Stop(ctx), ShouldBeNil)
			So(p.Stop(ctx), ShouldBeNil)
		})
	})
}
