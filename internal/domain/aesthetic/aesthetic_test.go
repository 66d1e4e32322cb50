package aesthetic_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/domain/aesthetic"
	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

func imageWith(colors []model.DominantColor, tex model.TextureSummary) *model.ImageDNA {
	return &model.ImageDNA{
		Vector:         vector.New(vector.ImageDims),
		DominantColors: colors,
		Texture:        tex,
	}
}

func strokeAt(x, y float64, tool, color string) *model.StrokeDNA {
	f := vector.StrokeFeatures{
		VelMean: 1, PressureMean: 0.5, CurvMean: 0.2, Density: 2, Elongation: 1.5,
	}
	return &model.StrokeDNA{
		Vector: f.Pack(),
		Bounds: &model.NormalizedBounds{X: x - 10, Y: y - 10, Width: 20, Height: 20, Scale: 1},
		Tool:   tool,
		Color:  color,
	}
}

func TestColorHarmony(t *testing.T) {
	Convey("Given a regulator scoring dominant-color pairs", t, func() {
		reg := aesthetic.New()
		now := time.Now()

		score := func(colors ...model.DominantColor) float64 {
			s := model.NewSession("sess", "", now)
			s.AddImage(imageWith(colors, model.TextureSummary{}))
			return reg.Score(s, now).ColorHarmony
		}

		red := model.DominantColor{R: 255}
		cyan := model.DominantColor{G: 255, B: 255}
		green := model.DominantColor{G: 255}
		orange := model.DominantColor{R: 255, G: 127}
		gray := model.DominantColor{R: 128, G: 128, B: 128}

		Convey("Complementary hues score the top band", func() {
			So(score(red, cyan), ShouldAlmostEqual, 0.9, 1e-9)
		})

		Convey("Triadic hues score the middle band", func() {
			So(score(red, green), ShouldAlmostEqual, 0.85, 1e-9)
		})

		Convey("Analogous hues score the low band", func() {
			So(score(red, orange), ShouldAlmostEqual, 0.8, 1e-9)
		})

		Convey("An achromatic color skips hue bands for the similarity proxy", func() {
			// Saturation gap 1.0, value gap 1 - 128/255.
			want := 0.7 * (1 - (1+(1-128.0/255))/2)
			So(score(red, gray), ShouldAlmostEqual, want, 1e-9)
		})

		Convey("Two grays never register as a hue relationship", func() {
			black := model.DominantColor{}
			white := model.DominantColor{R: 255, G: 255, B: 255}
			// Both hueless; value gap 1.0 leaves similarity 0.5.
			So(score(black, white), ShouldAlmostEqual, 0.7*0.5, 1e-9)
		})

		Convey("Fewer than two colors scores neutral", func() {
			So(score(red), ShouldAlmostEqual, 0.5, 1e-9)
		})
	})
}

func TestCompositionBalance(t *testing.T) {
	Convey("Given strokes placed on the reference canvas", t, func() {
		reg := aesthetic.New()
		now := time.Now()

		Convey("One stroke per quadrant around the center is perfectly balanced", func() {
			s := model.NewSession("sess", "", now)
			s.AddStroke(strokeAt(480, 270, "pen", "#111111"))
			s.AddStroke(strokeAt(1440, 270, "pen", "#111111"))
			s.AddStroke(strokeAt(480, 810, "pen", "#111111"))
			s.AddStroke(strokeAt(1440, 810, "pen", "#111111"))

			So(reg.Score(s, now).Composition, ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Everything piled into one corner scores low", func() {
			s := model.NewSession("sess", "", now)
			for i := 0; i < 4; i++ {
				s.AddStroke(strokeAt(100, 100, "pen", "#111111"))
			}

			centered := model.NewSession("sess2", "", now)
			centered.AddStroke(strokeAt(480, 270, "pen", "#111111"))
			centered.AddStroke(strokeAt(1440, 270, "pen", "#111111"))
			centered.AddStroke(strokeAt(480, 810, "pen", "#111111"))
			centered.AddStroke(strokeAt(1440, 810, "pen", "#111111"))

			So(reg.Score(s, now).Composition, ShouldBeLessThan, reg.Score(centered, now).Composition)
		})

		Convey("No bounded strokes scores neutral", func() {
			s := model.NewSession("sess", "", now)
			So(reg.Score(s, now).Composition, ShouldAlmostEqual, 0.5, 1e-9)
		})
	})
}

func TestVisualComplexityAndConsistency(t *testing.T) {
	Convey("Given texture and stroke statistics", t, func() {
		reg := aesthetic.New()
		now := time.Now()

		Convey("Mid-level complexity with strong contrast scores a perfect 1", func() {
			s := model.NewSession("sess", "", now)
			s.AddImage(imageWith(nil, model.TextureSummary{Complexity: 0.5, Contrast: 1, Energy: 0.5}))

			So(reg.Score(s, now).VisualComplexity, ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Identical strokes with one tool and one color are maximally consistent", func() {
			s := model.NewSession("sess", "", now)
			for i := 0; i < 5; i++ {
				s.AddStroke(strokeAt(960, 540, "pen", "#111111"))
			}

			So(reg.Score(s, now).StyleConsistency, ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Tool churn and a wide palette pull consistency down", func() {
			steady := model.NewSession("steady", "", now)
			churn := model.NewSession("churn", "", now)
			tools := []string{"pen", "brush", "marker", "airbrush", "pencil"}
			colors := []string{"#111111", "#22aa44", "#ff00ff", "#0055ff", "#ffcc00"}
			for i := 0; i < 5; i++ {
				steady.AddStroke(strokeAt(960, 540, "pen", "#111111"))
				churn.AddStroke(strokeAt(960, 540, tools[i], colors[i]))
			}

			So(reg.Score(churn, now).StyleConsistency, ShouldBeLessThan, reg.Score(steady, now).StyleConsistency)
		})
	})
}

func TestModeThresholds(t *testing.T) {
	Convey("Given a session scoring 0.75", t, func() {
		now := time.Now()
		s := model.NewSession("sess", "", now)
		s.AddStroke(strokeAt(480, 270, "pen", "#111111"))
		s.AddStroke(strokeAt(1440, 270, "pen", "#111111"))
		s.AddStroke(strokeAt(480, 810, "pen", "#111111"))
		s.AddStroke(strokeAt(1440, 810, "pen", "#111111"))

		// Composition 1.0 and consistency 1.0; harmony and complexity sit
		// at the neutral 0.5 with no image tier yet. Overall 0.75.
		base := aesthetic.New().Score(s, now)
		So(base.Overall, ShouldAlmostEqual, 0.75, 1e-9)

		Convey("Creative and balanced pass, strict does not", func() {
			So(aesthetic.New(aesthetic.WithMode(aesthetic.ModeCreative)).Score(s, now).PassesThreshold, ShouldBeTrue)
			So(aesthetic.New(aesthetic.WithMode(aesthetic.ModeBalanced)).Score(s, now).PassesThreshold, ShouldBeTrue)
			So(aesthetic.New(aesthetic.WithMode(aesthetic.ModeStrict)).Score(s, now).PassesThreshold, ShouldBeFalse)
		})

		Convey("A custom threshold overrides the mode default", func() {
			reg := aesthetic.New(aesthetic.WithThreshold(aesthetic.ModeBalanced, 0.8))
			So(reg.Score(s, now).PassesThreshold, ShouldBeFalse)
		})

		Convey("A nil session reports only the mode and threshold", func() {
			sc := aesthetic.New().Score(nil, now)
			So(sc.Overall, ShouldEqual, 0)
			So(sc.Mode, ShouldEqual, aesthetic.ModeBalanced)
			So(sc.PassesThreshold, ShouldBeFalse)
		})
	})
}
