// Package aesthetic derives a composite "pretty score" from a session's
// current tiers. The regulator only reports whether the score clears the
// active mode's threshold; acting on that verdict is the caller's business.
package aesthetic

import (
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Mode selects how demanding the regulator is.
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeBalanced Mode = "balanced"
	ModeCreative Mode = "creative"
)

// Component weights of the pretty score.
const (
	harmonyWeight     = 0.3
	compositionWeight = 0.3
	complexityWeight  = 0.2
	consistencyWeight = 0.2
)

// neutralScore stands in for any component whose tier is not present yet.
const neutralScore = 0.5

// Score is a recomputable aesthetic snapshot of a session.
type Score struct {
	Overall          float64   `json:"overall"`
	ColorHarmony     float64   `json:"color_harmony"`
	Composition      float64   `json:"composition"`
	VisualComplexity float64   `json:"visual_complexity"`
	StyleConsistency float64   `json:"style_consistency"`
	Mode             Mode      `json:"mode"`
	Threshold        float64   `json:"threshold"`
	PassesThreshold  bool      `json:"passes_threshold"`
	ComputedAt       time.Time `json:"computed_at"`
}

// Regulator computes pretty scores under a configured mode.
type Regulator struct {
	mode       Mode
	thresholds map[Mode]float64
	refWidth   float64
	refHeight  float64
}

// Option applies a configuration option to the Regulator.
type Option func(*Regulator)

// WithMode sets the operating mode.
func WithMode(m Mode) Option {
	return func(r *Regulator) {
		switch m {
		case ModeStrict, ModeBalanced, ModeCreative:
			r.mode = m
		}
	}
}

// WithThreshold overrides the minimum score for one mode.
func WithThreshold(m Mode, min float64) Option {
	return func(r *Regulator) {
		if min > 0 && min <= 1 {
			r.thresholds[m] = min
		}
	}
}

// WithReferenceCanvas sets the canvas the composition terms are judged
// against. It should match the bounds normalizer's reference resolution.
func WithReferenceCanvas(w, h float64) Option {
	return func(r *Regulator) {
		if w > 0 && h > 0 {
			r.refWidth = w
			r.refHeight = h
		}
	}
}

// New creates a Regulator in balanced mode with the default thresholds
// (strict 0.8, balanced 0.7, creative 0.5).
func New(opts ...Option) *Regulator {
	r := &Regulator{
		mode: ModeBalanced,
		thresholds: map[Mode]float64{
			ModeStrict:   0.8,
			ModeBalanced: 0.7,
			ModeCreative: 0.5,
		},
		refWidth:  1920,
		refHeight: 1080,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode reports the active operating mode.
func (r *Regulator) Mode() Mode { return r.mode }

// Score computes the session's pretty score. Components whose tier has not
// arrived yet score neutral rather than dragging the total to zero.
func (r *Regulator) Score(session *model.Session, now time.Time) Score {
	sc := Score{
		Mode:       r.mode,
		Threshold:  r.thresholds[r.mode],
		ComputedAt: now,
	}
	if session == nil {
		return sc
	}

	img := session.LatestImage()

	sc.ColorHarmony = neutralScore
	sc.VisualComplexity = neutralScore
	if img != nil {
		sc.ColorHarmony = colorHarmony(img.DominantColors)
		sc.VisualComplexity = visualComplexity(img.Texture)
	}
	sc.Composition = r.compositionBalance(session.Strokes)
	sc.StyleConsistency = styleConsistency(session.Strokes)

	sc.Overall = harmonyWeight*sc.ColorHarmony +
		compositionWeight*sc.Composition +
		complexityWeight*sc.VisualComplexity +
		consistencyWeight*sc.StyleConsistency
	sc.PassesThreshold = sc.Overall >= sc.Threshold
	return sc
}

// visualComplexity rewards mid-level edge density and moderated energy, with
// contrast contributing directly.
func visualComplexity(t model.TextureSummary) float64 {
	idealDeviation := 1 - 2*abs(t.Complexity-0.5)
	energyModeration := 1 - 2*abs(t.Energy-0.5)
	return clamp01(0.5*idealDeviation + 0.25*clamp01(t.Contrast) + 0.25*energyModeration)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
