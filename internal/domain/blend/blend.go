// Package blend interpolates and combines DNA fingerprints. Numeric
// features are linearly interpolated at an eased parameter; categorical
// fields switch at the halfway point, except hex colors, which are
// interpolated per RGB channel.
package blend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

// Easing shapes the interpolation parameter before blending.
type Easing string

const (
	Linear    Easing = "linear"
	EaseIn    Easing = "ease-in"
	EaseOut   Easing = "ease-out"
	EaseInOut Easing = "ease-in-out"
)

// categoricalThreshold is the alpha below which categorical fields keep the
// first source's value.
const categoricalThreshold = 0.5

// Blender combines fingerprints with a configured easing curve. It is
// stateless and safe for concurrent use.
type Blender struct {
	easing Easing
}

// Option applies a configuration option to the Blender.
type Option func(*Blender)

// WithEasing sets the easing curve applied to alpha.
func WithEasing(e Easing) Option {
	return func(b *Blender) { b.easing = e }
}

// New creates a Blender with linear easing.
func New(opts ...Option) *Blender {
	b := &Blender{easing: Linear}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ease applies the configured curve to t in [0,1].
func (b *Blender) ease(t float64) float64 {
	t = clamp01(t)
	switch b.easing {
	case EaseIn:
		return t * t
	case EaseOut:
		return t * (2 - t)
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	default:
		return t
	}
}

// Stroke interpolates two stroke fingerprints at alpha in [0,1]. Alpha 0
// reproduces a's features, 1 reproduces b's.
func (bl *Blender) Stroke(a, b *model.StrokeDNA, alpha float64) (*model.StrokeDNA, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil stroke record", ErrEmptyInput)
	}
	if len(a.Vector) != len(b.Vector) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a.Vector), len(b.Vector))
	}
	t := bl.ease(alpha)

	pick := a
	if t >= categoricalThreshold {
		pick = b
	}

	out := &model.StrokeDNA{
		ID:        uuid.New().String(),
		StrokeID:  pick.StrokeID,
		SessionID: pick.SessionID,
		Vector:    lerpVec(a.Vector, b.Vector, t),
		Tool:      pick.Tool,
		Color:     lerpHexColor(a.Color, b.Color, t, pick.Color),
		Timestamp: time.Now(),
	}
	if a.Bounds != nil && b.Bounds != nil {
		out.Bounds = &model.NormalizedBounds{
			X:      lerp(a.Bounds.X, b.Bounds.X, t),
			Y:      lerp(a.Bounds.Y, b.Bounds.Y, t),
			Width:  lerp(a.Bounds.Width, b.Bounds.Width, t),
			Height: lerp(a.Bounds.Height, b.Bounds.Height, t),
			Scale:  lerp(a.Bounds.Scale, b.Bounds.Scale, t),
		}
	}
	return out, nil
}

// Image interpolates two image fingerprints at alpha.
func (bl *Blender) Image(a, b *model.ImageDNA, alpha float64) (*model.ImageDNA, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil image record", ErrEmptyInput)
	}
	if len(a.Vector) != len(b.Vector) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a.Vector), len(b.Vector))
	}
	t := bl.ease(alpha)

	pick := a
	if t >= categoricalThreshold {
		pick = b
	}

	n := len(a.DominantColors)
	if len(b.DominantColors) < n {
		n = len(b.DominantColors)
	}
	colors := make([]model.DominantColor, n)
	for i := 0; i < n; i++ {
		colors[i] = model.DominantColor{
			R:      lerp(a.DominantColors[i].R, b.DominantColors[i].R, t),
			G:      lerp(a.DominantColors[i].G, b.DominantColors[i].G, t),
			B:      lerp(a.DominantColors[i].B, b.DominantColors[i].B, t),
			Weight: lerp(a.DominantColors[i].Weight, b.DominantColors[i].Weight, t),
		}
	}

	return &model.ImageDNA{
		ID:             uuid.New().String(),
		SessionID:      pick.SessionID,
		SnapshotID:     pick.SnapshotID,
		Vector:         lerpVec(a.Vector, b.Vector, t),
		DominantColors: colors,
		Texture: model.TextureSummary{
			Complexity: lerp(a.Texture.Complexity, b.Texture.Complexity, t),
			Contrast:   lerp(a.Texture.Contrast, b.Texture.Contrast, t),
			Energy:     lerp(a.Texture.Energy, b.Texture.Energy, t),
		},
		CanvasWidth:  pick.CanvasWidth,
		CanvasHeight: pick.CanvasHeight,
		Timestamp:    time.Now(),
	}, nil
}

// Temporal interpolates two temporal fingerprints at alpha. The learning
// phase is categorical and switches at the halfway point.
func (bl *Blender) Temporal(a, b *model.TemporalDNA, alpha float64) (*model.TemporalDNA, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil temporal record", ErrEmptyInput)
	}
	if len(a.Vector) != len(b.Vector) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a.Vector), len(b.Vector))
	}
	t := bl.ease(alpha)

	pick := a
	if t >= categoricalThreshold {
		pick = b
	}

	return &model.TemporalDNA{
		ID:               uuid.New().String(),
		SessionID:        pick.SessionID,
		ArtistID:         pick.ArtistID,
		Vector:           lerpVec(a.Vector, b.Vector, t),
		Phase:            pick.Phase,
		SkillProgression: lerp(a.SkillProgression, b.SkillProgression, t),
		FatigueLevel:     lerp(a.FatigueLevel, b.FatigueLevel, t),
		FocusScore:       lerp(a.FocusScore, b.FocusScore, t),
		FlowState:        pick.FlowState,
		SessionCount:     pick.SessionCount,
		StrokeCount:      pick.StrokeCount,
		Timestamp:        time.Now(),
	}, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b vector.Vector, t float64) vector.Vector {
	out := make(vector.Vector, len(a))
	for i := range a {
		out[i] = float32(lerp(float64(a[i]), float64(b[i]), t))
	}
	return out
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
