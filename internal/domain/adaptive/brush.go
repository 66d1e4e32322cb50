package adaptive

// Brush adjuster bounds. Adjustments engage only past the fatigue or focus
// gates; inside the gates the artist's settings pass through untouched.
const (
	fatigueGate = 0.3
	focusGate   = 0.7

	maxSizeBoost      = 0.3
	minOpacity        = 0.7
	maxSmoothingBoost = 0.5
)

// BrushAdjustment is a multiplicative tweak over the artist's current brush
// settings.
type BrushAdjustment struct {
	SizeScale      float64 `json:"size_scale"`      // [1.0, 1.3]
	OpacityScale   float64 `json:"opacity_scale"`   // [0.7, 1.0]
	SmoothingScale float64 `json:"smoothing_scale"` // [1.0, 1.5]
	Active         bool    `json:"active"`
}

// AdjustBrush compensates for fatigue and drifting focus: bigger, smoother
// strokes when tired, lower opacity when unfocused.
func (m *Manager) AdjustBrush(fatigue, focus float64) BrushAdjustment {
	adj := BrushAdjustment{SizeScale: 1, OpacityScale: 1, SmoothingScale: 1}
	if fatigue < fatigueGate && focus > focusGate {
		return adj
	}

	adj.Active = true
	f := clamp01(fatigue)
	adj.SizeScale = 1 + maxSizeBoost*f
	adj.SmoothingScale = 1 + maxSmoothingBoost*f
	if focus <= focusGate {
		adj.OpacityScale = minOpacity + (1-minOpacity)*clamp01(focus/focusGate)
	}
	return adj
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
