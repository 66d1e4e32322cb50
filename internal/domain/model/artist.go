package model

import (
	"math"
	"time"
)

// Break detection and fatigue constants.
const (
	breakGap = 5 * time.Minute // inter-stroke gap counted as a break
	// Fatigue ramps to 1.0 over this much continuous work.
	fatigueRampHours = 3.0
	// Focus EWMA smoothing for inter-stroke rhythm regularity.
	focusAlpha = 0.1
)

// ArtistContext is the mutable running state of the artist across a session.
// It is read by encoders and the adaptive rule engine but owned and mutated
// by exactly one caller (the pipeline), after every completed stroke.
type ArtistContext struct {
	ArtistID string `json:"artist_id,omitempty"`

	SessionStart time.Time `json:"session_start"`
	LastStrokeAt time.Time `json:"last_stroke_at"`
	LastBreakAt  time.Time `json:"last_break_at"`

	LifetimeStrokes  int `json:"lifetime_strokes"`
	LifetimeSessions int `json:"lifetime_sessions"`
	SessionStrokes   int `json:"session_strokes"`

	CurrentTool  string  `json:"current_tool"`
	CurrentColor string  `json:"current_color"`
	BrushSize    float64 `json:"brush_size"`

	SkillLevel   float64 `json:"skill_level"`   // [0,1]
	FatigueLevel float64 `json:"fatigue_level"` // [0,1]
	FocusScore   float64 `json:"focus_score"`   // [0,1]

	// meanGapMS tracks the running inter-stroke rhythm for focus scoring.
	meanGapMS float64
}

// NewArtistContext starts a fresh context for a session beginning at start.
func NewArtistContext(artistID string, start time.Time) *ArtistContext {
	return &ArtistContext{
		ArtistID:         artistID,
		SessionStart:     start,
		LastBreakAt:      start,
		LifetimeSessions: 1,
		FocusScore:       1,
	}
}

// RecordStroke folds a completed stroke into the running state.
func (a *ArtistContext) RecordStroke(in *StrokeInput, now time.Time) {
	if !a.LastStrokeAt.IsZero() {
		gap := now.Sub(a.LastStrokeAt)
		if gap >= breakGap {
			a.LastBreakAt = now
		}
		a.updateFocus(float64(gap.Milliseconds()))
	}

	a.LastStrokeAt = now
	a.LifetimeStrokes++
	a.SessionStrokes++
	a.CurrentTool = in.Tool
	a.CurrentColor = in.Color
	if in.BrushSize > 0 {
		a.BrushSize = in.BrushSize
	}

	continuous := now.Sub(a.LastBreakAt).Hours()
	a.FatigueLevel = clamp01(continuous / fatigueRampHours)

	// Skill is a slow log-scaled function of lifetime volume.
	a.SkillLevel = clamp01(math.Log10(float64(a.LifetimeStrokes)+1) / 5)
}

// updateFocus tracks how regular the inter-stroke rhythm is. Wildly varying
// gaps read as distraction; steady gaps read as focus.
func (a *ArtistContext) updateFocus(gapMS float64) {
	if a.meanGapMS == 0 {
		a.meanGapMS = gapMS
		return
	}
	dev := math.Abs(gapMS-a.meanGapMS) / a.meanGapMS
	instant := clamp01(1 - dev/4)
	a.FocusScore = clamp01((1-focusAlpha)*a.FocusScore + focusAlpha*instant)
	a.meanGapMS = (1-focusAlpha)*a.meanGapMS + focusAlpha*gapMS
}

// SessionDuration reports how long the session has been running.
func (a *ArtistContext) SessionDuration(now time.Time) time.Duration {
	return now.Sub(a.SessionStart)
}

// ContinuousDuration reports time since the last detected break.
func (a *ArtistContext) ContinuousDuration(now time.Time) time.Duration {
	return now.Sub(a.LastBreakAt)
}

// Clone returns an independent copy for embedding into session snapshots.
func (a *ArtistContext) Clone() *ArtistContext {
	c := *a
	return &c
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
