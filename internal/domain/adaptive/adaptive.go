// Package adaptive turns temporal signals into advisories and brush
// parameter adjustments. The manager is a pure function of the latest
// temporal fingerprint plus artist context; it never mutates session state,
// and acting on its output is the caller's decision.
package adaptive

import (
	"sort"
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Kind classifies an advisory.
type Kind string

const (
	KindWarning      Kind = "warning"
	KindSuggestion   Kind = "suggestion"
	KindAdjustment   Kind = "adjustment"
	KindIntervention Kind = "intervention"
)

// Priority orders advisories; lower values are more urgent.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// Fatigue bucket boundaries.
const (
	fatigueFocused   = 0.25
	fatigueTired     = 0.5
	fatigueExhausted = 0.75
)

// longSession is the continuous work span that always earns a break
// suggestion.
const longSession = 2 * time.Hour

// FatigueBucket names a fatigue range.
type FatigueBucket string

const (
	BucketFresh     FatigueBucket = "fresh"
	BucketFocused   FatigueBucket = "focused"
	BucketTired     FatigueBucket = "tired"
	BucketExhausted FatigueBucket = "exhausted"
)

// Advisory is one recommendation for the embedding application to act on.
type Advisory struct {
	Kind     Kind     `json:"kind"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Manager derives advisories and brush adjustments.
type Manager struct{}

// New creates a Manager.
func New() *Manager {
	return &Manager{}
}

// BucketFor classifies a fatigue level.
func BucketFor(fatigue float64) FatigueBucket {
	switch {
	case fatigue < fatigueFocused:
		return BucketFresh
	case fatigue < fatigueTired:
		return BucketFocused
	case fatigue < fatigueExhausted:
		return BucketTired
	default:
		return BucketExhausted
	}
}

// Advise produces the advisory list for the session's current state,
// ordered by ascending priority value. A nil temporal fingerprint yields
// only duration-based advice.
func (m *Manager) Advise(temporal *model.TemporalDNA, artist *model.ArtistContext, now time.Time) []Advisory {
	var out []Advisory

	if temporal != nil {
		switch BucketFor(temporal.FatigueLevel) {
		case BucketExhausted:
			out = append(out, Advisory{
				Kind:     KindIntervention,
				Priority: PriorityCritical,
				Message:  "fatigue is critical; stop and rest before continuing",
			})
		case BucketTired:
			out = append(out, Advisory{
				Kind:     KindWarning,
				Priority: PriorityHigh,
				Message:  "fatigue is building; consider a short break soon",
			})
		}

		if temporal.FocusScore > 0 && temporal.FocusScore < 0.5 {
			out = append(out, Advisory{
				Kind:     KindSuggestion,
				Priority: PriorityMedium,
				Message:  "focus is drifting; simpler strokes may help regain rhythm",
			})
		}

		if temporal.FlowState {
			out = append(out, Advisory{
				Kind:     KindAdjustment,
				Priority: PriorityLow,
				Message:  "flow state detected; deferring non-essential interruptions",
			})
		}
	}

	if artist != nil && artist.ContinuousDuration(now) >= longSession {
		out = append(out, Advisory{
			Kind:     KindSuggestion,
			Priority: PriorityMedium,
			Message:  "over two hours of continuous work; a break is recommended",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
