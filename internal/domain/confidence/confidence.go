// Package confidence scores how representative a session's fingerprint is.
// Scores are pure functions of the session's current tiers: nothing here
// accumulates state, so a score can always be regenerated and discarded.
package confidence

import (
	"math"
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Component weights of the overall score.
const (
	strokeCountWeight  = 0.5
	sessionAgeWeight   = 0.3
	completenessWeight = 0.2
	tierCount          = 3
)

// Score is a recomputable snapshot of fingerprint confidence.
type Score struct {
	Overall      float64   `json:"overall"`
	StrokeCount  float64   `json:"stroke_count"`
	SessionAge   float64   `json:"session_age"`
	Completeness float64   `json:"completeness"`
	ComputedAt   time.Time `json:"computed_at"`
}

// Scorer computes confidence scores from watermark configuration.
type Scorer struct {
	lowStrokes  int
	highStrokes int
	decayWindow time.Duration
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWatermarks sets the stroke-count ramp. The score is 0 at or below low
// and 1.0 at or above high.
func WithWatermarks(low, high int) Option {
	return func(s *Scorer) {
		if low >= 0 && high > low {
			s.lowStrokes = low
			s.highStrokes = high
		}
	}
}

// WithDecayWindow sets the session-age decay window.
func WithDecayWindow(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.decayWindow = d
		}
	}
}

// New creates a Scorer with the default watermarks (50/200 strokes, 24h).
func New(opts ...Option) *Scorer {
	s := &Scorer{
		lowStrokes:  50,
		highStrokes: 200,
		decayWindow: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the confidence of the session's fingerprint at now.
func (s *Scorer) Score(session *model.Session, now time.Time) Score {
	sc := Score{ComputedAt: now}
	if session == nil {
		return sc
	}

	sc.StrokeCount = s.strokeCountConfidence(session.TotalStrokes)
	sc.SessionAge = s.sessionAgeConfidence(session.Age(now))
	sc.Completeness = completeness(session)
	sc.Overall = strokeCountWeight*sc.StrokeCount +
		sessionAgeWeight*sc.SessionAge +
		completenessWeight*sc.Completeness
	return sc
}

// strokeCountConfidence ramps linearly from 0 at the low watermark to 1.0 at
// the high watermark.
func (s *Scorer) strokeCountConfidence(strokes int) float64 {
	if strokes <= s.lowStrokes {
		return 0
	}
	if strokes >= s.highStrokes {
		return 1
	}
	return float64(strokes-s.lowStrokes) / float64(s.highStrokes-s.lowStrokes)
}

// sessionAgeConfidence decays exponentially with age relative to the decay
// window, clamped to [0,1].
func (s *Scorer) sessionAgeConfidence(age time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	v := math.Exp(-age.Hours() / s.decayWindow.Hours())
	return math.Max(0, math.Min(1, v))
}

// completeness is the fraction of the three tiers present.
func completeness(session *model.Session) float64 {
	present := 0
	if len(session.Strokes) > 0 {
		present++
	}
	if len(session.Images) > 0 {
		present++
	}
	if len(session.Temporals) > 0 {
		present++
	}
	return float64(present) / tierCount
}
