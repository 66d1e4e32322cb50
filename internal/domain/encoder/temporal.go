package encoder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

// Learning phase derivation constants.
const (
	// Phase stroke-count gates.
	explorationStrokes = 200
	masteryStrokes     = 2000
	// Skill progression blends a log-scaled volume term with tool diversity.
	skillVolumeWeight    = 0.7
	skillDiversityWeight = 0.3
	// Flow requires sustained focus without exhaustion.
	flowFocusMin   = 0.7
	flowFatigueMax = 0.5
)

// Temporal is the cold-path behavioral encoder. Like the image encoder it
// must be invoked only through the worker pool.
type Temporal struct{}

// NewTemporal creates a temporal encoder.
func NewTemporal() *Temporal {
	return &Temporal{}
}

// sessionStats are aggregates over the session's stroke fingerprints.
type sessionStats struct {
	avgVelocity    float64
	avgPressure    float64
	avgLength      float64
	avgCurvature   float64
	avgCompactness float64
	avgAspect      float64
	avgDensity     float64
	pauseRate      float64
	toolEntropy    float64
	colorEntropy   float64
	toolCount      int
	colorCount     int
	featureCV      float64 // mean coefficient of variation across key features
}

// Encode computes a 32-dim behavioral fingerprint from the session's stroke
// history and the live artist context.
func (e *Temporal) Encode(ctx context.Context, session *model.Session, artist *model.ArtistContext) (*model.TemporalDNA, error) {
	mustBeCold(ctx, "temporal")
	start := time.Now()

	if session == nil || artist == nil {
		return nil, fmt.Errorf("%w: nil session or artist context", ErrInvalidInput)
	}
	if len(session.Strokes) == 0 {
		return nil, fmt.Errorf("%w: session has no strokes", ErrInvalidInput)
	}

	stats := aggregate(session)

	explore := exploreScore(stats)
	refine := refineScore(stats)
	phase := derivePhase(artist.LifetimeStrokes, explore, refine)
	skill := skillProgression(artist.LifetimeStrokes, stats.toolCount)
	flow := artist.FocusScore >= flowFocusMin && artist.FatigueLevel <= flowFatigueMax

	sessionHours := artist.SessionDuration(start).Hours()
	strokesPerMin := 0.0
	if mins := artist.SessionDuration(start).Minutes(); mins > 0 {
		strokesPerMin = float64(session.TotalStrokes) / mins
	}
	breakRecency := clamp01(artist.ContinuousDuration(start).Hours() / 2)

	var f vector.TemporalFeatures
	f.Learning = [vector.TemporalBand]float32{
		float32(skill),
		float32(explore),
		float32(refine),
		float32(clamp01(float64(stats.toolCount) / 8)),
		float32(clamp01(float64(stats.colorCount) / 16)),
		float32(clamp01(math.Log10(float64(artist.LifetimeStrokes)+1) / 5)),
		float32(clamp01(stats.avgCurvature)),
		phaseSlot(phase, model.PhaseExploration),
		phaseSlot(phase, model.PhaseRefinement),
		phaseSlot(phase, model.PhaseMastery),
	}
	f.Fatigue = [vector.TemporalBand]float32{
		float32(artist.FatigueLevel),
		float32(artist.FocusScore),
		float32(clamp01(sessionHours / 4)),
		float32(clamp01(strokesPerMin / 60)),
		float32(clamp01(stats.avgPressure)),
		float32(clamp01(stats.avgVelocity)),
		float32(breakRecency),
		float32(clamp01(stats.pauseRate)),
		float32(clamp01(1 - stats.featureCV)),
		boolSlot(flow),
	}
	f.Style = [vector.TemporalBand]float32{
		float32(clamp01(stats.avgVelocity)),
		float32(clamp01(stats.avgPressure)),
		float32(clamp01(stats.avgLength / 1000)),
		float32(clamp01(stats.avgCurvature)),
		float32(clamp01(stats.avgCompactness)),
		float32(clamp01(stats.toolEntropy / 3)),
		float32(clamp01(stats.colorEntropy / 4)),
		float32(clamp01(artist.BrushSize / 64)),
		float32(clamp01(stats.avgAspect / 4)),
		float32(clamp01(stats.avgDensity)),
	}

	vec := f.Pack()
	if err := vec.Validate(vector.TemporalDims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &model.TemporalDNA{
		ID:               uuid.New().String(),
		SessionID:        session.ID,
		ArtistID:         artist.ArtistID,
		Vector:           vec,
		Phase:            phase,
		SkillProgression: skill,
		FatigueLevel:     artist.FatigueLevel,
		FocusScore:       artist.FocusScore,
		FlowState:        flow,
		SessionCount:     artist.LifetimeSessions,
		StrokeCount:      artist.LifetimeStrokes,
		Timestamp:        start,
		EncodingTime:     time.Since(start),
	}, nil
}

// aggregate folds the session's stroke fingerprints into summary statistics.
func aggregate(session *model.Session) sessionStats {
	var s sessionStats
	tools := make(map[string]int)
	colors := make(map[string]int)

	n := float64(len(session.Strokes))
	var velocities, pressures, lengths []float64
	var pauses, segments float64
	for _, d := range session.Strokes {
		f, err := vector.UnpackStroke(d.Vector)
		if err != nil {
			continue
		}
		velocities = append(velocities, float64(f.VelMean))
		pressures = append(pressures, float64(f.PressureMean))
		lengths = append(lengths, float64(f.Perimeter))
		s.avgCurvature += float64(f.CurvMean)
		s.avgCompactness += float64(f.Compactness)
		s.avgAspect += float64(f.Aspect)
		s.avgDensity += float64(f.Density)
		pauses += float64(f.Pauses)
		segments++
		tools[d.Tool]++
		colors[d.Color]++
	}

	s.avgVelocity = mean(velocities)
	s.avgPressure = mean(pressures)
	s.avgLength = mean(lengths)
	s.avgCurvature /= n
	s.avgCompactness /= n
	s.avgAspect /= n
	s.avgDensity /= n
	if segments > 0 {
		s.pauseRate = pauses / segments
	}
	s.toolCount = len(tools)
	s.colorCount = len(colors)
	s.toolEntropy = entropy(tools, len(session.Strokes))
	s.colorEntropy = entropy(colors, len(session.Strokes))

	s.featureCV = (cv(velocities) + cv(pressures) + cv(lengths)) / 3
	return s
}

// exploreScore reads diversity as exploration.
func exploreScore(s sessionStats) float64 {
	return clamp01((s.toolEntropy/3 + s.colorEntropy/4 + clamp01(s.featureCV)) / 3)
}

// refineScore reads consistency as refinement.
func refineScore(s sessionStats) float64 {
	return clamp01(1 - s.featureCV)
}

// derivePhase gates by lifetime volume, with the exploration-vs-refinement
// balance breaking ties inside the middle band.
func derivePhase(lifetimeStrokes int, explore, refine float64) model.LearningPhase {
	switch {
	case lifetimeStrokes < explorationStrokes:
		return model.PhaseExploration
	case lifetimeStrokes >= masteryStrokes && refine > explore:
		return model.PhaseMastery
	case refine >= explore:
		return model.PhaseRefinement
	default:
		return model.PhaseExploration
	}
}

// skillProgression blends a log-scaled stroke-count term with tool diversity.
func skillProgression(lifetimeStrokes, toolCount int) float64 {
	volume := clamp01(math.Log10(float64(lifetimeStrokes)+1) / 4)
	diversity := clamp01(float64(toolCount) / 8)
	return clamp01(skillVolumeWeight*volume + skillDiversityWeight*diversity)
}

func phaseSlot(got, want model.LearningPhase) float32 {
	if got == want {
		return 1
	}
	return 0
}

func boolSlot(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// cv is the coefficient of variation, clamped to [0,1].
func cv(xs []float64) float64 {
	m := mean(xs)
	if m == 0 || len(xs) < 2 {
		return 0
	}
	var v float64
	for _, x := range xs {
		v += (x - m) * (x - m)
	}
	v /= float64(len(xs))
	return clamp01(math.Sqrt(v) / math.Abs(m))
}

// entropy computes Shannon entropy in bits over usage counts.
func entropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// clamp01 bounds x to [0,1].
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
