package distance

import (
	"fmt"
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

// missingTierDistance scores a tier absent from either session.
const missingTierDistance = 1.0

// MultiTier computes the weighted distance between two sessions' composite
// fingerprints. A tier missing on either side is scored at the maximal
// distance rather than excluded. The aesthetic weight participates only when
// both sessions carry an aesthetic score; the result is renormalized by the
// sum of participating weights so the combined distance stays in the
// metric's range regardless of which terms apply.
func (c *Calculator) MultiTier(a, b *model.Session) (float64, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("%w: nil session", ErrEmptyInput)
	}
	if len(a.Strokes) == 0 || len(b.Strokes) == 0 {
		return 0, fmt.Errorf("%w: session has no strokes", ErrEmptyInput)
	}

	strokeDist, err := c.Between(meanStrokeVector(a), meanStrokeVector(b))
	if err != nil {
		return 0, err
	}

	imageDist := missingTierDistance
	if ia, ib := a.LatestImage(), b.LatestImage(); ia != nil && ib != nil {
		imageDist, err = c.Between(ia.Vector, ib.Vector)
		if err != nil {
			return 0, err
		}
	}

	temporalDist := missingTierDistance
	if ta, tb := a.LatestTemporal(), b.LatestTemporal(); ta != nil && tb != nil {
		temporalDist, err = c.Between(ta.Vector, tb.Vector)
		if err != nil {
			return 0, err
		}
	}

	w := c.weights
	sum := w.Stroke*strokeDist + w.Image*imageDist + w.Temporal*temporalDist
	total := w.Stroke + w.Image + w.Temporal

	if a.AestheticScore != nil && b.AestheticScore != nil && w.Aesthetic > 0 {
		sum += w.Aesthetic * math.Abs(*a.AestheticScore-*b.AestheticScore)
		total += w.Aesthetic
	}

	if total == 0 {
		return 0, nil
	}
	return sum / total, nil
}

// meanStrokeVector averages a session's stroke fingerprints into one
// 30-dim summary vector.
func meanStrokeVector(s *model.Session) vector.Vector {
	out := make([]float64, vector.StrokeDims)
	n := 0
	for _, d := range s.Strokes {
		if len(d.Vector) != vector.StrokeDims {
			continue
		}
		for i, f := range d.Vector {
			out[i] += float64(f)
		}
		n++
	}
	if n > 0 {
		for i := range out {
			out[i] /= float64(n)
		}
	}
	return vector.FromFloat64s(out)
}
