package blend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

// MultipleStroke computes a weight-normalized weighted average of N stroke
// fingerprints. Categorical fields (tool, session attribution) come from the
// highest-weight source; the color is channel-averaged when all sources
// carry parseable hex colors.
func (bl *Blender) MultipleStroke(sources []*model.StrokeDNA, weights []float64) (*model.StrokeDNA, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources", ErrEmptyInput)
	}
	if len(weights) != len(sources) {
		return nil, fmt.Errorf("%w: %d weights for %d sources", ErrBadWeights, len(weights), len(sources))
	}

	dim := len(sources[0].Vector)
	var total float64
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight at %d", ErrBadWeights, i)
		}
		total += w
		if len(sources[i].Vector) != dim {
			return nil, fmt.Errorf("%w: source %d has %d dims, want %d", ErrDimensionMismatch, i, len(sources[i].Vector), dim)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrBadWeights)
	}

	acc := make([]float64, dim)
	heaviest := 0
	var rSum, gSum, bSum float64
	allHex := true
	for i, src := range sources {
		w := weights[i] / total
		for j, f := range src.Vector {
			acc[j] += w * float64(f)
		}
		if weights[i] > weights[heaviest] {
			heaviest = i
		}
		if r, g, b, ok := parseHex(src.Color); ok {
			rSum += w * float64(r)
			gSum += w * float64(g)
			bSum += w * float64(b)
		} else {
			allHex = false
		}
	}

	pick := sources[heaviest]
	color := pick.Color
	if allHex {
		color = fmt.Sprintf("#%02x%02x%02x", int(rSum+0.5), int(gSum+0.5), int(bSum+0.5))
	}

	return &model.StrokeDNA{
		ID:        uuid.New().String(),
		StrokeID:  pick.StrokeID,
		SessionID: pick.SessionID,
		Vector:    vector.FromFloat64s(acc),
		Tool:      pick.Tool,
		Color:     color,
		Timestamp: time.Now(),
	}, nil
}
