package aesthetic

import (
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
)

// Blend weights of the consistency score.
const (
	featureCVWeight = 0.6
	toolWeight      = 0.2
	paletteWeight   = 0.2
)

// A palette this wide or wider scores zero for palette consistency.
const paletteSpan = 8.0

// styleConsistency inverts the coefficient of variation across five key
// stroke features, blended with how consistently the artist sticks to tools
// and a compact palette.
func styleConsistency(strokes []*model.StrokeDNA) float64 {
	keys := make([][5]float64, 0, len(strokes))
	tools := make(map[string]int)
	palette := make(map[string]struct{})
	for _, s := range strokes {
		if s == nil {
			continue
		}
		f, err := vector.UnpackStroke(s.Vector)
		if err != nil {
			continue
		}
		keys = append(keys, [5]float64{
			float64(f.VelMean),
			float64(f.PressureMean),
			float64(f.CurvMean),
			float64(f.Density),
			float64(f.Elongation),
		})
		if s.Tool != "" {
			tools[s.Tool]++
		}
		if s.Color != "" {
			palette[s.Color] = struct{}{}
		}
	}
	if len(keys) < 2 {
		return neutralScore
	}

	var cvSum float64
	for feat := 0; feat < 5; feat++ {
		var mean float64
		for _, k := range keys {
			mean += k[feat]
		}
		mean /= float64(len(keys))

		var variance float64
		for _, k := range keys {
			d := k[feat] - mean
			variance += d * d
		}
		variance /= float64(len(keys))

		if math.Abs(mean) > 1e-9 {
			cvSum += math.Sqrt(variance) / math.Abs(mean)
		}
	}
	featureScore := clamp01(1 - cvSum/5)

	toolScore := 1.0
	if total := len(keys); len(tools) > 0 {
		dominant := 0
		for _, c := range tools {
			if c > dominant {
				dominant = c
			}
		}
		toolScore = float64(dominant) / float64(total)
	}

	paletteScore := 1.0
	if len(palette) > 1 {
		paletteScore = clamp01(1 - float64(len(palette)-1)/paletteSpan)
	}

	return featureCVWeight*featureScore + toolWeight*toolScore + paletteWeight*paletteScore
}
