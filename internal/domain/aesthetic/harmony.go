package aesthetic

import (
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Hue-relationship bands in degrees and their scores. Bands are checked from
// most specific to least.
const (
	complementaryHue  = 180.0
	triadicHue        = 120.0
	analogousMaxHue   = 30.0
	hueBandTolerance  = 15.0
	complementaryGood = 0.9
	triadicGood       = 0.85
	analogousGood     = 0.8
	proxyScale        = 0.7
	achromaticSat     = 0.05
)

// colorHarmony scores pairwise hue relationships among the dominant colors.
// Recognized relationships (complementary, triadic, analogous) score their
// band value; anything else falls back to a saturation/value-similarity
// proxy scaled down.
func colorHarmony(colors []model.DominantColor) float64 {
	if len(colors) < 2 {
		return neutralScore
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(colors); i++ {
		hi, si, vi := rgbToHSV(colors[i].R, colors[i].G, colors[i].B)
		for j := i + 1; j < len(colors); j++ {
			hj, sj, vj := rgbToHSV(colors[j].R, colors[j].G, colors[j].B)
			sum += pairHarmony(hi, si, vi, hj, sj, vj)
			pairs++
		}
	}
	return sum / float64(pairs)
}

func pairHarmony(h1, s1, v1, h2, s2, v2 float64) float64 {
	// Grays have no meaningful hue; hue-band classification only applies
	// when both colors carry saturation.
	if s1 < achromaticSat || s2 < achromaticSat {
		similarity := 1 - (math.Abs(s1-s2)+math.Abs(v1-v2))/2
		return proxyScale * clamp01(similarity)
	}
	diff := hueDistance(h1, h2)
	switch {
	case math.Abs(diff-complementaryHue) <= hueBandTolerance:
		return complementaryGood
	case math.Abs(diff-triadicHue) <= hueBandTolerance:
		return triadicGood
	case diff <= analogousMaxHue:
		return analogousGood
	}
	similarity := 1 - (math.Abs(s1-s2)+math.Abs(v1-v2))/2
	return proxyScale * clamp01(similarity)
}

// hueDistance is the shortest angular distance between two hues, in [0,180].
func hueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// rgbToHSV converts [0,255] channels to hue in degrees [0,360) and
// saturation/value in [0,1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255
	g /= 255
	b /= 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
