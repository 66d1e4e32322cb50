package distance

import (
	"fmt"
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Alignment selects how two stroke sequences are matched up.
type Alignment string

const (
	// AlignIndex compares the first min(lenA, lenB) strokes index-by-index.
	// This is the default: cheap and good enough when sequences run at
	// similar pace.
	AlignIndex Alignment = "index"
	// AlignDTW warps the time axis to find the optimal pairing, which
	// tolerates sequences drawn at different speeds.
	AlignDTW Alignment = "dtw"
)

// Sequence computes the distance between two stroke sequences using the
// given alignment.
func (c *Calculator) Sequence(a, b []*model.StrokeDNA, align Alignment) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty stroke sequence", ErrEmptyInput)
	}
	switch align {
	case AlignDTW:
		return c.sequenceDTW(a, b)
	case AlignIndex, "":
		return c.sequenceIndex(a, b)
	default:
		return 0, fmt.Errorf("%w: unknown alignment %q", ErrEmptyInput, align)
	}
}

// sequenceIndex averages per-index distances over the shorter sequence's
// length. Strokes beyond min(lenA, lenB) are ignored.
func (c *Calculator) sequenceIndex(a, b []*model.StrokeDNA) (float64, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d, err := c.Between(a[i].Vector, b[i].Vector)
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum / float64(n), nil
}

// sequenceDTW computes a dynamic-time-warping distance over per-stroke
// vector distances using a two-row rolling array, then normalizes by the
// combined sequence length so results are comparable across corpus sizes.
func (c *Calculator) sequenceDTW(a, b []*model.StrokeDNA) (float64, error) {
	n, m := len(a), len(b)

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = math.Inf(1)
	}

	for i := 1; i <= n; i++ {
		curr[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			cost, err := c.Between(a[i-1].Vector, b[j-1].Vector)
			if err != nil {
				return 0, err
			}
			best := prev[j-1] // match
			if prev[j] < best {
				best = prev[j] // insertion
			}
			if curr[j-1] < best {
				best = curr[j-1] // deletion
			}
			curr[j] = cost + best
		}
		prev, curr = curr, prev
	}

	return prev[m] / float64(n+m), nil
}
