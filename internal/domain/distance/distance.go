// Package distance provides metric-space operations over DNA feature
// vectors: pairwise metrics, weighted multi-tier session distance, stroke
// sequence distance, and brute-force nearest-neighbor search.
package distance

import (
	"fmt"
	"math"
	"sort"

	"github.com/strokeforge/dna/internal/domain/vector"
)

// Metric selects the pairwise distance function.
type Metric string

const (
	Euclidean Metric = "euclidean"
	Cosine    Metric = "cosine"
	Manhattan Metric = "manhattan"
)

// Weights configures the multi-tier combination. The aesthetic weight only
// participates when both sessions carry an aesthetic score.
type Weights struct {
	Stroke    float64
	Image     float64
	Temporal  float64
	Aesthetic float64
}

// DefaultWeights mirrors the engine's configuration defaults.
func DefaultWeights() Weights {
	return Weights{Stroke: 0.4, Image: 0.3, Temporal: 0.2, Aesthetic: 0.1}
}

// Calculator performs distance computations with a fixed metric and tier
// weighting. It is stateless and safe for concurrent use.
type Calculator struct {
	metric  Metric
	weights Weights
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithMetric sets the pairwise metric.
func WithMetric(m Metric) Option {
	return func(c *Calculator) { c.metric = m }
}

// WithWeights sets the multi-tier weights.
func WithWeights(w Weights) Option {
	return func(c *Calculator) { c.weights = w }
}

// New creates a Calculator. The default metric is cosine, whose [0,2] range
// keeps tier distances commensurate with the fixed 1.0 missing-tier penalty.
func New(opts ...Option) *Calculator {
	c := &Calculator{metric: Cosine, weights: DefaultWeights()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Between computes the configured metric between two equal-length vectors.
func (c *Calculator) Between(a, b vector.Vector) (float64, error) {
	return Between(a, b, c.metric)
}

// Between computes the given metric between two equal-length vectors.
func Between(a, b vector.Vector, m Metric) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: zero-length vectors", ErrEmptyInput)
	}
	switch m {
	case Euclidean:
		return euclidean(a, b), nil
	case Cosine:
		return cosine(a, b), nil
	case Manhattan:
		return manhattan(a, b), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
}

func euclidean(a, b vector.Vector) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// cosine returns 1 - cosine similarity. A zero-magnitude vector on either
// side yields the maximal distance 1.0.
func cosine(a, b vector.Vector) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func manhattan(a, b vector.Vector) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

// Neighbor is one result of a k-nearest-neighbor query.
type Neighbor struct {
	Index    int
	Distance float64
}

// Nearest returns the index and distance of the corpus vector closest to
// query, by exact brute-force scan.
func (c *Calculator) Nearest(query vector.Vector, corpus []vector.Vector) (Neighbor, error) {
	ns, err := c.KNearest(query, corpus, 1)
	if err != nil {
		return Neighbor{}, err
	}
	return ns[0], nil
}

// KNearest returns the k corpus vectors closest to query, ordered by
// ascending distance. k is clamped to the corpus size.
func (c *Calculator) KNearest(query vector.Vector, corpus []vector.Vector, k int) ([]Neighbor, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrEmptyInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", ErrEmptyInput)
	}

	ns := make([]Neighbor, 0, len(corpus))
	for i, v := range corpus {
		d, err := c.Between(query, v)
		if err != nil {
			return nil, err
		}
		ns = append(ns, Neighbor{Index: i, Distance: d})
	}
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Distance != ns[j].Distance {
			return ns[i].Distance < ns[j].Distance
		}
		return ns[i].Index < ns[j].Index
	})
	if k > len(ns) {
		k = len(ns)
	}
	return ns[:k], nil
}
