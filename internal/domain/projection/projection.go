// Package projection reduces batches of same-tier feature vectors to 3D
// coordinates for visualization. The layout is a simplified force scheme
// over a k-nearest-neighbor graph: neighbors attract toward a target
// separation, nearby non-neighbors repel.
package projection

import (
	"fmt"
	"math"

	"github.com/strokeforge/dna/internal/domain/distance"
	"github.com/strokeforge/dna/internal/domain/vector"
	"github.com/strokeforge/dna/pkg/rng"
)

// Layout defaults.
const (
	defaultNeighbors  = 15
	defaultMinDist    = 0.1
	defaultComponents = 3
	defaultEpochs     = 100

	initSpread      = 10.0
	learningRate    = 0.1
	repulsionRadius = 1.0
	repulsionScale  = 0.05
)

// Point is one embedded vector's low-dimensional coordinates.
type Point struct {
	Index  int       `json:"index"`
	Coords []float64 `json:"coords"`
}

// Projection is the embedding of one batch, regenerated on demand.
type Projection struct {
	Points     []Point `json:"points"`
	Neighbors  int     `json:"neighbors"`
	Components int     `json:"components"`
	Epochs     int     `json:"epochs"`
}

// Projector builds low-dimensional embeddings. A projector holds its own
// random source, so two projectors created with the same seed produce
// identical embeddings for identical input.
type Projector struct {
	calc       *distance.Calculator
	src        *rng.Source
	neighbors  int
	minDist    float64
	components int
	epochs     int
}

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithCalculator sets the distance calculator used for the kNN graph.
func WithCalculator(c *distance.Calculator) Option {
	return func(p *Projector) {
		if c != nil {
			p.calc = c
		}
	}
}

// WithNeighbors sets k for the neighbor graph.
func WithNeighbors(k int) Option {
	return func(p *Projector) {
		if k > 0 {
			p.neighbors = k
		}
	}
}

// WithMinDist sets the target separation between embedded neighbors.
func WithMinDist(d float64) Option {
	return func(p *Projector) {
		if d > 0 {
			p.minDist = d
		}
	}
}

// WithComponents sets the embedding dimensionality.
func WithComponents(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.components = n
		}
	}
}

// WithEpochs sets the number of refinement steps.
func WithEpochs(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.epochs = n
		}
	}
}

// New creates a Projector seeded by seed, with cosine distance and the
// default layout parameters (k=15, min_dist=0.1, 3 components, 100 epochs).
func New(seed uint32, opts ...Option) *Projector {
	p := &Projector{
		calc:       distance.New(),
		src:        rng.New(seed),
		neighbors:  defaultNeighbors,
		minDist:    defaultMinDist,
		components: defaultComponents,
		epochs:     defaultEpochs,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RecommendedNeighbors scales k with corpus size: tight graphs for small
// batches, wide ones for large.
func RecommendedNeighbors(points int) int {
	switch {
	case points < 50:
		return 5
	case points < 200:
		return 15
	case points < 1000:
		return 30
	default:
		return 50
	}
}

// Project embeds the batch. All vectors must share one tier dimension.
func (p *Projector) Project(vectors []vector.Vector) (*Projection, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("%w: no vectors", ErrEmptyBatch)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	k := p.neighbors
	if k >= n {
		k = n - 1
	}

	graph, err := p.neighborGraph(vectors, k)
	if err != nil {
		return nil, err
	}

	emb := p.initEmbedding(n)
	for epoch := 0; epoch < p.epochs; epoch++ {
		p.refine(emb, graph)
	}

	points := make([]Point, n)
	for i := range emb {
		points[i] = Point{Index: i, Coords: emb[i]}
	}
	return &Projection{
		Points:     points,
		Neighbors:  k,
		Components: p.components,
		Epochs:     p.epochs,
	}, nil
}

// edge is one weighted neighbor link.
type edge struct {
	to     int
	weight float64
}

// neighborGraph builds each point's k nearest neighbors with
// exponential-decay edge weights relative to the nearest neighbor.
func (p *Projector) neighborGraph(vectors []vector.Vector, k int) ([][]edge, error) {
	graph := make([][]edge, len(vectors))
	if k == 0 {
		return graph, nil
	}
	for i, v := range vectors {
		ns, err := p.calc.KNearest(v, vectors, k+1)
		if err != nil {
			return nil, err
		}
		edges := make([]edge, 0, k)
		nearest := math.Inf(1)
		for _, nb := range ns {
			if nb.Index == i {
				continue
			}
			if nb.Distance < nearest {
				nearest = nb.Distance
			}
			edges = append(edges, edge{to: nb.Index, weight: nb.Distance})
			if len(edges) == k {
				break
			}
		}
		for j := range edges {
			edges[j].weight = math.Exp(-(edges[j].weight - nearest))
		}
		graph[i] = edges
	}
	return graph, nil
}

// initEmbedding scatters points uniformly in a cube around the origin.
func (p *Projector) initEmbedding(n int) [][]float64 {
	emb := make([][]float64, n)
	for i := range emb {
		coords := make([]float64, p.components)
		for c := range coords {
			coords[c] = p.src.Float64Range(-initSpread/2, initSpread/2)
		}
		emb[i] = coords
	}
	return emb
}

// refine runs one epoch: attraction along graph edges toward minDist
// separation, repulsion of close non-neighbors.
func (p *Projector) refine(emb [][]float64, graph [][]edge) {
	n := len(emb)
	for i := 0; i < n; i++ {
		neighbor := make(map[int]bool, len(graph[i]))
		for _, e := range graph[i] {
			neighbor[e.to] = true

			d := pointDist(emb[i], emb[e.to])
			if d == 0 {
				continue
			}
			pull := learningRate * e.weight * (d - p.minDist) / d
			for c := range emb[i] {
				delta := pull * (emb[e.to][c] - emb[i][c])
				emb[i][c] += delta
				emb[e.to][c] -= delta
			}
		}

		for j := 0; j < n; j++ {
			if j == i || neighbor[j] {
				continue
			}
			d := pointDist(emb[i], emb[j])
			if d == 0 || d >= repulsionRadius {
				continue
			}
			push := repulsionScale * (repulsionRadius - d) / d
			for c := range emb[i] {
				delta := push * (emb[j][c] - emb[i][c])
				emb[i][c] -= delta
			}
		}
	}
}

func pointDist(a, b []float64) float64 {
	var sum float64
	for c := range a {
		d := a[c] - b[c]
		sum += d * d
	}
	return math.Sqrt(sum)
}
