// Package encoder turns raw creative-session input into fixed-dimension
// feature vectors. The stroke encoder runs synchronously on the interactive
// path under a latency budget; the image and temporal encoders run only on
// the cold path through the worker pool.
package encoder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
	"github.com/strokeforge/dna/pkg/logger"
)

// Stroke encoding constants.
const (
	// defaultDeltaMS substitutes for missing point timestamps.
	defaultDeltaMS = 16.0
	// pauseGapMS is the inter-point gap counted as a pause.
	pauseGapMS = 100.0
	// cornerRadians is the turning-angle magnitude counted as a corner.
	cornerRadians = 0.5
)

// Stroke is the hot-path encoder. It is stateless apart from configuration
// and safe for concurrent use.
type Stroke struct {
	bounds *Bounds
	budget time.Duration
	log    logger.Logger
}

// StrokeOption applies a configuration option to the Stroke encoder.
type StrokeOption func(*Stroke)

// WithStrokeBounds sets the coordinate normalizer.
func WithStrokeBounds(b *Bounds) StrokeOption {
	return func(s *Stroke) {
		if b != nil {
			s.bounds = b
		}
	}
}

// WithStrokeBudget sets the hot-path latency budget. Exceeding it is
// recorded, not an error.
func WithStrokeBudget(d time.Duration) StrokeOption {
	return func(s *Stroke) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithStrokeLogger sets a custom logger.
func WithStrokeLogger(l logger.Logger) StrokeOption {
	return func(s *Stroke) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStroke creates a stroke encoder with default configuration.
func NewStroke(opts ...StrokeOption) *Stroke {
	s := &Stroke{
		bounds: NewBounds(DefaultReferenceWidth, DefaultReferenceHeight),
		budget: 16 * time.Millisecond,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Budget returns the configured latency budget.
func (s *Stroke) Budget() time.Duration { return s.budget }

// Encode computes a 30-dim fingerprint for a completed stroke. The input is
// never mutated. Strokes with no points are rejected with ErrInvalidInput.
func (s *Stroke) Encode(ctx context.Context, in *model.StrokeInput, _ *model.ArtistContext) (*model.StrokeDNA, error) {
	start := time.Now()

	if in == nil || len(in.Points) == 0 {
		return nil, fmt.Errorf("%w: stroke has no points", ErrInvalidInput)
	}

	pts, nb := s.bounds.Normalize(in.Points, in.CanvasWidth, in.CanvasHeight)

	var f vector.StrokeFeatures
	geometricFeatures(pts, &f)
	statisticalFeatures(pts, &f)
	dynamicFeatures(in.Points, &f)

	vec := f.Pack()
	if err := vec.Validate(vector.StrokeDims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	elapsed := time.Since(start)
	if elapsed > s.budget {
		s.log.Debug(ctx, "stroke encoding exceeded budget",
			logger.Duration("elapsed", elapsed),
			logger.Duration("budget", s.budget),
			logger.Int("points", len(in.Points)),
		)
	}

	return &model.StrokeDNA{
		ID:           uuid.New().String(),
		StrokeID:     in.StrokeID,
		SessionID:    in.SessionID,
		Vector:       vec,
		Bounds:       &nb,
		Tool:         in.Tool,
		Color:        in.Color,
		Timestamp:    start,
		EncodingTime: elapsed,
	}, nil
}

// geometricFeatures fills the first ten slots from normalized coordinates.
func geometricFeatures(pts []model.Point, f *vector.StrokeFeatures) {
	n := float64(len(pts))

	var sumX, sumY float64
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n
	f.MeanX = float32(meanX)
	f.MeanY = float32(meanY)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	w, h := maxX-minX, maxY-minY
	f.Width = float32(w)
	f.Height = float32(h)
	f.Aspect = float32(safeDiv(w, h))
	area := w * h
	f.Area = float32(area)

	var perimeter float64
	for i := 1; i < len(pts); i++ {
		perimeter += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	f.Perimeter = float32(perimeter)
	if perimeter > 0 {
		f.Compactness = float32(4 * math.Pi * area / (perimeter * perimeter))
	}

	// Covariance eigenvalues give elongation and the principal angle gives
	// orientation.
	var cxx, cyy, cxy float64
	for _, p := range pts {
		dx, dy := p.X-meanX, p.Y-meanY
		cxx += dx * dx
		cyy += dy * dy
		cxy += dx * dy
	}
	cxx /= n
	cyy /= n
	cxy /= n

	tr := cxx + cyy
	det := cxx*cyy - cxy*cxy
	disc := math.Sqrt(math.Max(0, tr*tr/4-det))
	l1 := tr/2 + disc
	l2 := tr/2 - disc
	if l1 > 0 {
		f.Elongation = float32(1 - math.Max(0, l2)/l1)
	}
	f.Orientation = float32(0.5 * math.Atan2(2*cxy, cxx-cyy))
}

// statisticalFeatures fills slots 10..19 from normalized coordinates.
func statisticalFeatures(pts []model.Point, f *vector.StrokeFeatures) {
	n := float64(len(pts))

	var meanX, meanY float64
	for _, p := range pts {
		meanX += p.X
		meanY += p.Y
	}
	meanX /= n
	meanY /= n

	var m2x, m3x, m4x, m2y, m3y, m4y float64
	for _, p := range pts {
		dx, dy := p.X-meanX, p.Y-meanY
		m2x += dx * dx
		m3x += dx * dx * dx
		m4x += dx * dx * dx * dx
		m2y += dy * dy
		m3y += dy * dy * dy
		m4y += dy * dy * dy * dy
	}
	m2x, m3x, m4x = m2x/n, m3x/n, m4x/n
	m2y, m3y, m4y = m2y/n, m3y/n, m4y/n

	f.VarX = float32(m2x)
	f.VarY = float32(m2y)
	if sx := math.Sqrt(m2x); sx > 0 {
		f.SkewX = float32(m3x / (sx * sx * sx))
		f.KurtX = float32(m4x / (m2x * m2x))
	}
	if sy := math.Sqrt(m2y); sy > 0 {
		f.SkewY = float32(m3y / (sy * sy * sy))
		f.KurtY = float32(m4y / (m2y * m2y))
	}

	var perimeter float64
	for i := 1; i < len(pts); i++ {
		perimeter += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	f.Density = float32(safeDiv(n, perimeter))

	// Per-point turning angle between consecutive segments.
	var curvs []float64
	for i := 1; i < len(pts)-1; i++ {
		a1 := math.Atan2(pts[i].Y-pts[i-1].Y, pts[i].X-pts[i-1].X)
		a2 := math.Atan2(pts[i+1].Y-pts[i].Y, pts[i+1].X-pts[i].X)
		d := a2 - a1
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		curvs = append(curvs, d)
	}
	if len(curvs) > 0 {
		var sum, sumAbs float64
		corners := 0
		for _, c := range curvs {
			sum += c
			sumAbs += math.Abs(c)
			if math.Abs(c) > cornerRadians {
				corners++
			}
		}
		mean := sum / float64(len(curvs))
		var variance float64
		for _, c := range curvs {
			variance += (c - mean) * (c - mean)
		}
		variance /= float64(len(curvs))
		f.CurvMean = float32(sumAbs / float64(len(curvs)))
		f.CurvStd = float32(math.Sqrt(variance))
		f.Corners = float32(corners)
	}
}

// dynamicFeatures fills slots 20..29 from the raw (unnormalized) points,
// whose timestamps and pen dynamics are scale-independent.
func dynamicFeatures(pts []model.Point, f *vector.StrokeFeatures) {
	n := len(pts)

	timed := false
	for _, p := range pts {
		if p.TimeMS != 0 {
			timed = true
			break
		}
	}

	var vels, accs []float64
	var pauses int
	var durationMS float64
	for i := 1; i < n; i++ {
		dt := defaultDeltaMS
		if timed {
			dt = pts[i].TimeMS - pts[i-1].TimeMS
			if dt <= 0 {
				dt = defaultDeltaMS
			}
		}
		durationMS += dt
		if dt > pauseGapMS {
			pauses++
		}
		dist := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		vels = append(vels, dist/dt)
	}
	for i := 1; i < len(vels); i++ {
		accs = append(accs, vels[i]-vels[i-1])
	}

	if len(vels) > 0 {
		var sum, maxV float64
		for _, v := range vels {
			sum += v
			maxV = math.Max(maxV, v)
		}
		f.VelMean = float32(sum / float64(len(vels)))
		f.VelMax = float32(maxV)
	}
	if len(accs) > 0 {
		var sum, maxA float64
		for _, a := range accs {
			sum += math.Abs(a)
			maxA = math.Max(maxA, math.Abs(a))
		}
		f.AccMean = float32(sum / float64(len(accs)))
		f.AccMax = float32(maxA)
	}

	var pSum float64
	for _, p := range pts {
		pSum += p.Pressure
	}
	pMean := pSum / float64(n)
	var pVar float64
	for _, p := range pts {
		pVar += (p.Pressure - pMean) * (p.Pressure - pMean)
	}
	pVar /= float64(n)
	f.PressureMean = float32(pMean)
	f.PressureStd = float32(math.Sqrt(pVar))

	var tiltSum, twistSum float64
	for _, p := range pts {
		tiltSum += p.Tilt
		twistSum += p.Twist
	}
	f.TiltMean = float32(tiltSum / float64(n))
	f.TwistMean = float32(twistSum / float64(n))

	f.Duration = float32(durationMS / 1000)
	f.Pauses = float32(pauses)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
