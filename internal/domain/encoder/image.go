package encoder

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/domain/vector"
	"github.com/strokeforge/dna/pkg/rng"
)

// Image analysis constants.
const (
	// workSize is the square working resolution snapshots are scaled to
	// before feature extraction.
	workSize = 64
	// edgeCells is the per-axis cell count for the edge-strength band.
	edgeCells = 8
	// orientBins is the edge-orientation histogram size.
	orientBins = 36
	// histBins is the per-channel color histogram size.
	histBins = 32
	// kmeansK and kmeansIters fix the dominant-color clustering.
	kmeansK       = 5
	kmeansIters   = 5
	kmeansStride  = 2 // pixel subsampling stride on the working image
	maxDominant   = 5
	patternCells  = 32  // 8x4 luminance block means
	structureCell = 128 // 16x8 luminance block means
)

// Image is the cold-path snapshot encoder. It must be invoked only through
// the worker pool; Encode panics when called outside a cold-path context.
type Image struct {
	seed uint32
}

// ImageOption applies a configuration option to the Image encoder.
type ImageOption func(*Image)

// WithImageSeed sets the seed driving k-means initialization.
func WithImageSeed(seed uint32) ImageOption {
	return func(e *Image) { e.seed = seed }
}

// NewImage creates an image encoder with default configuration.
func NewImage(opts ...ImageOption) *Image {
	e := &Image{seed: 42}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode computes a 512-dim fingerprint for a canvas snapshot.
func (e *Image) Encode(ctx context.Context, snap *model.Snapshot, sessionID string) (*model.ImageDNA, error) {
	mustBeCold(ctx, "image")
	start := time.Now()

	if snap == nil || snap.Canvas == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	b := snap.Canvas.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty snapshot canvas", ErrInvalidInput)
	}

	work := downscale(snap.Canvas, workSize, workSize)
	lum := luminance(work)
	gx, gy := sobel(lum)

	var f vector.ImageFeatures
	edgeBand(gx, gy, &f)
	orientBand(gx, gy, &f)
	colorBand(work, lum, &f)
	structureBand(lum, &f)
	// Semantic band stays zeroed: it reserves space for a learned encoder
	// this hand-built extractor does not have.

	vec := f.Pack()
	if err := vec.Validate(vector.ImageDims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	colors := dominantColors(work, e.seed)
	texture := textureSummary(gx, gy, lum)

	return &model.ImageDNA{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		SnapshotID:     snap.ID,
		Vector:         vec,
		DominantColors: colors,
		Texture:        texture,
		CanvasWidth:    b.Dx(),
		CanvasHeight:   b.Dy(),
		Timestamp:      start,
		EncodingTime:   time.Since(start),
	}, nil
}

// downscale resamples img to w x h RGBA.
func downscale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// luminance converts the working image to a flat grayscale grid in [0,255].
func luminance(img *image.RGBA) []float64 {
	out := make([]float64, workSize*workSize)
	for y := 0; y < workSize; y++ {
		for x := 0; x < workSize; x++ {
			i := img.PixOffset(x, y)
			r := float64(img.Pix[i])
			g := float64(img.Pix[i+1])
			b := float64(img.Pix[i+2])
			out[y*workSize+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}
	return out
}

// sobel computes horizontal and vertical gradients over the grid.
func sobel(lum []float64) (gx, gy []float64) {
	gx = make([]float64, len(lum))
	gy = make([]float64, len(lum))
	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= workSize {
			x = workSize - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= workSize {
			y = workSize - 1
		}
		return lum[y*workSize+x]
	}
	for y := 0; y < workSize; y++ {
		for x := 0; x < workSize; x++ {
			gx[y*workSize+x] = at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy[y*workSize+x] = at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
		}
	}
	return gx, gy
}

// edgeBand aggregates gradient magnitude into an 8x8 cell grid.
func edgeBand(gx, gy []float64, f *vector.ImageFeatures) {
	cell := workSize / edgeCells
	norm := float64(cell*cell) * 1141.0 // max sobel magnitude ~ 4*255*sqrt(2)
	for cy := 0; cy < edgeCells; cy++ {
		for cx := 0; cx < edgeCells; cx++ {
			var sum float64
			for y := cy * cell; y < (cy+1)*cell; y++ {
				for x := cx * cell; x < (cx+1)*cell; x++ {
					i := y*workSize + x
					sum += math.Hypot(gx[i], gy[i])
				}
			}
			f.Edge[cy*edgeCells+cx] = float32(sum / norm)
		}
	}
}

// orientBand builds a magnitude-weighted edge-orientation histogram.
func orientBand(gx, gy []float64, f *vector.ImageFeatures) {
	var total float64
	bins := make([]float64, orientBins)
	for i := range gx {
		mag := math.Hypot(gx[i], gy[i])
		if mag == 0 {
			continue
		}
		angle := math.Atan2(gy[i], gx[i]) + math.Pi // [0, 2pi)
		bin := int(angle/(2*math.Pi)*orientBins) % orientBins
		bins[bin] += mag
		total += mag
	}
	for i, v := range bins {
		if total > 0 {
			f.Orient[i] = float32(v / total)
		}
	}
}

// colorBand packs per-channel histograms plus coarse luminance pattern cells.
func colorBand(img *image.RGBA, lum []float64, f *vector.ImageFeatures) {
	var rHist, gHist, bHist [histBins]float64
	n := float64(workSize * workSize)
	for y := 0; y < workSize; y++ {
		for x := 0; x < workSize; x++ {
			i := img.PixOffset(x, y)
			rHist[int(img.Pix[i])*histBins/256]++
			gHist[int(img.Pix[i+1])*histBins/256]++
			bHist[int(img.Pix[i+2])*histBins/256]++
		}
	}
	for i := 0; i < histBins; i++ {
		f.Color[i] = float32(rHist[i] / n)
		f.Color[histBins+i] = float32(gHist[i] / n)
		f.Color[2*histBins+i] = float32(bHist[i] / n)
	}
	// Pattern cells: 8x4 block means of luminance, scaled to [0,1].
	blockMeans(lum, 8, 4, f.Color[3*histBins:3*histBins+patternCells])
}

// structureBand fills 16x8 block means of luminance.
func structureBand(lum []float64, f *vector.ImageFeatures) {
	blockMeans(lum, 16, 8, f.Structure[:structureCell])
}

// blockMeans averages the grid into cols x rows blocks written into out.
func blockMeans(lum []float64, cols, rows int, out []float32) {
	cw, ch := workSize/cols, workSize/rows
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			var sum float64
			for y := by * ch; y < (by+1)*ch; y++ {
				for x := bx * cw; x < (bx+1)*cw; x++ {
					sum += lum[y*workSize+x]
				}
			}
			out[by*cols+bx] = float32(sum / float64(cw*ch) / 255.0)
		}
	}
}

// dominantColors runs fixed-round k-means over subsampled pixels.
func dominantColors(img *image.RGBA, seed uint32) []model.DominantColor {
	type px struct{ r, g, b float64 }
	var samples []px
	for y := 0; y < workSize; y += kmeansStride {
		for x := 0; x < workSize; x += kmeansStride {
			i := img.PixOffset(x, y)
			samples = append(samples, px{float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])})
		}
	}
	if len(samples) == 0 {
		return nil
	}

	k := kmeansK
	if k > len(samples) {
		k = len(samples)
	}

	// Deterministic init: seeded shuffle, then the first k samples.
	src := rng.New(seed).Derive(uint32(len(samples)))
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	src.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	centers := make([]px, k)
	for i := 0; i < k; i++ {
		centers[i] = samples[order[i]]
	}

	assign := make([]int, len(samples))
	for iter := 0; iter < kmeansIters; iter++ {
		for si, s := range samples {
			best, bestD := 0, math.Inf(1)
			for ci, c := range centers {
				d := (s.r-c.r)*(s.r-c.r) + (s.g-c.g)*(s.g-c.g) + (s.b-c.b)*(s.b-c.b)
				if d < bestD {
					best, bestD = ci, d
				}
			}
			assign[si] = best
		}
		sums := make([]px, k)
		counts := make([]int, k)
		for si, s := range samples {
			c := assign[si]
			sums[c].r += s.r
			sums[c].g += s.g
			sums[c].b += s.b
			counts[c]++
		}
		for ci := range centers {
			if counts[ci] > 0 {
				centers[ci] = px{sums[ci].r / float64(counts[ci]), sums[ci].g / float64(counts[ci]), sums[ci].b / float64(counts[ci])}
			}
		}
	}

	counts := make([]int, k)
	for _, c := range assign {
		counts[c]++
	}
	out := make([]model.DominantColor, 0, k)
	for ci, c := range centers {
		if counts[ci] == 0 {
			continue
		}
		out = append(out, model.DominantColor{
			R:      c.r,
			G:      c.g,
			B:      c.b,
			Weight: float64(counts[ci]) / float64(len(samples)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > maxDominant {
		out = out[:maxDominant]
	}
	return out
}

// textureSummary derives complexity, contrast, and energy.
func textureSummary(gx, gy, lum []float64) model.TextureSummary {
	var edgeSum float64
	for i := range gx {
		edgeSum += math.Hypot(gx[i], gy[i])
	}
	complexity := edgeSum / (float64(len(gx)) * 1141.0)

	minL, maxL := math.Inf(1), math.Inf(-1)
	for _, l := range lum {
		minL = math.Min(minL, l)
		maxL = math.Max(maxL, l)
	}
	contrast := (maxL - minL) / 255.0

	// Energy: sum of squared histogram probabilities; uniform images score
	// high, busy ones low.
	var hist [histBins]float64
	for _, l := range lum {
		bin := int(l) * histBins / 256
		if bin >= histBins {
			bin = histBins - 1
		}
		hist[bin]++
	}
	var energy float64
	n := float64(len(lum))
	for _, h := range hist {
		p := h / n
		energy += p * p
	}

	return model.TextureSummary{
		Complexity: clamp01(complexity),
		Contrast:   clamp01(contrast),
		Energy:     clamp01(energy),
	}
}
