// Package app wires the encoding engine together: the synchronous hot path
// for stroke fingerprints, the queue-and-workers cold path for image and
// temporal fingerprints, and the derived scorers over the accumulated
// sessions.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strokeforge/dna/internal/adapters/mq/queue"
	"github.com/strokeforge/dna/internal/adapters/mq/worker"
	"github.com/strokeforge/dna/internal/adapters/repository"
	"github.com/strokeforge/dna/internal/domain/adaptive"
	"github.com/strokeforge/dna/internal/domain/aesthetic"
	"github.com/strokeforge/dna/internal/domain/confidence"
	"github.com/strokeforge/dna/internal/domain/encoder"
	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/pkg/logger"
	"github.com/strokeforge/dna/pkg/metrics"
)

// Default pipeline configuration constants.
const (
	defaultBudget          = 16 * time.Millisecond
	defaultWorkerCount     = 2
	defaultQueueSize       = 1024
	defaultSnapshotCadence = 10
	defaultRefWidth        = 1920
	defaultRefHeight       = 1080
	defaultSeed            = 42

	// Health gate: violation share of encoded strokes.
	maxViolationRate = 0.05
	mergeBuffer      = 64
)

// Stats is a point-in-time view of pipeline throughput and health.
type Stats struct {
	Strokes        int64   `json:"strokes"`
	Violations     int64   `json:"violations"`
	AvgHotMS       float64 `json:"avg_hot_ms"`
	AvgColdMS      float64 `json:"avg_cold_ms"`
	QueueDepth     int     `json:"queue_depth"`
	ActiveSessions int     `json:"active_sessions"`
	Healthy        bool    `json:"healthy"`
}

// SessionReport bundles the derived scores for one session.
type SessionReport struct {
	Confidence confidence.Score         `json:"confidence"`
	Aesthetic  aesthetic.Score          `json:"aesthetic"`
	Advisories []adaptive.Advisory      `json:"advisories"`
	Brush      adaptive.BrushAdjustment `json:"brush"`
}

// merged is one cold-path result on its way back into a session.
type merged struct {
	sessionID string
	result    any
}

// Pipeline owns the sessions and orchestrates the hot/cold boundary. All
// session mutation funnels through it, honoring the single-owner rule.
type Pipeline struct {
	budget          time.Duration
	workerCount     int
	queueSize       int
	coldTimeout     time.Duration
	snapshotCadence int
	refWidth        float64
	refHeight       float64
	seed            uint32

	strokeEnc   *encoder.Stroke
	imageEnc    *encoder.Image
	temporalEnc *encoder.Temporal

	queue *queue.InMemoryQueue
	pool  *worker.Pool
	store repository.Store

	confidence *confidence.Scorer
	aesthetic  *aesthetic.Regulator
	adaptive   *adaptive.Manager

	mu       sync.RWMutex
	sessions map[string]*model.Session
	started  bool

	strokes    int64
	violations int64
	hotTotalMS float64
	coldCount  int64
	coldTotal  float64

	merges  chan merged
	wgWatch sync.WaitGroup
	wgMerge sync.WaitGroup
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithBudget sets the hot-path latency budget.
func WithBudget(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.budget = d
		}
	}
}

// WithWorkerCount sets the cold-path worker count.
func WithWorkerCount(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithQueueSize sets the cold-task queue capacity.
func WithQueueSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithColdTimeout bounds each cold task. Zero disables enforcement.
func WithColdTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.coldTimeout = d
		}
	}
}

// WithSnapshotCadence sets how many strokes pass between temporal encodes.
func WithSnapshotCadence(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.snapshotCadence = n
		}
	}
}

// WithReferenceCanvas sets the normalization reference resolution.
func WithReferenceCanvas(w, h float64) Option {
	return func(p *Pipeline) {
		if w > 0 && h > 0 {
			p.refWidth = w
			p.refHeight = h
		}
	}
}

// WithSeed sets the deterministic seed shared by the image encoder.
func WithSeed(seed uint32) Option {
	return func(p *Pipeline) { p.seed = seed }
}

// WithStore sets the session store used by Persist and EndSession.
func WithStore(s repository.Store) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.store = s
		}
	}
}

// WithConfidenceScorer sets a custom confidence scorer.
func WithConfidenceScorer(s *confidence.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.confidence = s
		}
	}
}

// WithAestheticRegulator sets a custom aesthetic regulator.
func WithAestheticRegulator(r *aesthetic.Regulator) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.aesthetic = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New constructs an unstarted pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		budget:          defaultBudget,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		snapshotCadence: defaultSnapshotCadence,
		refWidth:        defaultRefWidth,
		refHeight:       defaultRefHeight,
		seed:            defaultSeed,
		sessions:        make(map[string]*model.Session),
		adaptive:        adaptive.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}
	if p.confidence == nil {
		p.confidence = confidence.New()
	}
	if p.aesthetic == nil {
		p.aesthetic = aesthetic.New(aesthetic.WithReferenceCanvas(p.refWidth, p.refHeight))
	}
	return p
}

// Start builds the encoders, queue, and worker pool and launches the merge
// loop. It is idempotent.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	bounds := encoder.NewBounds(p.refWidth, p.refHeight)
	p.strokeEnc = encoder.NewStroke(
		encoder.WithStrokeBounds(bounds),
		encoder.WithStrokeBudget(p.budget),
		encoder.WithStrokeLogger(p.logger.Named("stroke")),
	)
	p.imageEnc = encoder.NewImage(encoder.WithImageSeed(p.seed))
	p.temporalEnc = encoder.NewTemporal()

	p.queue = queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize))
	p.pool = worker.NewPool(
		worker.WithQueue(p.queue),
		worker.WithWorkerCount(p.workerCount),
		worker.WithColdTimeout(p.coldTimeout),
		worker.WithLogger(p.logger.Named("workers")),
	)

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.pool.Start(runCtx)

	if p.store != nil {
		if err := p.store.Initialize(runCtx); err != nil {
			cancel()
			return fmt.Errorf("initialize store: %w", err)
		}
	}

	p.merges = make(chan merged, mergeBuffer)
	p.wgMerge.Add(1)
	go p.mergeLoop(runCtx)

	p.started = true
	p.logger.Info(ctx, "pipeline started",
		logger.Int("workers", p.workerCount),
		logger.Int("queue_size", p.queueSize),
		logger.Duration("budget", p.budget),
	)
	return nil
}

// Stop drains the cold path and stops the merge loop.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	p.mu.Unlock()

	if err := p.pool.Shutdown(ctx); err != nil {
		p.logger.Error(ctx, "pool shutdown failed", logger.Error(err))
	}
	p.wgWatch.Wait()
	close(p.merges)
	p.wgMerge.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info(ctx, "pipeline stopped")
	return nil
}

// EncodeStroke runs the hot path: encode synchronously, record the stroke
// into its session, fold the artist context forward, and at the configured
// cadence enqueue a fire-and-forget temporal encode. It never blocks on
// cold-path completion.
func (p *Pipeline) EncodeStroke(ctx context.Context, in *model.StrokeInput) (*model.StrokeDNA, error) {
	start := time.Now()
	dna, err := p.strokeEnc.Encode(ctx, in, p.artistFor(in.SessionID))
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	ms := float64(elapsed.Microseconds()) / 1000.0
	metrics.RecordStrokeEncoded()
	metrics.RecordHotLatency(ms)

	p.mu.Lock()
	p.strokes++
	p.hotTotalMS += ms
	if elapsed > p.budget {
		p.violations++
		metrics.RecordBudgetViolation()
	}

	session := p.sessionLocked(in.SessionID)
	session.AddStroke(dna)
	session.Artist.RecordStroke(in, dna.Timestamp)
	dueTemporal := session.TotalStrokes%p.snapshotCadence == 0
	var snapshot *model.Session
	if dueTemporal {
		snapshot = session.Clone()
	}
	p.mu.Unlock()

	if dueTemporal {
		p.submitTemporal(ctx, snapshot)
	}
	return dna, nil
}

// SubmitSnapshot enqueues a cold-path image encode of the canvas snapshot.
// The returned future resolves to a *model.ImageDNA; callers that do not
// care can discard it, the result merges into the session either way.
func (p *Pipeline) SubmitSnapshot(ctx context.Context, sessionID string, snap *model.Snapshot) *worker.Future {
	t := queue.Task{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Tier:       queue.TierImage,
		EnqueuedAt: time.Now(),
		Run: func(taskCtx context.Context) (any, error) {
			return p.imageEnc.Encode(taskCtx, snap, sessionID)
		},
	}
	f := p.pool.Submit(ctx, t)
	p.watch(sessionID, f)
	return f
}

// submitTemporal enqueues a temporal encode over a session snapshot.
func (p *Pipeline) submitTemporal(ctx context.Context, snapshot *model.Session) {
	t := queue.Task{
		ID:         uuid.New().String(),
		SessionID:  snapshot.ID,
		Tier:       queue.TierTemporal,
		EnqueuedAt: time.Now(),
		Run: func(taskCtx context.Context) (any, error) {
			return p.temporalEnc.Encode(taskCtx, snapshot, snapshot.Artist)
		},
	}
	f := p.pool.Submit(ctx, t)
	p.watch(snapshot.ID, f)
}

// watch forwards a future's result to the merge loop once it resolves.
// Failed tasks are logged by the pool; nothing merges.
func (p *Pipeline) watch(sessionID string, f *worker.Future) {
	p.mu.RLock()
	open := p.started
	if open {
		p.wgWatch.Add(1)
	}
	p.mu.RUnlock()
	if !open {
		return
	}
	go func() {
		defer p.wgWatch.Done()
		<-f.Done()
		result, err := f.Result()
		if err != nil {
			return
		}
		p.merges <- merged{sessionID: sessionID, result: result}
	}()
}

// mergeLoop is the single writer folding cold results back into sessions.
func (p *Pipeline) mergeLoop(ctx context.Context) {
	defer p.wgMerge.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-p.merges:
			if !ok {
				return
			}
			p.merge(ctx, m)
		}
	}
}

func (p *Pipeline) merge(ctx context.Context, m merged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	session, ok := p.sessions[m.sessionID]
	if !ok {
		return // session already ended
	}
	switch r := m.result.(type) {
	case *model.ImageDNA:
		session.AddImage(r)
		p.coldCount++
		p.coldTotal += float64(r.EncodingTime.Microseconds()) / 1000.0
	case *model.TemporalDNA:
		session.AddTemporal(r)
		p.coldCount++
		p.coldTotal += float64(r.EncodingTime.Microseconds()) / 1000.0
	default:
		p.logger.Warn(ctx, "unexpected cold result type", logger.Any("result", m.result))
	}
}

// artistFor returns the session's live artist context, or nil before the
// session's first successful stroke. Sessions are created only after a
// stroke encodes, so a rejected input never leaves an empty session behind.
func (p *Pipeline) artistFor(sessionID string) *model.ArtistContext {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.sessions[sessionID]; ok {
		return s.Artist
	}
	return nil
}

// sessionLocked fetches or creates a session. Callers hold p.mu.
func (p *Pipeline) sessionLocked(id string) *model.Session {
	if s, ok := p.sessions[id]; ok {
		return s
	}
	s := model.NewSession(id, "", time.Now())
	p.sessions[id] = s
	metrics.UpdateActiveSessions(len(p.sessions))
	return s
}

// Session returns a snapshot clone of a live session, or nil.
func (p *Pipeline) Session(id string) *model.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.sessions[id]; ok {
		return s.Clone()
	}
	return nil
}

// Report computes the derived scores for a live session.
func (p *Pipeline) Report(id string, now time.Time) (SessionReport, error) {
	s := p.Session(id)
	if s == nil {
		return SessionReport{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	temporal := s.LatestTemporal()
	rep := SessionReport{
		Confidence: p.confidence.Score(s, now),
		Aesthetic:  p.aesthetic.Score(s, now),
		Advisories: p.adaptive.Advise(temporal, s.Artist, now),
	}
	if temporal != nil {
		rep.Brush = p.adaptive.AdjustBrush(temporal.FatigueLevel, temporal.FocusScore)
	}
	return rep, nil
}

// Persist saves a live session through the configured store.
func (p *Pipeline) Persist(ctx context.Context, id string) error {
	if p.store == nil {
		return fmt.Errorf("%w: no store configured", repository.ErrBackendUnavailable)
	}
	s := p.Session(id)
	if s == nil {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	s.Confidence = p.confidence.Score(s, time.Now()).Overall
	sc := p.aesthetic.Score(s, time.Now())
	s.AestheticScore = &sc.Overall
	s.AestheticMode = string(sc.Mode)
	return p.store.SaveSession(ctx, s)
}

// EndSession persists the session when a store is configured, then drops it
// from the live set.
func (p *Pipeline) EndSession(ctx context.Context, id string) error {
	if p.store != nil {
		if err := p.Persist(ctx, id); err != nil {
			return err
		}
	}
	p.mu.Lock()
	delete(p.sessions, id)
	metrics.UpdateActiveSessions(len(p.sessions))
	p.mu.Unlock()
	return nil
}

// IsHealthy reports whether the hot path is holding its budget: average hot
// time under budget and violation rate below the gate.
func (p *Pipeline) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.strokes == 0 {
		return true
	}
	avg := p.hotTotalMS / float64(p.strokes)
	rate := float64(p.violations) / float64(p.strokes)
	return avg < float64(p.budget.Microseconds())/1000.0 && rate < maxViolationRate
}

// Snapshot returns current throughput statistics.
func (p *Pipeline) Snapshot(ctx context.Context) Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st := Stats{
		Strokes:        p.strokes,
		Violations:     p.violations,
		ActiveSessions: len(p.sessions),
	}
	if p.strokes > 0 {
		st.AvgHotMS = p.hotTotalMS / float64(p.strokes)
	}
	if p.coldCount > 0 {
		st.AvgColdMS = p.coldTotal / float64(p.coldCount)
	}
	if p.queue != nil {
		st.QueueDepth = p.queue.Len(ctx)
	}
	st.Healthy = true
	if p.strokes > 0 {
		rate := float64(p.violations) / float64(p.strokes)
		st.Healthy = st.AvgHotMS < float64(p.budget.Microseconds())/1000.0 && rate < maxViolationRate
	}
	return st
}
