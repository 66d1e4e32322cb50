// Command dna runs the encoding engine against a synthetic drawing session:
// strokes stream through the hot path, snapshots and telemetry through the
// cold path, and the derived scores are reported at the end. It doubles as
// a smoke test of the full wiring.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strokeforge/dna/internal/adapters/repository"
	"github.com/strokeforge/dna/internal/app"
	"github.com/strokeforge/dna/internal/config"
	"github.com/strokeforge/dna/internal/domain/aesthetic"
	"github.com/strokeforge/dna/internal/domain/confidence"
	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/internal/synth"
	"github.com/strokeforge/dna/pkg/logger"
	"github.com/strokeforge/dna/pkg/metrics"
)

// Demo session shape.
const (
	demoStrokes      = 120
	demoPointsPer    = 48
	demoCanvasW      = 256
	demoCanvasH      = 144
	readHeaderLimit  = 5 * time.Second
	shutdownTimeout  = 10 * time.Second
	coldSettleWindow = 2 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.New(cfg.StorageMode, cfg.StoragePath)
	if err != nil {
		log.Error(ctx, "storage selection failed", logger.Error(err))
		return
	}

	pipeline := app.New(
		app.WithLogger(log),
		app.WithBudget(time.Duration(cfg.HotBudgetMS*float64(time.Millisecond))),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithColdTimeout(time.Duration(cfg.ColdTimeoutMS)*time.Millisecond),
		app.WithSnapshotCadence(cfg.SnapshotCadence),
		app.WithReferenceCanvas(cfg.ReferenceWidth, cfg.ReferenceHeight),
		app.WithSeed(cfg.Seed),
		app.WithStore(store),
		app.WithConfidenceScorer(confidence.New(
			confidence.WithWatermarks(cfg.ConfidenceLowStrokes, cfg.ConfidenceHighStrokes),
			confidence.WithDecayWindow(time.Duration(cfg.ConfidenceDecayHours*float64(time.Hour))),
		)),
		app.WithAestheticRegulator(aesthetic.New(
			aesthetic.WithMode(aesthetic.Mode(cfg.AestheticMode)),
			aesthetic.WithReferenceCanvas(cfg.ReferenceWidth, cfg.ReferenceHeight),
		)),
	)
	if err := pipeline.Start(ctx); err != nil {
		log.Error(ctx, "pipeline start failed", logger.Error(err))
		return
	}
	defer func() {
		if err := pipeline.Stop(context.Background()); err != nil {
			log.Error(context.Background(), "pipeline stop failed", logger.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	sessionID := runDemo(ctx, log.Named("demo"), pipeline, synth.New(cfg.Seed), demoStrokes, cfg.SnapshotCadence)

	// Let in-flight cold tasks merge before reporting.
	settle := time.NewTimer(coldSettleWindow)
	select {
	case <-ctx.Done():
		settle.Stop()
	case <-settle.C:
	}

	report(ctx, log, pipeline, sessionID)

	if err := pipeline.EndSession(ctx, sessionID); err != nil {
		log.Error(ctx, "session persistence failed", logger.Error(err))
	}
}

// runDemo streams a synthetic session through the pipeline and returns the
// session id.
func runDemo(ctx context.Context, log logger.Logger, p *app.Pipeline, gen *synth.Generator, strokes, cadence int) string {
	const sessionID = "demo-session"

	for i := 0; i < strokes; i++ {
		if ctx.Err() != nil {
			break
		}
		in := gen.Stroke(sessionID, gen.NextShape(), demoPointsPer)
		if _, err := p.EncodeStroke(ctx, in); err != nil {
			log.Warn(ctx, "stroke rejected", logger.String("stroke_id", in.StrokeID), logger.Error(err))
			continue
		}
		if cadence > 0 && (i+1)%cadence == 0 {
			p.SubmitSnapshot(ctx, sessionID, &model.Snapshot{
				ID:     in.StrokeID + "-snap",
				Canvas: gen.Canvas(demoCanvasW, demoCanvasH),
			})
		}
	}
	return sessionID
}

// report logs throughput statistics and the session's derived scores.
func report(ctx context.Context, log logger.Logger, p *app.Pipeline, sessionID string) {
	stats := p.Snapshot(ctx)
	log.Info(ctx, "pipeline statistics",
		logger.Int("strokes", int(stats.Strokes)),
		logger.Int("budget_violations", int(stats.Violations)),
		logger.Float64("avg_hot_ms", stats.AvgHotMS),
		logger.Float64("avg_cold_ms", stats.AvgColdMS),
		logger.Any("healthy", stats.Healthy),
	)

	rep, err := p.Report(sessionID, time.Now())
	if err != nil {
		log.Error(ctx, "report failed", logger.Error(err))
		return
	}
	log.Info(ctx, "session report",
		logger.Float64("confidence", rep.Confidence.Overall),
		logger.Float64("aesthetic", rep.Aesthetic.Overall),
		logger.Any("passes_threshold", rep.Aesthetic.PassesThreshold),
		logger.Int("advisories", len(rep.Advisories)),
	)
	for _, adv := range rep.Advisories {
		log.Info(ctx, "advisory",
			logger.String("kind", string(adv.Kind)),
			logger.Int("priority", int(adv.Priority)),
			logger.String("message", adv.Message),
		)
	}
}

// serveMetrics exposes the Prometheus registry until ctx ends.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderLimit,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
