package main

import (
	"context"
	"testing"
	"time"

	"github.com/strokeforge/dna/internal/app"
	"github.com/strokeforge/dna/internal/synth"
	"github.com/strokeforge/dna/pkg/logger"
)

func TestRunDemoStreamsSession(t *testing.T) {
	ctx := context.Background()
	p := app.New(app.WithBudget(time.Second), app.WithSnapshotCadence(5))
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pipeline: %v", err)
	}
	defer p.Stop(ctx)

	id := runDemo(ctx, logger.Nop(), p, synth.New(1), 10, 5)

	s := p.Session(id)
	if s == nil {
		t.Fatalf("demo session %q not found", id)
	}
	if s.TotalStrokes != 10 {
		t.Fatalf("TotalStrokes = %d, want 10", s.TotalStrokes)
	}

	stats := p.Snapshot(ctx)
	if stats.Strokes != 10 {
		t.Fatalf("stats.Strokes = %d, want 10", stats.Strokes)
	}
}

func TestRunDemoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := app.New(app.WithBudget(time.Second))
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pipeline: %v", err)
	}
	defer p.Stop(context.Background())

	cancel()
	id := runDemo(ctx, logger.Nop(), p, synth.New(1), 50, 0)
	if s := p.Session(id); s != nil {
		t.Fatalf("expected no strokes after cancellation, got %d", s.TotalStrokes)
	}
}
