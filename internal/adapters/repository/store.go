// Package repository persists DNA sessions behind a backend-agnostic
// interface. Three interchangeable backends cover the deployment spectrum:
// bbolt for durable indexed storage, flat JSON files for simple synchronous
// persistence, and an in-process map for tests and ephemeral runs.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/pkg/metrics"
)

// Backend names for configuration and metrics labels.
const (
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// SessionSummary is the listing view of a stored session.
type SessionSummary struct {
	ID           string    `json:"id"`
	ArtistID     string    `json:"artist_id,omitempty"`
	StartAt      time.Time `json:"start_at"`
	TotalStrokes int       `json:"total_strokes"`
}

// ListFilter narrows ListSessions results. Zero values match everything.
type ListFilter struct {
	ArtistID string
	Since    time.Time
	Until    time.Time
}

// Matches reports whether a summary passes the filter.
func (f ListFilter) Matches(s SessionSummary) bool {
	if f.ArtistID != "" && s.ArtistID != f.ArtistID {
		return false
	}
	if !f.Since.IsZero() && s.StartAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !s.StartAt.Before(f.Until) {
		return false
	}
	return true
}

// Store provides read/write access to persisted sessions. Retry policy is a
// caller concern; operations fail without built-in retries.
type Store interface {
	// Initialize prepares the backend. It must be called before any other
	// operation and fails with ErrBackendUnavailable when the backend
	// cannot be reached.
	Initialize(ctx context.Context) error

	// SaveSession writes the session, replacing any existing record.
	SaveSession(ctx context.Context, s *model.Session) error

	// LoadSession reads a session by id. Returns ErrNotFound if missing.
	LoadSession(ctx context.Context, id string) (*model.Session, error)

	// DeleteSession removes a session. Returns ErrNotFound if missing.
	DeleteSession(ctx context.Context, id string) error

	// ListSessions returns summaries matching the filter, ordered by
	// ascending start time.
	ListSessions(ctx context.Context, f ListFilter) ([]SessionSummary, error)

	// ArchiveSession moves a session into the archive namespace.
	ArchiveSession(ctx context.Context, id string) error

	// ArchiveOldSessions archives every session older than the threshold
	// and returns the count moved.
	ArchiveOldSessions(ctx context.Context, olderThan time.Duration) (int, error)

	// Clear removes all sessions and archive records.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// New selects a backend by configured mode. path is ignored by the memory
// backend; for bolt it is the database file, for file the root directory.
func New(mode, path string) (Store, error) {
	switch mode {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path), nil
	case BackendBolt:
		return NewBoltStore(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, mode)
	}
}

// observe records per-operation latency for the backend.
func observe(op, backend string, start time.Time) {
	metrics.RecordStorageOpLatency(op, backend, float64(time.Since(start).Microseconds())/1000.0)
}

func summarize(s *model.Session) SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		ArtistID:     s.ArtistID,
		StartAt:      s.StartAt,
		TotalStrokes: s.TotalStrokes,
	}
}
