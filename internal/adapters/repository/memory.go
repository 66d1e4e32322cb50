package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
)

// MemoryStore is the volatile in-process backend. Sessions are cloned on
// both write and read so callers never share mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	archive  map[string]*model.Session
}

// NewMemoryStore creates an uninitialized in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Initialize allocates the maps.
func (m *MemoryStore) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*model.Session)
	m.archive = make(map[string]*model.Session)
	return nil
}

// SaveSession stores a clone of the session.
func (m *MemoryStore) SaveSession(_ context.Context, s *model.Session) error {
	defer observe("save", BackendMemory, time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return ErrNotInitialized
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

// LoadSession returns a clone of the stored session.
func (m *MemoryStore) LoadSession(_ context.Context, id string) (*model.Session, error) {
	defer observe("load", BackendMemory, time.Now())
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sessions == nil {
		return nil, ErrNotInitialized
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Clone(), nil
}

// DeleteSession removes a session.
func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	defer observe("delete", BackendMemory, time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return ErrNotInitialized
	}
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// ListSessions returns matching summaries ordered by start time.
func (m *MemoryStore) ListSessions(_ context.Context, f ListFilter) ([]SessionSummary, error) {
	defer observe("list", BackendMemory, time.Now())
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sessions == nil {
		return nil, ErrNotInitialized
	}
	out := make([]SessionSummary, 0, len(m.sessions))
	for _, s := range m.sessions {
		if sum := summarize(s); f.Matches(sum) {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ArchiveSession moves one session into the archive namespace.
func (m *MemoryStore) ArchiveSession(_ context.Context, id string) error {
	defer observe("archive", BackendMemory, time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return ErrNotInitialized
	}
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.archive[id] = s
	delete(m.sessions, id)
	return nil
}

// ArchiveOldSessions archives everything started before now minus the
// threshold.
func (m *MemoryStore) ArchiveOldSessions(_ context.Context, olderThan time.Duration) (int, error) {
	defer observe("archive_old", BackendMemory, time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return 0, ErrNotInitialized
	}
	cutoff := time.Now().Add(-olderThan)
	moved := 0
	for id, s := range m.sessions {
		if s.StartAt.Before(cutoff) {
			m.archive[id] = s
			delete(m.sessions, id)
			moved++
		}
	}
	return moved, nil
}

// Clear drops all sessions and archive records.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return ErrNotInitialized
	}
	m.sessions = make(map[string]*model.Session)
	m.archive = make(map[string]*model.Session)
	return nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error { return nil }

// ArchivedCount reports the archive size, for tests and diagnostics.
func (m *MemoryStore) ArchivedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.archive)
}
