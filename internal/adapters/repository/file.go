package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/pkg/metrics"
)

const (
	sessionExt = ".json"
	archiveDir = "archive"
	fileMode   = 0o644
	dirMode    = 0o755
)

// FileStore persists one JSON document per session under a root directory,
// with archived sessions in a subdirectory. Writes are synchronous; a mutex
// serializes multi-file operations.
type FileStore struct {
	root string
	mu   sync.Mutex
	init bool
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Initialize creates the root and archive directories.
func (f *FileStore) Initialize(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.root == "" {
		return fmt.Errorf("%w: file store needs a path", ErrBackendUnavailable)
	}
	if err := os.MkdirAll(filepath.Join(f.root, archiveDir), dirMode); err != nil {
		metrics.RecordStorageError(BackendFile)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	f.init = true
	return nil
}

func (f *FileStore) sessionPath(id string) string {
	return filepath.Join(f.root, id+sessionExt)
}

func (f *FileStore) archivePath(id string) string {
	return filepath.Join(f.root, archiveDir, id+sessionExt)
}

// SaveSession writes the session document.
func (f *FileStore) SaveSession(_ context.Context, s *model.Session) error {
	defer observe("save", BackendFile, time.Now())
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return ErrNotInitialized
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := os.WriteFile(f.sessionPath(s.ID), data, fileMode); err != nil {
		metrics.RecordStorageError(BackendFile)
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	return nil
}

// LoadSession reads one session document.
func (f *FileStore) LoadSession(_ context.Context, id string) (*model.Session, error) {
	defer observe("load", BackendFile, time.Now())
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return nil, ErrNotInitialized
	}
	return readSessionFile(f.sessionPath(id), id)
}

func readSessionFile(path, id string) (*model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		metrics.RecordStorageError(BackendFile)
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// DeleteSession removes one session document.
func (f *FileStore) DeleteSession(_ context.Context, id string) error {
	defer observe("delete", BackendFile, time.Now())
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return ErrNotInitialized
	}
	err := os.Remove(f.sessionPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// ListSessions scans the root directory and filters decoded summaries.
func (f *FileStore) ListSessions(_ context.Context, filter ListFilter) ([]SessionSummary, error) {
	defer observe("list", BackendFile, time.Now())
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return nil, ErrNotInitialized
	}
	entries, err := os.ReadDir(f.root)
	if err != nil {
		metrics.RecordStorageError(BackendFile)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	out := make([]SessionSummary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sessionExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), sessionExt)
		s, err := readSessionFile(filepath.Join(f.root, e.Name()), id)
		if err != nil {
			continue // skip unreadable documents
		}
		if sum := summarize(s); filter.Matches(sum) {
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

// ArchiveSession moves the document into the archive directory.
func (f *FileStore) ArchiveSession(_ context.Context, id string) error {
	defer observe("archive", BackendFile, time.Now())
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return ErrNotInitialized
	}
	return f.archiveLocked(id)
}

func (f *FileStore) archiveLocked(id string) error {
	err := os.Rename(f.sessionPath(id), f.archivePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		metrics.RecordStorageError(BackendFile)
	}
	return err
}

// ArchiveOldSessions moves every session older than the threshold.
func (f *FileStore) ArchiveOldSessions(ctx context.Context, olderThan time.Duration) (int, error) {
	defer observe("archive_old", BackendFile, time.Now())
	old, err := f.ListSessions(ctx, ListFilter{Until: time.Now().Add(-olderThan)})
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	moved := 0
	for _, sum := range old {
		if err := f.archiveLocked(sum.ID); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// Clear removes every session and archive document.
func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.init {
		return ErrNotInitialized
	}
	if err := os.RemoveAll(f.root); err != nil {
		metrics.RecordStorageError(BackendFile)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return os.MkdirAll(filepath.Join(f.root, archiveDir), dirMode)
}

// Close is a no-op; every operation syncs on return.
func (f *FileStore) Close() error { return nil }
