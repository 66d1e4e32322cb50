package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/pkg/metrics"
)

// Bucket names. Secondary indexes map "<key>|<id>" to the session id so
// range scans come back in key order.
var (
	bucketSessions  = []byte("sessions")
	bucketArchive   = []byte("archive")
	bucketIdxStart  = []byte("idx_start_time")
	bucketIdxArtist = []byte("idx_artist")
)

const boltOpenTimeout = time.Second

// BoltStore is the durable indexed backend. All mutations run inside a
// single bbolt transaction, so a crash never leaves a record without its
// index entries.
type BoltStore struct {
	path string
	db   *bolt.DB
}

// NewBoltStore creates a bolt store backed by the given database file.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

// Initialize opens the database and creates the buckets.
func (b *BoltStore) Initialize(_ context.Context) error {
	if b.path == "" {
		return fmt.Errorf("%w: bolt store needs a path", ErrBackendUnavailable)
	}
	db, err := bolt.Open(b.path, fileMode, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		metrics.RecordStorageError(BackendBolt)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSessions, bucketArchive, bucketIdxStart, bucketIdxArtist} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		metrics.RecordStorageError(BackendBolt)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	b.db = db
	return nil
}

// startKey is zero-padded unix nanoseconds so lexicographic cursor order is
// chronological order.
func startKey(s *model.Session) []byte {
	return []byte(fmt.Sprintf("%020d|%s", s.StartAt.UTC().UnixNano(), s.ID))
}

func artistKey(s *model.Session) []byte {
	return []byte(s.ArtistID + "|" + s.ID)
}

// SaveSession writes the record and both index entries in one transaction.
func (b *BoltStore) SaveSession(_ context.Context, s *model.Session) error {
	defer observe("save", BackendBolt, time.Now())
	if b.db == nil {
		return ErrNotInitialized
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		if err := dropIndexes(tx, s.ID); err != nil {
			return err
		}
		if err := tx.Bucket(bucketSessions).Put([]byte(s.ID), data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketIdxStart).Put(startKey(s), []byte(s.ID)); err != nil {
			return err
		}
		if s.ArtistID != "" {
			return tx.Bucket(bucketIdxArtist).Put(artistKey(s), []byte(s.ID))
		}
		return nil
	})
	if err != nil {
		metrics.RecordStorageError(BackendBolt)
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// dropIndexes removes any index entries pointing at id, using the stored
// record to reconstruct the keys.
func dropIndexes(tx *bolt.Tx, id string) error {
	data := tx.Bucket(bucketSessions).Get([]byte(id))
	if data == nil {
		return nil
	}
	var old model.Session
	if err := json.Unmarshal(data, &old); err != nil {
		return err
	}
	if err := tx.Bucket(bucketIdxStart).Delete(startKey(&old)); err != nil {
		return err
	}
	if old.ArtistID != "" {
		return tx.Bucket(bucketIdxArtist).Delete(artistKey(&old))
	}
	return nil
}

// LoadSession reads one record.
func (b *BoltStore) LoadSession(_ context.Context, id string) (*model.Session, error) {
	defer observe("load", BackendBolt, time.Now())
	if b.db == nil {
		return nil, ErrNotInitialized
	}
	var s *model.Session
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s = &model.Session{}
		return json.Unmarshal(data, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSession removes the record and its indexes.
func (b *BoltStore) DeleteSession(_ context.Context, id string) error {
	defer observe("delete", BackendBolt, time.Now())
	if b.db == nil {
		return ErrNotInitialized
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketSessions).Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := dropIndexes(tx, id); err != nil {
			return err
		}
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

// ListSessions walks the artist index when the filter names an artist,
// otherwise the start-time index.
func (b *BoltStore) ListSessions(_ context.Context, f ListFilter) ([]SessionSummary, error) {
	defer observe("list", BackendBolt, time.Now())
	if b.db == nil {
		return nil, ErrNotInitialized
	}
	var out []SessionSummary
	err := b.db.View(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(bucketSessions)
		add := func(id []byte) error {
			data := sessions.Get(id)
			if data == nil {
				return nil // index entry without record; skip
			}
			var s model.Session
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			if sum := summarize(&s); f.Matches(sum) {
				out = append(out, sum)
			}
			return nil
		}

		if f.ArtistID != "" {
			prefix := []byte(f.ArtistID + "|")
			c := tx.Bucket(bucketIdxArtist).Cursor()
			for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
				if err := add(id); err != nil {
					return err
				}
			}
			// The artist index is id-ordered; restore start-time order.
			sort.Slice(out, func(i, j int) bool {
				if !out[i].StartAt.Equal(out[j].StartAt) {
					return out[i].StartAt.Before(out[j].StartAt)
				}
				return out[i].ID < out[j].ID
			})
			return nil
		}

		c := tx.Bucket(bucketIdxStart).Cursor()
		for k, id := c.First(); k != nil; k, id = c.Next() {
			if err := add(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordStorageError(BackendBolt)
		return nil, err
	}
	return out, nil
}

// ArchiveSession moves the record into the archive bucket.
func (b *BoltStore) ArchiveSession(_ context.Context, id string) error {
	defer observe("archive", BackendBolt, time.Now())
	if b.db == nil {
		return ErrNotInitialized
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return archiveInTx(tx, id)
	})
}

func archiveInTx(tx *bolt.Tx, id string) error {
	data := tx.Bucket(bucketSessions).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := tx.Bucket(bucketArchive).Put([]byte(id), data); err != nil {
		return err
	}
	if err := dropIndexes(tx, id); err != nil {
		return err
	}
	return tx.Bucket(bucketSessions).Delete([]byte(id))
}

// ArchiveOldSessions scans the start-time index up to the cutoff and moves
// everything it finds, in a single transaction.
func (b *BoltStore) ArchiveOldSessions(_ context.Context, olderThan time.Duration) (int, error) {
	defer observe("archive_old", BackendBolt, time.Now())
	if b.db == nil {
		return 0, ErrNotInitialized
	}
	cutoff := []byte(fmt.Sprintf("%020d", time.Now().Add(-olderThan).UTC().UnixNano()))
	moved := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		var ids []string
		c := tx.Bucket(bucketIdxStart).Cursor()
		for k, id := c.First(); k != nil && bytes.Compare(k, cutoff) < 0; k, id = c.Next() {
			ids = append(ids, string(id))
		}
		for _, id := range ids {
			if err := archiveInTx(tx, id); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		metrics.RecordStorageError(BackendBolt)
		return 0, err
	}
	return moved, nil
}

// Clear drops and recreates every bucket.
func (b *BoltStore) Clear(_ context.Context) error {
	if b.db == nil {
		return ErrNotInitialized
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSessions, bucketArchive, bucketIdxStart, bucketIdxArtist} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database file.
func (b *BoltStore) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// ArchivedCount reports the archive bucket size, for tests and diagnostics.
func (b *BoltStore) ArchivedCount() (int, error) {
	if b.db == nil {
		return 0, ErrNotInitialized
	}
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketArchive).Stats().KeyN
		return nil
	})
	return n, err
}
