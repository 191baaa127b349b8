// Package storage implements the durable record store backing every ledger
// and engine in the bot. Each bucket is a directory under the data root and
// each record is a single JSON file, replaced atomically on write. Updates
// are serialized per key, so read-modify-write cycles on the same record
// never interleave while different keys proceed in parallel.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kariosv/collinsbot/core/logger"
	"log/slog"
)

var (
	// ErrUnavailable is reported when the backing medium cannot be read or written.
	ErrUnavailable = errors.New("storage: store unavailable")
	// ErrBadKey is reported for keys that cannot form a safe file name.
	ErrBadKey = errors.New("storage: invalid key")
)

// Store is a file-backed key-value store rooted at a data directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open prepares the data directory and returns a ready Store.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: empty data directory")
	}
	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir %s: %w", dir, errors.Join(ErrUnavailable, err))
	}
	logger.Info(logger.Background(), "store", "store.open",
		slog.String("status", "ok"),
		slog.String("path", dir),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data root path.
func (s *Store) Dir() string {
	return s.dir
}

// keyLock returns the mutex that serializes updates for one record.
func (s *Store) keyLock(bucket, key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := bucket + "/" + key
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, "/\\") {
		return false
	}
	return !strings.HasPrefix(key, ".")
}

func (s *Store) recordPath(bucket, key string) string {
	return filepath.Join(s.dir, bucket, key+".json")
}

// readRaw loads the raw record bytes. Absent records return found=false.
func (s *Store) readRaw(bucket, key string) ([]byte, bool, error) {
	if !validKey(key) {
		return nil, false, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	data, err := os.ReadFile(s.recordPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: read %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	return data, true, nil
}

// writeRaw persists a record crash-safely: the payload lands in a temp file
// in the same directory and is renamed over the old record, so readers never
// observe a partially written file.
func (s *Store) writeRaw(bucket, key string, data []byte) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	dir := filepath.Join(s.dir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create bucket %s: %w", bucket, errors.Join(ErrUnavailable, err))
	}

	tmp, err := os.CreateTemp(dir, "."+key+".tmp-")
	if err != nil {
		return fmt.Errorf("storage: temp file for %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("storage: write %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("storage: sync %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: close %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: chmod %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	if err := os.Rename(tmpName, s.recordPath(bucket, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: replace %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	return nil
}

func (s *Store) deleteRaw(bucket, key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	err := os.Remove(s.recordPath(bucket, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s/%s: %w", bucket, key, errors.Join(ErrUnavailable, err))
	}
	return nil
}

// listKeys returns the keys of all records in a bucket. A bucket that was
// never written to is simply empty.
func (s *Store) listKeys(bucket string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", bucket, errors.Join(ErrUnavailable, err))
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}
