package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kariosv/collinsbot/core/logger"
)

// Bucket provides typed access to one logical table of the store.
// The zero value is not usable; construct with NewBucket.
type Bucket[T any] struct {
	store *Store
	name  string
}

// NewBucket binds a record type to a named bucket.
func NewBucket[T any](s *Store, name string) *Bucket[T] {
	return &Bucket[T]{store: s, name: name}
}

// Name returns the bucket name.
func (b *Bucket[T]) Name() string {
	return b.name
}

// Get loads one record. found is false when the record does not exist.
func (b *Bucket[T]) Get(key string) (rec T, found bool, err error) {
	data, found, err := b.store.readRaw(b.name, key)
	if err != nil || !found {
		return rec, found, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		var zero T
		return zero, false, fmt.Errorf("storage: decode %s/%s: %w", b.name, key, err)
	}
	return rec, true, nil
}

// Put stores one record unconditionally.
func (b *Bucket[T]) Put(key string, rec T) error {
	lock := b.store.keyLock(b.name, key)
	lock.Lock()
	defer lock.Unlock()
	return b.write(key, rec)
}

// Update applies fn to the current record (zero value when absent) and
// persists the result. The read-modify-write cycle holds the key's lock for
// its full duration, so concurrent updates on the same key are serialized.
// When fn returns an error nothing is written and the error is returned
// unchanged; the record on disk is exactly as before the call.
func (b *Bucket[T]) Update(key string, fn func(rec T, found bool) (T, error)) (T, error) {
	var zero T
	lock := b.store.keyLock(b.name, key)
	lock.Lock()
	defer lock.Unlock()

	cur, found, err := b.Get(key)
	if err != nil {
		return zero, err
	}
	next, err := fn(cur, found)
	if err != nil {
		return zero, err
	}
	if err := b.write(key, next); err != nil {
		return zero, err
	}
	return next, nil
}

// Delete removes one record; deleting an absent record is a no-op.
func (b *Bucket[T]) Delete(key string) error {
	lock := b.store.keyLock(b.name, key)
	lock.Lock()
	defer lock.Unlock()
	return b.store.deleteRaw(b.name, key)
}

// Keys lists all record keys in the bucket.
func (b *Bucket[T]) Keys() ([]string, error) {
	return b.store.listKeys(b.name)
}

// All returns a snapshot of every record in the bucket. The snapshot is
// eventually consistent: records written while the scan runs may or may not
// be included, which is sufficient for display reads such as leaderboards.
func (b *Bucket[T]) All() (map[string]T, error) {
	keys, err := b.store.listKeys(b.name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(keys))
	for _, key := range keys {
		rec, found, err := b.Get(key)
		if err != nil {
			logger.Warn(logger.Background(), "store", "store.scan.skip",
				slog.String("bucket", b.name),
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
			continue
		}
		if found {
			out[key] = rec
		}
	}
	return out, nil
}

func (b *Bucket[T]) write(key string, rec T) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s/%s: %w", b.name, key, err)
	}
	return b.store.writeRaw(b.name, key, append(data, '\n'))
}
