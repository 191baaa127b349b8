package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int `json:"n"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestBucketRoundtrip(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")

	_, found, err := b.Get("42")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Put("42", counter{N: 7}))

	rec, found, err := b.Get("42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, rec.N)
}

func TestUpdateCreatesRecord(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")

	rec, err := b.Update("u1", func(rec counter, found bool) (counter, error) {
		assert.False(t, found)
		rec.N++
		return rec, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.N)

	got, found, err := b.Get("u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, got.N)
}

func TestUpdateErrorLeavesRecordUntouched(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")
	require.NoError(t, b.Put("u1", counter{N: 3}))

	sentinel := errors.New("nope")
	_, err := b.Update("u1", func(rec counter, found bool) (counter, error) {
		rec.N = 999
		return rec, sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, found, err := b.Get("u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, got.N)
}

func TestConcurrentUpdatesSameKey(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := b.Update("shared", func(rec counter, found bool) (counter, error) {
				rec.N++
				return rec, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, found, err := b.Get("shared")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, workers, got.N)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")
	for i := 0; i < 10; i++ {
		_, err := b.Update("k", func(rec counter, found bool) (counter, error) {
			rec.N++
			return rec, nil
		})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(s.Dir(), "counters"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestKeysAndAll(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")
	require.NoError(t, b.Put("a", counter{N: 1}))
	require.NoError(t, b.Put("b", counter{N: 2}))

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	all, err := b.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, all["b"].N)
}

func TestEmptyBucketListsNothing(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "never_written")

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadKeyRejected(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")

	for _, key := range []string{"", "..", "a/b", ".hidden"} {
		err := b.Put(key, counter{})
		assert.ErrorIs(t, err, ErrBadKey, "key %q", key)
	}
}

func TestUnavailableMedium(t *testing.T) {
	s := openTestStore(t)
	// A plain file where the bucket directory should be makes writes fail.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "blocked"), []byte("x"), 0o644))

	b := NewBucket[counter](s, "blocked")
	err := b.Put("k", counter{N: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	b := NewBucket[counter](s, "counters")
	require.NoError(t, b.Put("k", counter{N: 1}))
	require.NoError(t, b.Delete("k"))
	require.NoError(t, b.Delete("k"))

	_, found, err := b.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}
