package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

type capture struct {
	mu    sync.Mutex
	fired []string
	ch    chan struct{}
}

func newCapture() *capture {
	return &capture{ch: make(chan struct{}, 16)}
}

func (c *capture) notify(chatID int64, text string) {
	c.mu.Lock()
	c.fired = append(c.fired, text)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *capture) wait(t *testing.T, n int) []string {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reminder %d of %d", i+1, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.fired))
	copy(out, c.fired)
	return out
}

func TestScheduleFiresAndDeletes(t *testing.T) {
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	cap := newCapture()
	sched := NewScheduler(s, cap.notify)
	defer sched.Stop()

	_, err = sched.Schedule(42, "drink water", 10*time.Millisecond)
	require.NoError(t, err)

	fired := cap.wait(t, 1)
	assert.Equal(t, []string{"drink water"}, fired)

	// Deletion happens right after delivery.
	require.Eventually(t, func() bool {
		n, err := sched.Pending()
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleRejectsNonPositiveDelay(t *testing.T) {
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	sched := NewScheduler(s, func(int64, string) {})
	defer sched.Stop()

	_, err = sched.Schedule(42, "nope", 0)
	assert.Error(t, err)
}

func TestRearmFiresOverdueReminders(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.Open(dir)
	require.NoError(t, err)

	// First scheduler persists but is stopped before the timer fires.
	first := NewScheduler(s, func(int64, string) { t.Error("must not fire after Stop") })
	_, err = first.Schedule(42, "overdue", 50*time.Millisecond)
	require.NoError(t, err)
	first.Stop()

	time.Sleep(80 * time.Millisecond)

	// Second scheduler re-arms from disk; the overdue reminder fires at once.
	s2, err := storage.Open(dir)
	require.NoError(t, err)
	cap := newCapture()
	second := NewScheduler(s2, cap.notify)
	defer second.Stop()

	n, err := second.Rearm()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fired := cap.wait(t, 1)
	assert.Equal(t, []string{"overdue"}, fired)
}

func TestPendingCountsStoredReminders(t *testing.T) {
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	sched := NewScheduler(s, func(int64, string) {})
	defer sched.Stop()

	_, err = sched.Schedule(1, "a", time.Hour)
	require.NoError(t, err)
	_, err = sched.Schedule(2, "b", time.Hour)
	require.NoError(t, err)

	n, err := sched.Pending()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
