// Package reminder schedules one-shot reminders that survive restarts.
// Each reminder is persisted before its timer is armed and deleted after it
// fires; on startup every stored reminder is re-armed, firing immediately
// when its time already passed while the bot was down.
package reminder

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/internal/storage"
)

// Reminder is one scheduled notification.
type Reminder struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
	FireAt int64  `json:"fire_at"`
}

// Notifier delivers a fired reminder to its chat.
type Notifier func(chatID int64, text string)

// Scheduler owns the reminder timers.
type Scheduler struct {
	reminders *storage.Bucket[Reminder]
	notify    Notifier
	now       func() time.Time
	seq       atomic.Uint64

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler binds the scheduler to the store and the delivery callback.
func NewScheduler(s *storage.Store, notify Notifier) *Scheduler {
	return &Scheduler{
		reminders: storage.NewBucket[Reminder](s, "reminders"),
		notify:    notify,
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
	}
}

// Schedule persists a reminder and arms its timer.
func (s *Scheduler) Schedule(chatID int64, text string, in time.Duration) (string, error) {
	if in <= 0 {
		return "", fmt.Errorf("reminder: non-positive delay %v", in)
	}
	fireAt := s.now().Add(in)
	id := strconv.FormatInt(fireAt.UnixNano(), 10) + "-" + strconv.FormatUint(s.seq.Add(1), 10)

	rec := Reminder{ChatID: chatID, Text: text, FireAt: fireAt.Unix()}
	if err := s.reminders.Put(id, rec); err != nil {
		return "", err
	}
	s.arm(id, rec, in)

	logger.Info(logger.Background(), "rem", "reminder.set",
		slog.String("reminder_id", id),
		slog.Int64("chat_id", chatID),
		slog.Duration("duration", logger.RoundMS(in)),
	)
	return id, nil
}

// Rearm restores timers for every stored reminder. Overdue reminders fire
// right away.
func (s *Scheduler) Rearm() (int, error) {
	all, err := s.reminders.All()
	if err != nil {
		return 0, err
	}
	now := s.now()
	for id, rec := range all {
		delay := time.Unix(rec.FireAt, 0).Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.arm(id, rec, delay)
	}
	if len(all) > 0 {
		logger.Info(logger.Background(), "rem", "reminder.rearm",
			slog.Int("reminders", len(all)),
		)
	}
	return len(all), nil
}

// Pending reports how many reminders are stored.
func (s *Scheduler) Pending() (int, error) {
	keys, err := s.reminders.Keys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Stop cancels all armed timers without touching stored reminders, so they
// fire after the next Rearm.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) arm(id string, rec Reminder, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id, rec) })
}

func (s *Scheduler) fire(id string, rec Reminder) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	s.notify(rec.ChatID, rec.Text)
	if err := s.reminders.Delete(id); err != nil {
		logger.Warn(logger.Background(), "rem", "reminder.cleanup.fail",
			slog.String("reminder_id", id),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(logger.Background(), "rem", "reminder.fired",
		slog.String("reminder_id", id),
		slog.Int64("chat_id", rec.ChatID),
	)
}
