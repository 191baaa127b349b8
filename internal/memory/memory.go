// Package memory keeps a short rolling transcript per user that is fed back
// into AI prompts so replies stay on topic.
package memory

import (
	"strings"

	"github.com/kariosv/collinsbot/internal/storage"
)

// Depth is how many recent messages are kept per user.
const Depth = 5

type transcript struct {
	Messages []string `json:"messages"`
}

// Log stores rolling transcripts in the store.
type Log struct {
	transcripts *storage.Bucket[transcript]
}

// NewLog binds the memory log to its bucket.
func NewLog(s *storage.Store) *Log {
	return &Log{transcripts: storage.NewBucket[transcript](s, "memory")}
}

// Remember appends a message to the user's transcript, dropping the oldest
// entry past the depth limit. Commands and empty messages are ignored.
func (l *Log) Remember(userID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}
	_, err := l.transcripts.Update(userID, func(rec transcript, found bool) (transcript, error) {
		rec.Messages = append(rec.Messages, text)
		if len(rec.Messages) > Depth {
			rec.Messages = rec.Messages[len(rec.Messages)-Depth:]
		}
		return rec, nil
	})
	return err
}

// Recall returns the user's transcript, oldest first.
func (l *Log) Recall(userID string) ([]string, error) {
	rec, _, err := l.transcripts.Get(userID)
	if err != nil {
		return nil, err
	}
	return rec.Messages, nil
}

// Wipe deletes the user's transcript and reports whether one existed.
func (l *Log) Wipe(userID string) (bool, error) {
	_, found, err := l.transcripts.Get(userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return true, l.transcripts.Delete(userID)
}

// Count reports how many users have a transcript.
func (l *Log) Count() (int, error) {
	keys, err := l.transcripts.Keys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
