package app

import (
	"github.com/kariosv/collinsbot/internal/storage"
)

type chatList struct {
	ChatIDs []int64 `json:"chat_ids"`
}

// chatRegistry remembers every chat that ever started the bot so broadcasts
// can reach them later.
type chatRegistry struct {
	bucket *storage.Bucket[chatList]
}

func newChatRegistry(s *storage.Store) *chatRegistry {
	return &chatRegistry{bucket: storage.NewBucket[chatList](s, "chats")}
}

func (r *chatRegistry) Add(chatID int64) error {
	_, err := r.bucket.Update("registry", func(rec chatList, found bool) (chatList, error) {
		for _, id := range rec.ChatIDs {
			if id == chatID {
				return rec, nil
			}
		}
		rec.ChatIDs = append(rec.ChatIDs, chatID)
		return rec, nil
	})
	return err
}

func (r *chatRegistry) All() ([]int64, error) {
	rec, _, err := r.bucket.Get("registry")
	if err != nil {
		return nil, err
	}
	return rec.ChatIDs, nil
}
