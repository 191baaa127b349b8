// Package progression tracks per-user activity: XP earned from messages and
// commands, derived levels, and the XP leaderboard.
package progression

import (
	"sort"

	"github.com/kariosv/collinsbot/internal/storage"
)

const (
	// MessageXP is earned per plain text message.
	MessageXP = 5
	// CommandXP is earned per bot command.
	CommandXP = 10
	// LevelStep is the XP span of one level.
	LevelStep = 100
)

// Level derives the level from accumulated XP.
func Level(xp int) int {
	return xp / LevelStep
}

// Profile is the durable activity record of one user.
type Profile struct {
	Username string `json:"username,omitempty"`
	XP       int    `json:"xp"`
	Messages int    `json:"messages"`
	Commands int    `json:"commands"`
}

// Level derives the profile's level.
func (p Profile) Level() int {
	return Level(p.XP)
}

// Entry is one row of the XP leaderboard.
type Entry struct {
	UserID   string
	Username string
	XP       int
	Level    int
}

// Tracker records activity against the store. Banned users earn nothing;
// the ban check is injected so moderation stays a separate concern.
type Tracker struct {
	profiles *storage.Bucket[Profile]
	banned   func(username string) bool
}

// NewTracker binds the tracker to its bucket. banned may be nil when no
// moderation gate applies.
func NewTracker(s *storage.Store, banned func(username string) bool) *Tracker {
	if banned == nil {
		banned = func(string) bool { return false }
	}
	return &Tracker{
		profiles: storage.NewBucket[Profile](s, "progression"),
		banned:   banned,
	}
}

// RecordMessage awards message XP, creating the profile on first activity.
func (t *Tracker) RecordMessage(userID, username string) (Profile, error) {
	return t.record(userID, username, MessageXP, false)
}

// RecordCommand awards command XP.
func (t *Tracker) RecordCommand(userID, username string) (Profile, error) {
	return t.record(userID, username, CommandXP, true)
}

func (t *Tracker) record(userID, username string, xp int, command bool) (Profile, error) {
	if t.banned(username) {
		rec, _, err := t.profiles.Get(userID)
		return rec, err
	}
	return t.profiles.Update(userID, func(rec Profile, found bool) (Profile, error) {
		if username != "" {
			rec.Username = username
		}
		rec.XP += xp
		if command {
			rec.Commands++
		} else {
			rec.Messages++
		}
		return rec, nil
	})
}

// Profile returns a user's activity record.
func (t *Tracker) Profile(userID string) (Profile, bool, error) {
	return t.profiles.Get(userID)
}

// Leaderboard ranks users by XP, highest first, ties broken by user key.
// Banned users are omitted.
func (t *Tracker) Leaderboard(n int) ([]Entry, error) {
	all, err := t.profiles.All()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(all))
	for id, rec := range all {
		if t.banned(rec.Username) {
			continue
		}
		entries = append(entries, Entry{
			UserID:   id,
			Username: rec.Username,
			XP:       rec.XP,
			Level:    rec.Level(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Wipe deletes a user's profile and reports whether one existed.
func (t *Tracker) Wipe(userID string) (bool, error) {
	_, found, err := t.profiles.Get(userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return true, t.profiles.Delete(userID)
}
