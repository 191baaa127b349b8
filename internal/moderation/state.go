// Package moderation holds the bot's enforcement state: the ban list, the
// admin roster with its passphrase unlock, channel-membership verification,
// and per-chat link warnings that escalate to a mute.
package moderation

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/internal/storage"
)

const (
	// MuteDuration is how long a user stays muted after the final warning.
	MuteDuration = 24 * time.Hour
	// muteThreshold is the warning count that triggers the mute.
	muteThreshold = 3
)

// ErrAdminImmune is reported when a ban targets an admin.
var ErrAdminImmune = errors.New("moderation: admins cannot be banned")

// MembershipChecker reports whether a user is a member of the verification
// channel. It runs outside any store lock since it calls the Telegram API.
type MembershipChecker func(ctx context.Context, userID string) (bool, error)

type roster struct {
	Members []string `json:"members"`
}

func (r roster) has(name string) bool {
	for _, m := range r.Members {
		if m == name {
			return true
		}
	}
	return false
}

func (r roster) add(name string) roster {
	r.Members = append(r.Members, name)
	sort.Strings(r.Members)
	return r
}

func (r roster) remove(name string) roster {
	kept := r.Members[:0]
	for _, m := range r.Members {
		if m != name {
			kept = append(kept, m)
		}
	}
	r.Members = kept
	return r
}

// WarningRecord keeps link-warning counts for one chat, keyed by user ID.
type WarningRecord struct {
	Counts map[string]int `json:"counts"`
}

// State is the durable moderation state.
type State struct {
	rosters    *storage.Bucket[roster]
	warnings   *storage.Bucket[WarningRecord]
	passphrase string
}

// NewState binds moderation state to the store. passphrase guards the admin
// unlock flow; an empty passphrase disables it.
func NewState(s *storage.Store, passphrase string) *State {
	return &State{
		rosters:    storage.NewBucket[roster](s, "moderation"),
		warnings:   storage.NewBucket[WarningRecord](s, "warnings"),
		passphrase: passphrase,
	}
}

// normalizeUsername folds case and strips a leading @ so bans match however
// the name was typed.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// Ban adds a username to the ban list. Banning an admin fails with
// ErrAdminImmune; banning an already banned user reports added=false.
// The admin check runs inside the bans update, so an unlock that lands
// while the ban is in flight still wins.
func (m *State) Ban(username string) (added bool, err error) {
	name := normalizeUsername(username)
	if name == "" {
		return false, nil
	}
	_, err = m.rosters.Update("bans", func(rec roster, found bool) (roster, error) {
		admin, err := m.IsAdmin(name)
		if err != nil {
			return rec, err
		}
		if admin {
			return rec, ErrAdminImmune
		}
		if rec.has(name) {
			return rec, nil
		}
		added = true
		return rec.add(name), nil
	})
	if err != nil {
		return false, err
	}
	if added {
		logger.Info(logger.Background(), "mod", "mod.ban", slog.String("username", name))
	}
	return added, nil
}

// Unban removes a username from the ban list; unbanning a user who was not
// banned reports removed=false.
func (m *State) Unban(username string) (removed bool, err error) {
	name := normalizeUsername(username)
	if name == "" {
		return false, nil
	}
	_, err = m.rosters.Update("bans", func(rec roster, found bool) (roster, error) {
		if !rec.has(name) {
			return rec, nil
		}
		removed = true
		return rec.remove(name), nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		logger.Info(logger.Background(), "mod", "mod.unban", slog.String("username", name))
	}
	return removed, nil
}

// IsBanned reports whether the username is on the ban list. Admins are never
// considered banned.
func (m *State) IsBanned(username string) (bool, error) {
	name := normalizeUsername(username)
	if name == "" {
		return false, nil
	}
	if admin, err := m.IsAdmin(name); err != nil {
		return false, err
	} else if admin {
		return false, nil
	}
	rec, _, err := m.rosters.Get("bans")
	if err != nil {
		return false, err
	}
	return rec.has(name), nil
}

// BanChecker returns a plain predicate for callers that cannot carry an
// error. Store failures log and fail open, so a flaky disk never locks
// everyone out.
func (m *State) BanChecker() func(username string) bool {
	return func(username string) bool {
		banned, err := m.IsBanned(username)
		if err != nil {
			logger.Warn(logger.Background(), "mod", "mod.ban_check.fail",
				slog.String("username", normalizeUsername(username)),
				slog.String("err", err.Error()),
			)
			return false
		}
		return banned
	}
}

// BannedUsers lists the ban roster.
func (m *State) BannedUsers() ([]string, error) {
	rec, _, err := m.rosters.Get("bans")
	if err != nil {
		return nil, err
	}
	return rec.Members, nil
}

// Unlock grants admin rights when the passphrase matches. A wrong passphrase
// is not an error, just a refusal.
func (m *State) Unlock(username, passphrase string) (bool, error) {
	name := normalizeUsername(username)
	if name == "" || m.passphrase == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(passphrase), []byte(m.passphrase)) != 1 {
		logger.Warn(logger.Background(), "mod", "mod.unlock.denied", slog.String("username", name))
		return false, nil
	}
	_, err := m.rosters.Update("admins", func(rec roster, found bool) (roster, error) {
		if rec.has(name) {
			return rec, nil
		}
		return rec.add(name), nil
	})
	if err != nil {
		return false, err
	}
	logger.Info(logger.Background(), "mod", "mod.unlock", slog.String("username", name))
	return true, nil
}

// IsAdmin reports whether the username is on the admin roster.
func (m *State) IsAdmin(username string) (bool, error) {
	name := normalizeUsername(username)
	if name == "" {
		return false, nil
	}
	rec, _, err := m.rosters.Get("admins")
	if err != nil {
		return false, err
	}
	return rec.has(name), nil
}

// Admins lists the admin roster.
func (m *State) Admins() ([]string, error) {
	rec, _, err := m.rosters.Get("admins")
	if err != nil {
		return nil, err
	}
	return rec.Members, nil
}

// Verify marks the user verified when the membership check passes.
// Verification is monotonic: once recorded it is never rechecked.
func (m *State) Verify(ctx context.Context, userID string, check MembershipChecker) (bool, error) {
	verified, err := m.IsVerified(userID)
	if err != nil {
		return false, err
	}
	if verified {
		return true, nil
	}
	member, err := check(ctx, userID)
	if err != nil {
		return false, err
	}
	if !member {
		return false, nil
	}
	_, err = m.rosters.Update("verified", func(rec roster, found bool) (roster, error) {
		if rec.has(userID) {
			return rec, nil
		}
		return rec.add(userID), nil
	})
	if err != nil {
		return false, err
	}
	logger.Info(ctx, "mod", "mod.verified", slog.String("user_id", userID))
	return true, nil
}

// IsVerified reports whether the user already passed verification.
func (m *State) IsVerified(userID string) (bool, error) {
	rec, _, err := m.rosters.Get("verified")
	if err != nil {
		return false, err
	}
	return rec.has(userID), nil
}

// WarnLink records one link violation in a chat. The first two violations
// only raise the count; the third reports muted=true and resets the count so
// the cycle can start over after the mute expires.
func (m *State) WarnLink(chatID, userID string) (count int, muted bool, err error) {
	_, err = m.warnings.Update(chatID, func(rec WarningRecord, found bool) (WarningRecord, error) {
		if rec.Counts == nil {
			rec.Counts = make(map[string]int)
		}
		rec.Counts[userID]++
		count = rec.Counts[userID]
		if count >= muteThreshold {
			muted = true
			delete(rec.Counts, userID)
		}
		return rec, nil
	})
	if err != nil {
		return 0, false, err
	}
	logger.Info(logger.Background(), "mod", "mod.link_warning",
		slog.String("chat_id", chatID),
		slog.String("user_id", userID),
		slog.Int("warnings", count),
	)
	return count, muted, nil
}
