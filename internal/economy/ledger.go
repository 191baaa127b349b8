// Package economy keeps the coin ledger: referral credits with one-time tier
// rewards, the daily login bonus, the cooldown-gated AI chat reward, and the
// first-contact welcome bonus. Every mutation is a single atomic update on
// the acting user's account record.
package economy

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/internal/storage"
)

const (
	// ReferralReward is credited to the referrer for each new referral.
	ReferralReward = 5
	// DailyReward is credited once per UTC calendar day.
	DailyReward = 5
	// AIReward is credited for chatting with the AI, at most once per cooldown.
	AIReward = 5
	// WelcomeReward is credited once on a user's first private message.
	WelcomeReward = 2
	// ConvertThreshold is the minimum balance eligible for conversion.
	ConvertThreshold = 100

	// AICooldown is the minimum time between AI chat rewards.
	AICooldown = 12 * time.Hour
)

// Tier is a referral-count threshold with a one-time reward.
type Tier struct {
	Referrals int
	Coins     uint64
	Badge     string
}

// Tiers lists the referral tiers in ascending order.
var Tiers = []Tier{
	{Referrals: 5, Coins: 50, Badge: "🥉"},
	{Referrals: 10, Coins: 150, Badge: "🥈"},
	{Referrals: 20, Coins: 500, Badge: "🥇"},
}

// Account is the durable economy record of one user.
type Account struct {
	Username       string   `json:"username,omitempty"`
	Coins          uint64   `json:"coins"`
	Referrals      []string `json:"referrals"`
	TiersGranted   []int    `json:"tiers_granted,omitempty"`
	ReferredBy     string   `json:"referred_by,omitempty"`
	LastDailyBonus string   `json:"last_daily_bonus,omitempty"`
	LastAIReward   int64    `json:"last_ai_reward,omitempty"`
	Welcomed       bool     `json:"welcomed,omitempty"`
}

func (a Account) tierGranted(tier int) bool {
	for _, t := range a.TiersGranted {
		if t == tier {
			return true
		}
	}
	return false
}

func (a Account) referred(userID string) bool {
	for _, id := range a.Referrals {
		if id == userID {
			return true
		}
	}
	return false
}

// ReferralCredit reports the outcome of one referral credit.
type ReferralCredit struct {
	Credited bool
	Total    int
	Balance  uint64
	Unlocked []Tier
}

// Ranked is one row of the referral leaderboard.
type Ranked struct {
	UserID    string
	Username  string
	Coins     uint64
	Referrals int
}

// Ledger performs coin accounting against the store.
type Ledger struct {
	accounts *storage.Bucket[Account]
	now      func() time.Time
}

// NewLedger binds the economy ledger to its bucket.
func NewLedger(s *storage.Store) *Ledger {
	return &Ledger{
		accounts: storage.NewBucket[Account](s, "economy"),
		now:      time.Now,
	}
}

// errClaimed aborts the claim update without writing anything.
var errClaimed = errors.New("economy: referral already claimed")

// CreditReferral credits referrerID for bringing in newUserID. Self-referrals
// and users already claimed by any referrer are silent no-ops. The claim is
// written on the referred user's own record first, so a user can appear in at
// most one referrer's set even when two /start deep links race; when the
// credit itself fails the claim is released again.
func (l *Ledger) CreditReferral(referrerID, newUserID string) (ReferralCredit, error) {
	var res ReferralCredit
	if referrerID == "" || newUserID == "" || referrerID == newUserID {
		return res, nil
	}

	_, err := l.accounts.Update(newUserID, func(rec Account, found bool) (Account, error) {
		if rec.ReferredBy != "" {
			return rec, errClaimed
		}
		rec.ReferredBy = referrerID
		return rec, nil
	})
	if errors.Is(err, errClaimed) {
		return res, nil
	}
	if err != nil {
		return res, err
	}

	after, err := l.accounts.Update(referrerID, func(rec Account, found bool) (Account, error) {
		if rec.referred(newUserID) {
			return rec, errClaimed
		}
		rec.Referrals = append(rec.Referrals, newUserID)
		rec.Coins += ReferralReward

		total := len(rec.Referrals)
		for _, tier := range Tiers {
			if total >= tier.Referrals && !rec.tierGranted(tier.Referrals) {
				rec.TiersGranted = append(rec.TiersGranted, tier.Referrals)
				rec.Coins += tier.Coins
				res.Unlocked = append(res.Unlocked, tier)
			}
		}
		return rec, nil
	})
	if errors.Is(err, errClaimed) {
		res.Unlocked = nil
		return ReferralCredit{}, nil
	}
	if err != nil {
		l.releaseClaim(referrerID, newUserID)
		return ReferralCredit{}, err
	}

	res.Credited = true
	res.Total = len(after.Referrals)
	res.Balance = after.Coins
	return res, nil
}

// releaseClaim undoes the ReferredBy claim when crediting the referrer
// failed, so a retried /start can still credit. Without it the claim would
// survive as a referral that never pays out.
func (l *Ledger) releaseClaim(referrerID, newUserID string) {
	_, err := l.accounts.Update(newUserID, func(rec Account, found bool) (Account, error) {
		if rec.ReferredBy == referrerID {
			rec.ReferredBy = ""
		}
		return rec, nil
	})
	if err != nil {
		logger.Warn(logger.Background(), "eco", "eco.referral.release.fail",
			slog.String("user_id", newUserID),
			slog.String("err", err.Error()),
		)
	}
}

// GrantDailyBonus credits the daily login bonus at most once per UTC day.
func (l *Ledger) GrantDailyBonus(userID string) (granted bool, balance uint64, err error) {
	today := l.now().UTC().Format(time.DateOnly)
	after, err := l.accounts.Update(userID, func(rec Account, found bool) (Account, error) {
		if rec.LastDailyBonus == today {
			return rec, nil
		}
		rec.LastDailyBonus = today
		rec.Coins += DailyReward
		granted = true
		return rec, nil
	})
	if err != nil {
		return false, 0, err
	}
	return granted, after.Coins, nil
}

// GrantAIReward credits the chat reward when the cooldown has elapsed.
// Remaining reports how long until the next reward when nothing was granted.
func (l *Ledger) GrantAIReward(userID string) (granted bool, remaining time.Duration, err error) {
	now := l.now()
	_, err = l.accounts.Update(userID, func(rec Account, found bool) (Account, error) {
		elapsed := now.Sub(time.Unix(rec.LastAIReward, 0))
		if rec.LastAIReward > 0 && elapsed < AICooldown {
			remaining = AICooldown - elapsed
			return rec, nil
		}
		rec.LastAIReward = now.Unix()
		rec.Coins += AIReward
		granted = true
		return rec, nil
	})
	if err != nil {
		return false, 0, err
	}
	return granted, remaining, nil
}

// FirstContact creates the account with the welcome bonus on the very first
// private message. Subsequent calls only refresh the cached username.
func (l *Ledger) FirstContact(userID, username string) (welcomed bool, err error) {
	_, err = l.accounts.Update(userID, func(rec Account, found bool) (Account, error) {
		if username != "" {
			rec.Username = username
		}
		if rec.Welcomed {
			return rec, nil
		}
		rec.Welcomed = true
		rec.Coins += WelcomeReward
		welcomed = true
		return rec, nil
	})
	if err != nil {
		return false, err
	}
	return welcomed, nil
}

// Touch refreshes the cached username without touching balances.
func (l *Ledger) Touch(userID, username string) error {
	if username == "" {
		return nil
	}
	_, err := l.accounts.Update(userID, func(rec Account, found bool) (Account, error) {
		rec.Username = username
		return rec, nil
	})
	return err
}

// Account returns the user's economy record, zero-valued when absent.
func (l *Ledger) Account(userID string) (Account, error) {
	rec, _, err := l.accounts.Get(userID)
	return rec, err
}

// ConvertEligible reports whether the balance can be converted.
func (l *Ledger) ConvertEligible(userID string) (balance uint64, eligible bool, err error) {
	rec, _, err := l.accounts.Get(userID)
	if err != nil {
		return 0, false, err
	}
	return rec.Coins, rec.Coins >= ConvertThreshold, nil
}

// FindByUsername resolves a cached username to its user key. The scan is
// eventually consistent, which is fine for admin lookups.
func (l *Ledger) FindByUsername(username string) (string, bool, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", false, nil
	}
	all, err := l.accounts.All()
	if err != nil {
		return "", false, err
	}
	for id, rec := range all {
		if strings.EqualFold(rec.Username, username) {
			return id, true, nil
		}
	}
	return "", false, nil
}

// TopReferrers ranks accounts by balance. Ties break by referral count, then
// by user key, so the ordering is deterministic. Accounts that never earned
// a coin are skipped.
func (l *Ledger) TopReferrers(n int) ([]Ranked, error) {
	all, err := l.accounts.All()
	if err != nil {
		return nil, err
	}
	ranked := make([]Ranked, 0, len(all))
	for id, rec := range all {
		if rec.Coins == 0 {
			continue
		}
		ranked = append(ranked, Ranked{
			UserID:    id,
			Username:  rec.Username,
			Coins:     rec.Coins,
			Referrals: len(rec.Referrals),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Coins != ranked[j].Coins {
			return ranked[i].Coins > ranked[j].Coins
		}
		if ranked[i].Referrals != ranked[j].Referrals {
			return ranked[i].Referrals > ranked[j].Referrals
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
