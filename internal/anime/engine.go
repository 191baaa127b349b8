// Package anime implements the collectible squad game: searching verses for
// random characters, recruiting them through a short-lived offer, training on
// a cooldown, and ranking squads by strength.
package anime

import (
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/internal/storage"
)

const (
	// SquadCap is the maximum squad size.
	SquadCap = 5
	// TrainLevels is how many levels each character gains per training.
	TrainLevels = 2
	// TrainCooldown is the minimum time between trainings.
	TrainCooldown = time.Hour
	// OfferTTL is how long a recruit offer stays open.
	OfferTTL = 2 * time.Minute

	statMin = 30
	statMax = 60
)

var (
	// ErrUnknownVerse is reported for a verse not in the catalog.
	ErrUnknownVerse = errors.New("anime: unknown verse")
	// ErrNoOffer is reported when accepting or rejecting without a live offer.
	ErrNoOffer = errors.New("anime: no pending offer")
	// ErrSquadFull is reported when recruiting past the squad cap.
	ErrSquadFull = errors.New("anime: squad is full")
	// ErrEmptySquad is reported when training with no characters.
	ErrEmptySquad = errors.New("anime: squad is empty")
	// ErrTrainCooldown is reported when training before the cooldown elapses.
	ErrTrainCooldown = errors.New("anime: training on cooldown")
)

// Stats are rolled once at recruitment and never change.
type Stats struct {
	Attack int `json:"attack"`
	Speed  int `json:"speed"`
	Chakra int `json:"chakra"`
}

// Character is one squad member.
type Character struct {
	Name   string `json:"name"`
	Verse  string `json:"verse"`
	Rarity string `json:"rarity"`
	Level  int    `json:"level"`
	Stats  Stats  `json:"stats"`
}

// Strength is the character's contribution to squad strength.
func (c Character) Strength() int {
	return c.Level + rarityBonus[c.Rarity]
}

// SquadRecord is the durable squad state of one user.
type SquadRecord struct {
	Characters []Character `json:"characters"`
	LastTrain  int64       `json:"last_train"`
}

// Strength sums the strength of every squad member.
func (r SquadRecord) Strength() int {
	total := 0
	for _, c := range r.Characters {
		total += c.Strength()
	}
	return total
}

// SquadRank is one row of the squad leaderboard.
type SquadRank struct {
	UserID     string
	Strength   int
	Characters []Character
}

type offer struct {
	character Character
	expires   time.Time
}

// Engine runs the squad game. Squads persist in the store; the single
// pending recruit offer per user is in-memory only, matching its short
// lifetime.
type Engine struct {
	squads *storage.Bucket[SquadRecord]
	now    func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	pending map[string]offer
}

// NewEngine binds the squad game to the store.
func NewEngine(s *storage.Store) *Engine {
	return &Engine{
		squads:  storage.NewBucket[SquadRecord](s, "anime"),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		pending: make(map[string]offer),
	}
}

// rollRarity draws Common/Rare/Legendary with 70/25/5 odds.
func rollRarity(roll int) string {
	switch {
	case roll < 70:
		return RarityCommon
	case roll < 95:
		return RarityRare
	default:
		return RarityLegendary
	}
}

// Search rolls a random character from the verse and opens a recruit offer.
// A new search replaces any previous offer for the same user.
func (e *Engine) Search(userID, verse string) (Character, error) {
	name, roster, ok := Roster(verse)
	if !ok {
		return Character{}, ErrUnknownVerse
	}

	e.mu.Lock()
	c := Character{
		Name:   roster[e.rng.Intn(len(roster))],
		Verse:  name,
		Rarity: rollRarity(e.rng.Intn(100)),
		Level:  1,
		Stats: Stats{
			Attack: statMin + e.rng.Intn(statMax-statMin+1),
			Speed:  statMin + e.rng.Intn(statMax-statMin+1),
			Chakra: statMin + e.rng.Intn(statMax-statMin+1),
		},
	}
	e.pending[userID] = offer{character: c, expires: e.now().Add(OfferTTL)}
	e.mu.Unlock()

	logger.Debug(logger.Background(), "anime", "anime.search",
		slog.String("user_id", userID),
		slog.String("verse", name),
		slog.String("rarity", c.Rarity),
	)
	return c, nil
}

// HasOffer reports whether the user has a live recruit offer. Expired offers
// are dropped on sight.
func (e *Engine) HasOffer(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.pending[userID]
	if !ok {
		return false
	}
	if e.now().After(o.expires) {
		delete(e.pending, userID)
		return false
	}
	return true
}

// takeOffer consumes the user's offer regardless of outcome.
func (e *Engine) takeOffer(userID string) (Character, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.pending[userID]
	if !ok {
		return Character{}, ErrNoOffer
	}
	delete(e.pending, userID)
	if e.now().After(o.expires) {
		return Character{}, ErrNoOffer
	}
	return o.character, nil
}

// Accept recruits the offered character. The cap check runs inside the
// record update, so concurrent accepts can never overfill a squad. The offer
// is consumed even when the squad turns out to be full.
func (e *Engine) Accept(userID string) (Character, error) {
	c, err := e.takeOffer(userID)
	if err != nil {
		return Character{}, err
	}
	_, err = e.squads.Update(userID, func(rec SquadRecord, found bool) (SquadRecord, error) {
		if len(rec.Characters) >= SquadCap {
			return rec, ErrSquadFull
		}
		rec.Characters = append(rec.Characters, c)
		return rec, nil
	})
	if err != nil {
		return Character{}, err
	}
	logger.Info(logger.Background(), "anime", "anime.recruit",
		slog.String("user_id", userID),
		slog.String("verse", c.Verse),
		slog.String("rarity", c.Rarity),
	)
	return c, nil
}

// Reject discards the offered character and returns it for the farewell
// message.
func (e *Engine) Reject(userID string) (Character, error) {
	return e.takeOffer(userID)
}

// Train levels up the whole squad, at most once per cooldown. remaining is
// the wait left when ErrTrainCooldown is returned.
func (e *Engine) Train(userID string) (trained int, remaining time.Duration, err error) {
	now := e.now()
	_, err = e.squads.Update(userID, func(rec SquadRecord, found bool) (SquadRecord, error) {
		if len(rec.Characters) == 0 {
			return rec, ErrEmptySquad
		}
		elapsed := now.Sub(time.Unix(rec.LastTrain, 0))
		if rec.LastTrain > 0 && elapsed < TrainCooldown {
			remaining = TrainCooldown - elapsed
			return rec, ErrTrainCooldown
		}
		for i := range rec.Characters {
			rec.Characters[i].Level += TrainLevels
		}
		rec.LastTrain = now.Unix()
		trained = len(rec.Characters)
		return rec, nil
	})
	if err != nil {
		return 0, remaining, err
	}
	return trained, 0, nil
}

// Remove drops the first squad member whose name matches, ignoring case.
func (e *Engine) Remove(userID, name string) (Character, bool, error) {
	var removed Character
	var ok bool
	_, err := e.squads.Update(userID, func(rec SquadRecord, found bool) (SquadRecord, error) {
		for i, c := range rec.Characters {
			if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
				removed, ok = c, true
				rec.Characters = append(rec.Characters[:i], rec.Characters[i+1:]...)
				break
			}
		}
		return rec, nil
	})
	if err != nil {
		return Character{}, false, err
	}
	return removed, ok, nil
}

// Squad returns the user's current squad.
func (e *Engine) Squad(userID string) ([]Character, error) {
	rec, _, err := e.squads.Get(userID)
	if err != nil {
		return nil, err
	}
	return rec.Characters, nil
}

// Leaderboard ranks non-empty squads by strength, strongest first, ties
// broken by user key.
func (e *Engine) Leaderboard(n int) ([]SquadRank, error) {
	all, err := e.squads.All()
	if err != nil {
		return nil, err
	}
	ranks := make([]SquadRank, 0, len(all))
	for id, rec := range all {
		if len(rec.Characters) == 0 {
			continue
		}
		ranks = append(ranks, SquadRank{
			UserID:     id,
			Strength:   rec.Strength(),
			Characters: rec.Characters,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Strength != ranks[j].Strength {
			return ranks[i].Strength > ranks[j].Strength
		}
		return ranks[i].UserID < ranks[j].UserID
	})
	if n > 0 && len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks, nil
}
