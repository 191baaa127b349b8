package anime

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	e := NewEngine(s)
	e.rng = rand.New(rand.NewSource(1))
	return e
}

func TestSearchRollsFromVerseRoster(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.Search("100", "naruto")
	require.NoError(t, err)
	assert.Equal(t, "Naruto", c.Verse, "verse lookup ignores case")
	_, roster, ok := Roster("Naruto")
	require.True(t, ok)
	assert.Contains(t, roster, c.Name)
	assert.Equal(t, 1, c.Level)
	assert.Contains(t, []string{RarityCommon, RarityRare, RarityLegendary}, c.Rarity)

	for _, stat := range []int{c.Stats.Attack, c.Stats.Speed, c.Stats.Chakra} {
		assert.GreaterOrEqual(t, stat, 30)
		assert.LessOrEqual(t, stat, 60)
	}
}

func TestSearchUnknownVerse(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Search("100", "Pokemon")
	assert.ErrorIs(t, err, ErrUnknownVerse)
	assert.False(t, e.HasOffer("100"))
}

func TestRarityOdds(t *testing.T) {
	assert.Equal(t, RarityCommon, rollRarity(0))
	assert.Equal(t, RarityCommon, rollRarity(69))
	assert.Equal(t, RarityRare, rollRarity(70))
	assert.Equal(t, RarityRare, rollRarity(94))
	assert.Equal(t, RarityLegendary, rollRarity(95))
	assert.Equal(t, RarityLegendary, rollRarity(99))
}

func TestAcceptRecruitsOfferedCharacter(t *testing.T) {
	e := newTestEngine(t)

	offered, err := e.Search("100", "DBZ")
	require.NoError(t, err)
	require.True(t, e.HasOffer("100"))

	recruited, err := e.Accept("100")
	require.NoError(t, err)
	assert.Equal(t, offered, recruited)
	assert.False(t, e.HasOffer("100"), "offer is consumed")

	squad, err := e.Squad("100")
	require.NoError(t, err)
	require.Len(t, squad, 1)
	assert.Equal(t, offered.Name, squad[0].Name)
}

func TestAcceptWithoutOffer(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Accept("100")
	assert.ErrorIs(t, err, ErrNoOffer)
}

func TestOfferExpires(t *testing.T) {
	e := newTestEngine(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return start }

	_, err := e.Search("100", "Bleach")
	require.NoError(t, err)

	e.now = func() time.Time { return start.Add(OfferTTL + time.Second) }
	assert.False(t, e.HasOffer("100"))
	_, err = e.Accept("100")
	assert.ErrorIs(t, err, ErrNoOffer)
}

func TestNewSearchReplacesOffer(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Search("100", "Naruto")
	require.NoError(t, err)
	second, err := e.Search("100", "One Piece")
	require.NoError(t, err)

	recruited, err := e.Accept("100")
	require.NoError(t, err)
	assert.Equal(t, second, recruited, "only the latest offer can be accepted")
}

func TestRejectDiscardsOffer(t *testing.T) {
	e := newTestEngine(t)

	offered, err := e.Search("100", "Naruto")
	require.NoError(t, err)

	rejected, err := e.Reject("100")
	require.NoError(t, err)
	assert.Equal(t, offered, rejected)

	squad, err := e.Squad("100")
	require.NoError(t, err)
	assert.Empty(t, squad)
}

func TestSquadCapEnforcedOnAccept(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < SquadCap; i++ {
		_, err := e.Search("100", "DBZ")
		require.NoError(t, err)
		_, err = e.Accept("100")
		require.NoError(t, err)
	}

	_, err := e.Search("100", "DBZ")
	require.NoError(t, err)
	_, err = e.Accept("100")
	assert.ErrorIs(t, err, ErrSquadFull)
	assert.False(t, e.HasOffer("100"), "offer is consumed even on a full squad")

	squad, err := e.Squad("100")
	require.NoError(t, err)
	assert.Len(t, squad, SquadCap)
}

func TestTrainCooldown(t *testing.T) {
	e := newTestEngine(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return start }

	_, err := e.Search("100", "Naruto")
	require.NoError(t, err)
	_, err = e.Accept("100")
	require.NoError(t, err)

	trained, _, err := e.Train("100")
	require.NoError(t, err)
	assert.Equal(t, 1, trained)

	squad, err := e.Squad("100")
	require.NoError(t, err)
	assert.Equal(t, 1+TrainLevels, squad[0].Level)

	_, remaining, err := e.Train("100")
	assert.ErrorIs(t, err, ErrTrainCooldown)
	assert.Equal(t, TrainCooldown, remaining)

	e.now = func() time.Time { return start.Add(TrainCooldown) }
	_, _, err = e.Train("100")
	require.NoError(t, err)

	squad, err = e.Squad("100")
	require.NoError(t, err)
	assert.Equal(t, 1+2*TrainLevels, squad[0].Level)
}

func TestTrainEmptySquad(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.Train("100")
	assert.ErrorIs(t, err, ErrEmptySquad)
}

func TestRemoveIsCaseInsensitive(t *testing.T) {
	e := newTestEngine(t)

	offered, err := e.Search("100", "One Piece")
	require.NoError(t, err)
	_, err = e.Accept("100")
	require.NoError(t, err)

	removed, ok, err := e.Remove("100", strings.ToUpper(offered.Name))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, offered.Name, removed.Name)

	squad, err := e.Squad("100")
	require.NoError(t, err)
	assert.Empty(t, squad)

	_, ok, err = e.Remove("100", offered.Name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStrengthFormula(t *testing.T) {
	rec := SquadRecord{Characters: []Character{
		{Name: "a", Rarity: RarityCommon, Level: 1},
		{Name: "b", Rarity: RarityRare, Level: 3},
		{Name: "c", Rarity: RarityLegendary, Level: 5},
	}}
	// (1+1) + (3+3) + (5+7)
	assert.Equal(t, 20, rec.Strength())
}

func TestLeaderboardOrdering(t *testing.T) {
	e := newTestEngine(t)

	recruit := func(userID string, times int) {
		for i := 0; i < times; i++ {
			_, err := e.Search(userID, "Naruto")
			require.NoError(t, err)
			_, err = e.Accept(userID)
			require.NoError(t, err)
		}
	}
	recruit("a", 2)
	recruit("b", 1)

	ranks, err := e.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.GreaterOrEqual(t, ranks[0].Strength, ranks[1].Strength)

	ranks, err = e.Leaderboard(1)
	require.NoError(t, err)
	assert.Len(t, ranks, 1)
}
