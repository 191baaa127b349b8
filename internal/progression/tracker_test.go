package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

func newTestTracker(t *testing.T, banned func(string) bool) *Tracker {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	return NewTracker(s, banned)
}

func TestRecordActivityAccumulates(t *testing.T) {
	tr := newTestTracker(t, nil)

	p, err := tr.RecordMessage("100", "alice")
	require.NoError(t, err)
	assert.Equal(t, MessageXP, p.XP)
	assert.Equal(t, 1, p.Messages)

	p, err = tr.RecordCommand("100", "alice")
	require.NoError(t, err)
	assert.Equal(t, MessageXP+CommandXP, p.XP)
	assert.Equal(t, 1, p.Commands)
	assert.Equal(t, "alice", p.Username)
}

func TestLevelDerivation(t *testing.T) {
	assert.Equal(t, 0, Level(0))
	assert.Equal(t, 0, Level(99))
	assert.Equal(t, 1, Level(100))
	assert.Equal(t, 2, Level(250))
}

func TestBannedUserEarnsNothing(t *testing.T) {
	tr := newTestTracker(t, func(username string) bool { return username == "troll" })

	p, err := tr.RecordMessage("100", "troll")
	require.NoError(t, err)
	assert.Zero(t, p.XP)

	_, found, err := tr.Profile("100")
	require.NoError(t, err)
	assert.False(t, found, "no profile should be created for a banned user")
}

func TestLeaderboardOrderingAndExclusion(t *testing.T) {
	bans := map[string]bool{"troll": true}
	tr := newTestTracker(t, func(username string) bool { return bans[username] })

	for i := 0; i < 3; i++ {
		_, err := tr.RecordMessage("a", "alice")
		require.NoError(t, err)
	}
	_, err := tr.RecordMessage("b", "bob")
	require.NoError(t, err)
	// Same XP as b; tie must break by user key.
	_, err = tr.RecordMessage("c", "carol")
	require.NoError(t, err)
	_, err = tr.RecordMessage("d", "dave")
	require.NoError(t, err)

	// dave gets banned after earning XP; the board must hide him.
	bans["dave"] = true

	top, err := tr.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].UserID)
	assert.Equal(t, "b", top[1].UserID)
	assert.Equal(t, "c", top[2].UserID)

	top, err = tr.Leaderboard(1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestWipe(t *testing.T) {
	tr := newTestTracker(t, nil)
	_, err := tr.RecordMessage("a", "alice")
	require.NoError(t, err)
	_, err = tr.RecordMessage("b", "bob")
	require.NoError(t, err)

	removed, err := tr.Wipe("a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = tr.Wipe("a")
	require.NoError(t, err)
	assert.False(t, removed)

	top, err := tr.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "b", top[0].UserID)
}
