package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

func newTestState(t *testing.T, passphrase string) *State {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	return NewState(s, passphrase)
}

func TestBanUnbanIdempotent(t *testing.T) {
	m := newTestState(t, "")

	added, err := m.Ban("@Troll")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.Ban("troll")
	require.NoError(t, err)
	assert.False(t, added, "second ban of the same user is a no-op")

	banned, err := m.IsBanned("TROLL")
	require.NoError(t, err)
	assert.True(t, banned, "ban lookup is case-insensitive")

	removed, err := m.Unban("troll")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Unban("troll")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAdminsCannotBeBanned(t *testing.T) {
	m := newTestState(t, "hunter2")

	ok, err := m.Unlock("boss", "hunter2")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.Ban("boss")
	assert.ErrorIs(t, err, ErrAdminImmune)

	banned, err := m.IsBanned("boss")
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestUnlockRequiresPassphrase(t *testing.T) {
	m := newTestState(t, "hunter2")

	ok, err := m.Unlock("wannabe", "guess")
	require.NoError(t, err)
	assert.False(t, ok)

	admin, err := m.IsAdmin("wannabe")
	require.NoError(t, err)
	assert.False(t, admin)

	ok, err = m.Unlock("boss", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	admin, err = m.IsAdmin("Boss")
	require.NoError(t, err)
	assert.True(t, admin)
}

func TestUnlockDisabledWithoutPassphrase(t *testing.T) {
	m := newTestState(t, "")

	ok, err := m.Unlock("boss", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyIsMonotonic(t *testing.T) {
	m := newTestState(t, "")
	calls := 0
	member := func(ctx context.Context, userID string) (bool, error) {
		calls++
		return true, nil
	}

	ok, err := m.Verify(context.Background(), "100", member)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Verify(context.Background(), "100", member)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls, "verified users are never rechecked")
}

func TestVerifyNonMember(t *testing.T) {
	m := newTestState(t, "")
	notMember := func(ctx context.Context, userID string) (bool, error) { return false, nil }

	ok, err := m.Verify(context.Background(), "100", notMember)
	require.NoError(t, err)
	assert.False(t, ok)

	verified, err := m.IsVerified("100")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestVerifyCheckerFailure(t *testing.T) {
	m := newTestState(t, "")
	boom := errors.New("telegram down")
	failing := func(ctx context.Context, userID string) (bool, error) { return false, boom }

	_, err := m.Verify(context.Background(), "100", failing)
	assert.ErrorIs(t, err, boom)

	verified, err := m.IsVerified("100")
	require.NoError(t, err)
	assert.False(t, verified, "failed checks never mark anyone verified")
}

func TestLinkWarningsEscalateAndReset(t *testing.T) {
	m := newTestState(t, "")

	count, muted, err := m.WarnLink("-500", "100")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, muted)

	count, muted, err = m.WarnLink("-500", "100")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.False(t, muted)

	count, muted, err = m.WarnLink("-500", "100")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, muted)

	// After the mute the count starts over.
	count, muted, err = m.WarnLink("-500", "100")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, muted)
}

func TestLinkWarningsArePerChat(t *testing.T) {
	m := newTestState(t, "")

	_, _, err := m.WarnLink("-500", "100")
	require.NoError(t, err)
	_, _, err = m.WarnLink("-500", "100")
	require.NoError(t, err)

	count, muted, err := m.WarnLink("-600", "100")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "warnings in one chat do not leak into another")
	assert.False(t, muted)
}

func TestBanCheckerPredicate(t *testing.T) {
	m := newTestState(t, "")
	_, err := m.Ban("troll")
	require.NoError(t, err)

	banned := m.BanChecker()
	assert.True(t, banned("troll"))
	assert.False(t, banned("alice"))
}
