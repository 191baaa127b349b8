package economy

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	return NewLedger(s)
}

func TestCreditReferralBasic(t *testing.T) {
	l := newTestLedger(t)

	res, err := l.CreditReferral("100", "200")
	require.NoError(t, err)
	assert.True(t, res.Credited)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, uint64(ReferralReward), res.Balance)
	assert.Empty(t, res.Unlocked)

	referred, err := l.Account("200")
	require.NoError(t, err)
	assert.Equal(t, "100", referred.ReferredBy)
}

func TestCreditReferralIdempotent(t *testing.T) {
	l := newTestLedger(t)

	first, err := l.CreditReferral("100", "200")
	require.NoError(t, err)
	require.True(t, first.Credited)

	second, err := l.CreditReferral("100", "200")
	require.NoError(t, err)
	assert.False(t, second.Credited)

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(ReferralReward), acc.Coins)
	assert.Len(t, acc.Referrals, 1)
}

func TestCreditReferralSelfIsNoOp(t *testing.T) {
	l := newTestLedger(t)

	res, err := l.CreditReferral("100", "100")
	require.NoError(t, err)
	assert.False(t, res.Credited)

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Zero(t, acc.Coins)
}

func TestCreditReferralReleasesClaimWhenCreditFails(t *testing.T) {
	l := newTestLedger(t)

	// A key the store rejects makes the referrer-side write fail after the
	// claim was already persisted on the referred user's record.
	_, err := l.CreditReferral("bad/referrer", "200")
	require.Error(t, err)

	referred, err := l.Account("200")
	require.NoError(t, err)
	assert.Empty(t, referred.ReferredBy)

	res, err := l.CreditReferral("100", "200")
	require.NoError(t, err)
	assert.True(t, res.Credited)

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(ReferralReward), acc.Coins)
}

func TestCreditReferralUserBelongsToOneReferrer(t *testing.T) {
	l := newTestLedger(t)

	first, err := l.CreditReferral("100", "300")
	require.NoError(t, err)
	require.True(t, first.Credited)

	second, err := l.CreditReferral("200", "300")
	require.NoError(t, err)
	assert.False(t, second.Credited)

	other, err := l.Account("200")
	require.NoError(t, err)
	assert.Zero(t, other.Coins)
	assert.Empty(t, other.Referrals)
}

func TestFifthReferralUnlocksFirstTier(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 4; i++ {
		res, err := l.CreditReferral("100", fmt.Sprintf("20%d", i))
		require.NoError(t, err)
		require.True(t, res.Credited)
		require.Empty(t, res.Unlocked)
	}

	res, err := l.CreditReferral("100", "299")
	require.NoError(t, err)
	require.True(t, res.Credited)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, 5, res.Unlocked[0].Referrals)

	// 5 referrals at 5 coins each plus the 50-coin tier reward.
	assert.Equal(t, uint64(5*ReferralReward+50), res.Balance)
}

func TestTierGrantedOnlyOnce(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 6; i++ {
		res, err := l.CreditReferral("100", fmt.Sprintf("2%02d", i))
		require.NoError(t, err)
		require.True(t, res.Credited)
		if i == 5 {
			assert.Empty(t, res.Unlocked, "sixth referral must not re-grant the tier")
		}
	}

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(6*ReferralReward+50), acc.Coins)
	assert.Equal(t, []int{5}, acc.TiersGranted)
}

func TestDailyBonusOncePerDay(t *testing.T) {
	l := newTestLedger(t)
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	granted, balance, err := l.GrantDailyBonus("100")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, uint64(DailyReward), balance)

	granted, balance, err = l.GrantDailyBonus("100")
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, uint64(DailyReward), balance)

	l.now = func() time.Time { return day.Add(24 * time.Hour) }
	granted, balance, err = l.GrantDailyBonus("100")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, uint64(2*DailyReward), balance)
}

func TestAIRewardCooldown(t *testing.T) {
	l := newTestLedger(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	granted, _, err := l.GrantAIReward("100")
	require.NoError(t, err)
	assert.True(t, granted)

	l.now = func() time.Time { return start.Add(AICooldown - time.Minute) }
	granted, remaining, err := l.GrantAIReward("100")
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, time.Minute, remaining)

	l.now = func() time.Time { return start.Add(AICooldown) }
	granted, _, err = l.GrantAIReward("100")
	require.NoError(t, err)
	assert.True(t, granted)

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(2*AIReward), acc.Coins)
}

func TestFirstContactWelcomesOnce(t *testing.T) {
	l := newTestLedger(t)

	welcomed, err := l.FirstContact("100", "collins_fan")
	require.NoError(t, err)
	assert.True(t, welcomed)

	welcomed, err = l.FirstContact("100", "collins_fan")
	require.NoError(t, err)
	assert.False(t, welcomed)

	acc, err := l.Account("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(WelcomeReward), acc.Coins)
	assert.Equal(t, "collins_fan", acc.Username)
}

func TestConvertEligible(t *testing.T) {
	l := newTestLedger(t)

	balance, eligible, err := l.ConvertEligible("100")
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.False(t, eligible)

	for i := 0; i < 20; i++ {
		_, err := l.CreditReferral("100", fmt.Sprintf("5%02d", i))
		require.NoError(t, err)
	}

	balance, eligible, err = l.ConvertEligible("100")
	require.NoError(t, err)
	assert.True(t, eligible)
	assert.GreaterOrEqual(t, balance, uint64(ConvertThreshold))
}

func TestTopReferrersOrdering(t *testing.T) {
	l := newTestLedger(t)

	// a: 3 referrals (15 coins), b: 2 referrals + daily (15 coins), c: 1 referral.
	for i := 0; i < 3; i++ {
		_, err := l.CreditReferral("a", fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := l.CreditReferral("b", fmt.Sprintf("b%d", i))
		require.NoError(t, err)
	}
	_, _, err := l.GrantDailyBonus("b")
	require.NoError(t, err)
	_, err = l.CreditReferral("c", "c0")
	require.NoError(t, err)

	top, err := l.TopReferrers(10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].UserID, "ties on coins break by referral count")
	assert.Equal(t, "b", top[1].UserID)
	assert.Equal(t, "c", top[2].UserID)

	top, err = l.TopReferrers(2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
