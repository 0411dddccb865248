package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransitionTableExhaustive checks every (from, to) pair against the
// documented lifecycle.
func TestTransitionTableExhaustive(t *testing.T) {
	allowed := map[[2]CampaignStatus]Action{
		{StatusDraft, StatusPending}:    ActionSubmit,
		{StatusPending, StatusActive}:   ActionApprove,
		{StatusPending, StatusPaused}:   ActionReject,
		{StatusActive, StatusPaused}:    ActionPause,
		{StatusPaused, StatusActive}:    ActionActivate,
		{StatusActive, StatusCompleted}: ActionComplete,
		{StatusPaused, StatusCompleted}: ActionComplete,
	}
	for _, from := range CampaignStatuses {
		for _, to := range CampaignStatuses {
			action, ok := Transition(from, to)
			want, legal := allowed[[2]CampaignStatus{from, to}]
			assert.Equal(t, legal, ok, "%s -> %s", from, to)
			if legal {
				assert.Equal(t, want, action, "%s -> %s", from, to)
				got, applied := Apply(from, want)
				assert.True(t, applied)
				assert.Equal(t, to, got)
			}
		}
	}
	assert.Empty(t, CampaignTransitions[StatusCompleted])
	assert.True(t, StatusCompleted.Terminal())
}

func TestSpend(t *testing.T) {
	c := Counters{Impressions: 2500, Clicks: 50}

	q, amount, err := PricingCPM.Spend(200, c)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), q)
	assert.Equal(t, Money(500), amount)

	q, amount, err = PricingFlat.Spend(500, Counters{Impressions: 1000, Clicks: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), q)
	assert.Equal(t, Money(500), amount)

	q, amount, err = PricingCPC.Spend(7, c)
	require.NoError(t, err)
	assert.Equal(t, int64(50), q)
	assert.Equal(t, Money(350), amount)

	_, _, err = PricingCPC.Spend(math.MaxInt64/2, Counters{Clicks: 3})
	assert.ErrorIs(t, err, ErrMoneyOverflow)
}

func TestMulDivRoundsHalfUp(t *testing.T) {
	for _, tc := range []struct {
		m    Money
		n, d int64
		want Money
	}{
		{1, 500, 1000, 1},
		{1, 499, 1000, 0},
		{5, 1, 0, 0},
		{-1, 500, 1000, 0},
	} {
		got, err := tc.m.MulDiv(tc.n, tc.d)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%d*%d/%d", tc.m, tc.n, tc.d)
	}
	big, err := Money(math.MaxInt32).MulDiv(math.MaxInt32, 1000)
	require.NoError(t, err)
	assert.Greater(t, int64(big), int64(0))
}

func TestMoneyOverflowIsReported(t *testing.T) {
	_, err := Money(1 << 62).MulDiv(4, 1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)

	_, err = Money(math.MaxInt64).Add(1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)
	_, err = Money(math.MinInt64).Add(-1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)

	_, err = Sum(math.MaxInt64/2, math.MaxInt64/2, 2)
	assert.ErrorIs(t, err, ErrMoneyOverflow)
	total, err := Sum(100, 250)
	require.NoError(t, err)
	assert.Equal(t, Money(350), total)
}

func TestCTRZeroImpressions(t *testing.T) {
	c := Counters{Clicks: 3}
	ctr := c.CTR()
	assert.Equal(t, float64(0), ctr)
	assert.False(t, math.IsNaN(ctr))
	assert.InDelta(t, 0.05, Counters{Impressions: 1000, Clicks: 50}.CTR(), 1e-12)
}

func TestParsers(t *testing.T) {
	st, ok := ParseSlotType("banner-bottom")
	require.True(t, ok)
	assert.Equal(t, SlotBannerBottom, st)

	_, ok = ParseSlotType("skyscraper")
	assert.False(t, ok)

	tier, ok := ParseTier("Gold")
	require.True(t, ok)
	assert.True(t, TierSilver.Less(tier))
	assert.True(t, tier.Less(TierPlatinum))
}

func TestCampaignOverlaps(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	c := Campaign{StartDate: &start, EndDate: &end}

	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, c.Overlaps(&before, &mid))
	assert.False(t, c.Overlaps(&after, nil))
	assert.False(t, c.Overlaps(nil, &before))
	assert.True(t, Campaign{}.Overlaps(&before, &after))
}

func TestPrincipalCanSee(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.CanSee("s1"))
	assert.True(t, Principal{Role: RoleSponsor, SponsorID: "s1"}.CanSee("s1"))
	assert.False(t, Principal{Role: RoleSponsor, SponsorID: "s1"}.CanSee("s2"))
	assert.False(t, Principal{Role: RoleSponsor}.CanSee(""))
}
