package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/core/port/mocks"
)

func TestCreateCampaignValidation(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 500)
	start := base
	end := base.Add(-time.Hour)

	tests := []struct {
		name  string
		in    port.CampaignInput
		kind  apperr.Kind
		field string
	}{
		{"unknown sponsor", port.CampaignInput{Name: "x", SponsorID: "nope"}, apperr.KindValidation, "sponsorId"},
		{"unknown slot", port.CampaignInput{Name: "x", SponsorID: acme.ID, SlotIDs: []string{"nope"}}, apperr.KindValidation, "slotIds"},
		{"duplicate slot", port.CampaignInput{Name: "x", SponsorID: acme.ID, SlotIDs: []string{slot.ID, slot.ID}}, apperr.KindValidation, "slotIds"},
		{"end before start", port.CampaignInput{Name: "x", SponsorID: acme.ID, StartDate: &start, EndDate: &end}, apperr.KindValidation, "endDate"},
		{"non-positive cap", port.CampaignInput{Name: "x", SponsorID: acme.ID, ImpressionCap: ptr(int64(0))}, apperr.KindValidation, "impressionCap"},
		{"pending without creative", port.CampaignInput{Name: "x", SponsorID: acme.ID, SlotIDs: []string{slot.ID}, Status: "pending"}, apperr.KindValidation, "creativeUrl"},
		{"unknown status", port.CampaignInput{Name: "x", SponsorID: acme.ID, Status: "rejected"}, apperr.KindValidation, "status"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.campaigns.CreateCampaign(adminCtx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.field, e.Fields["field"])
		})
	}
}

func TestCreateCampaignSnapshotsSlotPrice(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	a, b := f.slot(t, 500), f.slot(t, 250)

	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{a.ID, b.ID}})
	assert.Equal(t, domain.StatusDraft, c.Status)
	assert.Equal(t, domain.Money(750), c.PriceAmount)

	_, err := f.slots.UpdateSlot(adminCtx, a.ID, port.SlotPatch{PriceAmount: ptr(int64(9000))})
	require.NoError(t, err)
	got, err := f.campaigns.GetCampaign(adminCtx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(750), got.PriceAmount)
}

func TestSponsorLockedSlotConflicts(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	other := f.sponsor(t, "globex")
	slot, err := f.slots.CreateSlot(adminCtx, port.SlotInput{
		Type: "ticker", DurationSec: 5, PriceAmount: 100, SponsorLock: &acme.ID,
	})
	require.NoError(t, err)

	_, err = f.campaigns.CreateCampaign(adminCtx, port.CampaignInput{Name: "x", SponsorID: other.ID, SlotIDs: []string{slot.ID}})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "locked to a different sponsor")

	f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}})
}

func TestUpdateCampaignRejectsIllegalTransition(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}})

	_, err := f.campaigns.UpdateCampaign(adminCtx, c.ID, port.CampaignPatch{Status: ptr("active")})
	require.Error(t, err)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindInvalidState, e.Kind)
	assert.Equal(t, "draft", e.Fields["current"])
	assert.Equal(t, "active", e.Fields["requested"])

	got, err := f.campaigns.UpdateCampaign(adminCtx, c.ID, port.CampaignPatch{Status: ptr("pending"), Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(1), got.Version)

	same, err := f.campaigns.UpdateCampaign(adminCtx, c.ID, port.CampaignPatch{Status: ptr("pending")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, same.Status)
}

func TestSubmitRequiresSlotAndCreative(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	c, err := f.campaigns.CreateCampaign(adminCtx, port.CampaignInput{Name: "bare", SponsorID: acme.ID})
	require.NoError(t, err)

	_, err = f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionSubmit)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionApprove)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestConcurrentApproveReject(t *testing.T) {
	for range 20 {
		f := newFixture(t, fixtureDeps{})
		acme := f.sponsor(t, "acme")
		c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}, Status: "pending"})

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, action := range []domain.Action{domain.ActionApprove, domain.ActionReject} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.campaigns.TransitionCampaign(adminCtx, c.ID, action)
			}()
		}
		wg.Wait()

		var ok, invalid int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case apperr.KindOf(err) == apperr.KindInvalidState:
				invalid++
			}
		}
		require.Equal(t, 1, ok, "errors: %v", errs)
		require.Equal(t, 1, invalid)
	}
}

func TestRejectFlagsForReview(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}, Status: "pending"})

	rejected, err := f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, rejected.Status)
	assert.True(t, rejected.NeedsReview)

	stored, err := f.campaigns.GetCampaign(adminCtx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.NeedsReview, "the flag is persisted")

	paused, err := f.campaigns.UpdateCampaign(adminCtx, c.ID, port.CampaignPatch{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.True(t, paused.NeedsReview, "unrelated edits keep the flag")

	active, err := f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionActivate)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, active.Status)
	assert.False(t, active.NeedsReview)
}

func TestAdminClearsReviewFlag(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 100)
	theirs := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})

	_, err := f.slots.UpdateSlot(adminCtx, slot.ID, port.SlotPatch{SponsorLock: &acme.ID})
	require.NoError(t, err)
	flagged, err := f.campaigns.GetCampaign(adminCtx, theirs.ID)
	require.NoError(t, err)
	require.True(t, flagged.NeedsReview)
	assert.Equal(t, domain.StatusActive, flagged.Status)

	cleared, err := f.campaigns.UpdateCampaign(adminCtx, theirs.ID, port.CampaignPatch{NeedsReview: ptr(false)})
	require.NoError(t, err)
	assert.False(t, cleared.NeedsReview)

	stored, err := f.campaigns.GetCampaign(adminCtx, theirs.ID)
	require.NoError(t, err)
	assert.False(t, stored.NeedsReview)
	assert.Equal(t, flagged.Version+1, stored.Version)
}

func TestDeleteCampaignRules(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 500)

	draft := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}})
	require.NoError(t, f.campaigns.DeleteCampaign(adminCtx, draft.ID))
	_, err := f.campaigns.GetCampaign(adminCtx, draft.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	billed := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	_, err = f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{billed.ID}})
	require.NoError(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(f.campaigns.DeleteCampaign(adminCtx, billed.ID)))

	done := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "completed"})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(f.campaigns.DeleteCampaign(adminCtx, done.ID)))
}

func TestCampaignMutationsPublish(t *testing.T) {
	pub := mocks.NewMockChangePublisher(t)
	pub.EXPECT().CampaignsChanged().Return().Times(2)

	f := newFixture(t, fixtureDeps{publisher: pub})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}, Status: "pending"})
	_, err := f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionApprove)
	require.NoError(t, err)

	_, err = f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionApprove)
	require.Error(t, err)
}

func TestSponsorPrincipalScoping(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 500)
	mine := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}})
	theirs := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}})

	ctx := sponsorCtx(acme.ID)
	list, err := f.campaigns.ListCampaigns(ctx, port.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = f.campaigns.ListCampaigns(ctx, port.CampaignFilter{SponsorID: globex.ID})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.campaigns.GetCampaign(ctx, theirs.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.campaigns.TransitionCampaign(ctx, mine.ID, domain.ActionSubmit)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCompleteExpiredAndRefreshTotals(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 500)
	start, end := base.Add(-48*time.Hour), base.Add(time.Hour)
	c := f.campaign(t, acme.ID, port.CampaignInput{
		SlotIDs: []string{slot.ID}, StartDate: &start, EndDate: &end,
		PricingModel: "cpm", PriceAmount: ptr(int64(200)), Status: "active",
	})
	f.record(t, c, domain.EventImpression, 10, base.Add(-time.Hour))

	n, err := f.campaigns.RefreshAllTotals(adminCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := f.campaigns.GetCampaign(adminCtx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.DeliveredImpressions)
	assert.Equal(t, domain.Money(2), got.TotalSpend)
	assert.Equal(t, c.Version, got.Version)

	n, err = f.campaigns.CompleteExpired(adminCtx, base)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.campaigns.CompleteExpired(adminCtx, end.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err = f.campaigns.GetCampaign(adminCtx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}
