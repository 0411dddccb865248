package usecase

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/core/port/mocks"
)

// TestFlatCampaignLifecycle walks a gold sponsor from slot booking to a
// paid invoice.
func TestFlatCampaignLifecycle(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "Acme")
	assert.Equal(t, domain.TierGold, acme.Tier)
	slot := f.slot(t, 500)
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "pending"})
	require.Equal(t, domain.StatusPending, c.Status)

	c, err := f.campaigns.TransitionCampaign(adminCtx, c.ID, domain.ActionApprove)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, c.Status)

	f.record(t, c, domain.EventImpression, 1000, time.Time{})
	f.record(t, c, domain.EventClick, 50, time.Time{})

	sum, err := f.analytics.Summarize(adminCtx, port.AnalyticsFilter{CampaignID: c.ID}, port.DateRange{From: base.Add(-time.Hour), To: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), sum.Impressions)
	assert.Equal(t, int64(50), sum.Clicks)
	assert.InDelta(t, 0.05, sum.CTR, 1e-12)

	inv, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.Money(500), inv.Total)
	assert.Equal(t, domain.InvoiceDraft, inv.Status)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, int64(1), inv.Lines[0].Quantity)

	paid, err := f.billing.MarkPaid(adminCtx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.billing.MarkPaid(adminCtx, inv.ID)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindInvalidState, e.Kind)
	assert.Equal(t, "paid", e.Fields["current"])
}

func TestCPMInvoiceTotal(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 0)
	c := f.campaign(t, acme.ID, port.CampaignInput{
		SlotIDs: []string{slot.ID}, PricingModel: "cpm", PriceAmount: ptr(int64(200)), Status: "active",
	})
	for _, n := range []int{1000, 1000, 500} {
		batch := make([]port.EventInput, n)
		for i := range batch {
			batch[i] = port.EventInput{Type: "impression", CampaignID: c.ID, SlotID: slot.ID}
		}
		res, err := f.analytics.RecordEvents(adminCtx, batch)
		require.NoError(t, err)
		require.Empty(t, res.Errors)
	}

	inv, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.Money(500), inv.Total)
	assert.Equal(t, int64(2500), inv.Lines[0].Quantity)
	assert.Equal(t, domain.Money(200), inv.Lines[0].Rate)

	f.record(t, c, domain.EventImpression, 1000, time.Time{})
	frozen, err := f.billing.GetInvoice(adminCtx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(500), frozen.Total)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 100)
	mine := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	theirs := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	past := base.Add(-time.Hour)

	tests := []struct {
		name string
		in   port.InvoiceInput
		kind apperr.Kind
	}{
		{"no campaigns", port.InvoiceInput{SponsorID: acme.ID}, apperr.KindValidation},
		{"unknown sponsor", port.InvoiceInput{SponsorID: "nope", CampaignIDs: []string{mine.ID}}, apperr.KindNotFound},
		{"unknown campaign", port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{"nope"}}, apperr.KindNotFound},
		{"foreign campaign", port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{theirs.ID}}, apperr.KindValidation},
		{"duplicate campaign", port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{mine.ID, mine.ID}}, apperr.KindValidation},
		{"past due date", port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{mine.ID}, DueDate: &past}, apperr.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.billing.CreateInvoice(adminCtx, tc.in)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}
}

func TestNoDoubleBilling(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 100)
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range results {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}
	assert.Equal(t, 1, created)

	open, err := f.billing.ListInvoices(adminCtx, port.InvoiceFilter{CampaignID: c.ID})
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = f.billing.MarkPaid(adminCtx, open[0].ID)
	require.NoError(t, err)
	_, err = f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "a flat fee is charged once")
}

func TestReinvoiceBillsOnlyNewDelivery(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 0)
	c := f.campaign(t, acme.ID, port.CampaignInput{
		SlotIDs: []string{slot.ID}, PricingModel: "cpm", PriceAmount: ptr(int64(200)), Status: "active",
	})
	f.record(t, c, domain.EventImpression, 2500, time.Time{})

	first, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.Money(500), first.Total)
	require.Len(t, first.Lines, 1)
	assert.Nil(t, first.Lines[0].BilledFrom)
	_, err = f.billing.MarkPaid(adminCtx, first.ID)
	require.NoError(t, err)

	_, err = f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "nothing delivered since the paid invoice")

	f.record(t, c, domain.EventImpression, 1000, time.Time{})
	second, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.Money(200), second.Total)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, int64(1000), second.Lines[0].Quantity)
	require.NotNil(t, second.Lines[0].BilledFrom)
	assert.Equal(t, first.Lines[0].BilledUntil, *second.Lines[0].BilledFrom)
	assert.True(t, second.Lines[0].BilledUntil.After(first.Lines[0].BilledUntil))
}

func TestInvoiceTotalOverflowIsRejected(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 0)
	c := f.campaign(t, acme.ID, port.CampaignInput{
		SlotIDs: []string{slot.ID}, PricingModel: "cpc", PriceAmount: ptr(int64(math.MaxInt64 / 2)), Status: "active",
	})
	f.record(t, c, domain.EventClick, 3, time.Time{})

	_, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	list, err := f.billing.ListInvoices(adminCtx, port.InvoiceFilter{CampaignID: c.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSweepOverdueNeverOverwritesPaid(t *testing.T) {
	reminders := mocks.NewMockReminderSender(t)
	reminders.EXPECT().
		SendInvoiceReminder(mock.Anything, mock.MatchedBy(func(inv domain.Invoice) bool {
			return inv.Status == domain.InvoiceOverdue
		}), mock.AnythingOfType("domain.Sponsor")).
		Return(nil).Once()

	f := newFixture(t, fixtureDeps{reminders: reminders})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 100)
	a := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	b := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	due := base.AddDate(0, 0, 1)

	late, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{a.ID}, DueDate: &due})
	require.NoError(t, err)
	settled, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{b.ID}, DueDate: &due})
	require.NoError(t, err)
	_, err = f.billing.MarkPaid(adminCtx, settled.ID)
	require.NoError(t, err)

	n, err := f.billing.SweepOverdue(adminCtx, due.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.billing.GetInvoice(adminCtx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceOverdue, got.Status)
	got, err = f.billing.GetInvoice(adminCtx, settled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, got.Status)

	paid, err := f.billing.MarkPaid(adminCtx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, paid.Status)

	n, err = f.billing.SweepOverdue(adminCtx, due.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSendInvoiceOnlyFromDraft(t *testing.T) {
	reminders := mocks.NewMockReminderSender(t)
	reminders.EXPECT().SendInvoiceReminder(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	f := newFixture(t, fixtureDeps{reminders: reminders})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 100).ID}, Status: "active"})
	inv, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{c.ID}})
	require.NoError(t, err)

	sent, err := f.billing.SendInvoice(adminCtx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceSent, sent.Status)

	_, err = f.billing.SendInvoice(adminCtx, inv.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestSponsorSeesOnlyOwnInvoices(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 100)
	a := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	b := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	_, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: acme.ID, CampaignIDs: []string{a.ID}})
	require.NoError(t, err)
	theirs, err := f.billing.CreateInvoice(adminCtx, port.InvoiceInput{SponsorID: globex.ID, CampaignIDs: []string{b.ID}})
	require.NoError(t, err)

	list, err := f.billing.ListInvoices(sponsorCtx(acme.ID), port.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, acme.ID, list[0].SponsorID)

	_, err = f.billing.GetInvoice(sponsorCtx(acme.ID), theirs.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.billing.MarkPaid(sponsorCtx(globex.ID), theirs.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
