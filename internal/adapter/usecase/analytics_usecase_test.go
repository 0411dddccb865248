package usecase

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/adapter/memory"
	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/core/port/mocks"
)

func TestRecordEventValidation(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 500)
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})

	tests := []struct {
		name  string
		in    port.EventInput
		field string
	}{
		{"unknown type", port.EventInput{Type: "view", CampaignID: c.ID, SlotID: slot.ID}, "type"},
		{"unknown campaign", port.EventInput{Type: "impression", CampaignID: "nope", SlotID: slot.ID}, "campaignId"},
		{"slot outside campaign", port.EventInput{Type: "impression", CampaignID: c.ID, SlotID: "other"}, "slotId"},
		{"negative watch", port.EventInput{Type: "watch", CampaignID: c.ID, SlotID: slot.ID, WatchMs: -1}, "watchMs"},
		{"watch on click", port.EventInput{Type: "click", CampaignID: c.ID, SlotID: slot.ID, WatchMs: 10}, "watchMs"},
		{"future", port.EventInput{Type: "click", CampaignID: c.ID, SlotID: slot.ID, OccurredAt: base.Add(time.Hour)}, "occurredAt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.analytics.RecordEvent(adminCtx, tc.in)
			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tc.field, e.Fields["field"])
		})
	}

	e, err := f.analytics.RecordEvent(adminCtx, port.EventInput{Type: "watch", CampaignID: c.ID, SlotID: slot.ID, WatchMs: 1200})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, domain.EventWatch, e.Type)
}

func TestRecordEventsPartialAcceptance(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	slot := f.slot(t, 500)
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})

	res, err := f.analytics.RecordEvents(adminCtx, []port.EventInput{
		{Type: "impression", CampaignID: c.ID, SlotID: slot.ID},
		{Type: "impression", CampaignID: "missing", SlotID: slot.ID},
		{Type: "click", CampaignID: c.ID, SlotID: slot.ID},
	})
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)
	require.Contains(t, res.Errors, 1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(res.Errors[1]))

	_, err = f.analytics.RecordEvents(adminCtx, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSummarizeZeroImpressions(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	sum, err := f.analytics.Summarize(adminCtx, port.AnalyticsFilter{}, port.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, float64(0), sum.CTR)
	assert.Zero(t, sum.Impressions)

	_, err = f.analytics.Summarize(adminCtx, port.AnalyticsFilter{}, port.DateRange{From: base, To: base})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAnalyticsRangeIsBounded(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	points, err := f.analytics.TimeSeries(adminCtx, port.AnalyticsFilter{}, port.DateRange{From: from, To: from.AddDate(0, 0, 366)}, false)
	require.NoError(t, err)
	assert.Len(t, points, 366)

	_, err = f.analytics.TimeSeries(adminCtx, port.AnalyticsFilter{}, port.DateRange{From: from, To: from.AddDate(0, 0, 367)}, false)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var buf bytes.Buffer
	err = f.analytics.ExportCSV(adminCtx, &buf, port.AnalyticsFilter{}, port.DateRange{From: from.AddDate(-5, 0, 0), To: from})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, buf.Len())
}

func TestTimeSeriesMatchesSummarize(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 500)
	a := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	b := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})

	for day := 1; day <= 5; day++ {
		at := base.AddDate(0, 0, -day)
		f.record(t, a, domain.EventImpression, day, at)
		f.record(t, a, domain.EventClick, 1, at)
		f.record(t, b, domain.EventImpression, 7, at)
	}
	f.record(t, a, domain.EventImpression, 3, base.Add(-time.Minute))

	// partial first and last day, and the current day
	r := port.DateRange{From: base.AddDate(0, 0, -4).Add(-3 * time.Hour), To: base.Add(time.Hour)}
	for _, flt := range []port.AnalyticsFilter{{}, {SponsorID: acme.ID}, {CampaignID: b.ID}} {
		for range 2 {
			series, err := f.analytics.TimeSeries(adminCtx, flt, r, true)
			require.NoError(t, err)
			sum, err := f.analytics.Summarize(adminCtx, flt, r)
			require.NoError(t, err)

			var total domain.Counters
			for _, p := range series {
				total.Add(p.Counters)
				require.NotNil(t, p.CTR)
			}
			assert.Equal(t, sum.Counters, total, "filter %+v", flt)
		}
	}

	sum, err := f.analytics.Summarize(adminCtx, port.AnalyticsFilter{SponsorID: acme.ID}, r)
	require.NoError(t, err)
	assert.Equal(t, int64(4+3+2+1+3), sum.Impressions)
	assert.Equal(t, int64(4), sum.Clicks)
}

func TestRollupInvalidatedByNewEvents(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}, Status: "active"})
	past := base.AddDate(0, 0, -3)
	r := port.DateRange{From: domain.DayOf(base.AddDate(0, 0, -7)), To: domain.DayOf(base)}

	f.record(t, c, domain.EventImpression, 1, past)
	sum, err := f.analytics.Summarize(adminCtx, port.AnalyticsFilter{}, r)
	require.NoError(t, err)
	require.Equal(t, int64(1), sum.Impressions)

	f.record(t, c, domain.EventImpression, 1, past)
	sum, err = f.analytics.Summarize(adminCtx, port.AnalyticsFilter{}, r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Impressions)
}

func TestExportCSVIsStable(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	c := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{f.slot(t, 500).ID}, Status: "active"})
	f.record(t, c, domain.EventImpression, 2, base.AddDate(0, 0, -3))
	f.record(t, c, domain.EventClick, 1, base.AddDate(0, 0, -3))
	_, err := f.analytics.RecordEvent(adminCtx, port.EventInput{
		Type: "watch", CampaignID: c.ID, SlotID: c.SlotIDs[0], OccurredAt: base.AddDate(0, 0, -1), WatchMs: 4500,
	})
	require.NoError(t, err)

	r := port.DateRange{From: domain.DayOf(base.AddDate(0, 0, -3)), To: domain.DayOf(base)}
	var first, second bytes.Buffer
	require.NoError(t, f.analytics.ExportCSV(adminCtx, &first, port.AnalyticsFilter{}, r))
	require.NoError(t, f.analytics.ExportCSV(adminCtx, &second, port.AnalyticsFilter{}, r))

	want := "date,impressions,clicks,watchTimeMs\n" +
		"2026-03-07,2,1,0\n" +
		"2026-03-08,0,0,0\n" +
		"2026-03-09,0,0,4500\n"
	assert.Equal(t, want, first.String())
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestAnalyticsSponsorScope(t *testing.T) {
	f := newFixture(t, fixtureDeps{})
	acme := f.sponsor(t, "acme")
	globex := f.sponsor(t, "globex")
	slot := f.slot(t, 500)
	a := f.campaign(t, acme.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	b := f.campaign(t, globex.ID, port.CampaignInput{SlotIDs: []string{slot.ID}, Status: "active"})
	f.record(t, a, domain.EventImpression, 2, base.Add(-time.Hour))
	f.record(t, b, domain.EventImpression, 5, base.Add(-time.Hour))

	r := port.DateRange{From: base.Add(-2 * time.Hour), To: base.Add(time.Hour)}
	sum, err := f.analytics.Summarize(sponsorCtx(acme.ID), port.AnalyticsFilter{}, r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Impressions)

	_, err = f.analytics.Summarize(sponsorCtx(acme.ID), port.AnalyticsFilter{SponsorID: globex.ID}, r)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.analytics.Summarize(sponsorCtx(acme.ID), port.AnalyticsFilter{CampaignID: b.ID}, r)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSummarizeRetriesStorageErrors(t *testing.T) {
	events := mocks.NewMockEventRepository(t)
	uc := NewAnalyticsUseCase(events, memory.NewStore(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return base }),
		WithRetry(3, time.Millisecond),
	)
	r := port.DateRange{From: base.Add(-2 * time.Hour), To: base.Add(-time.Hour)}

	events.EXPECT().DailyCounts(mock.Anything, mock.Anything).
		Return(nil, apperr.Storage("daily counts", assert.AnError)).Once()
	events.EXPECT().DailyCounts(mock.Anything, mock.Anything).
		Return([]domain.DayCounters{{Day: domain.DayOf(base), CampaignID: "c1", Counters: domain.Counters{Impressions: 3, Clicks: 1}}}, nil).Once()

	sum, err := uc.Summarize(adminCtx, port.AnalyticsFilter{}, r)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Impressions)
	assert.InDelta(t, 1.0/3.0, sum.CTR, 1e-9)
}

func TestSummarizeDoesNotRetryOtherErrors(t *testing.T) {
	events := mocks.NewMockEventRepository(t)
	uc := NewAnalyticsUseCase(events, memory.NewStore(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return base }),
		WithRetry(5, time.Millisecond),
	)
	events.EXPECT().DailyCounts(mock.Anything, mock.Anything).
		Return(nil, apperr.Internal("daily counts", assert.AnError)).Once()

	_, err := uc.Summarize(adminCtx, port.AnalyticsFilter{}, port.DateRange{From: base.Add(-time.Hour), To: base})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
