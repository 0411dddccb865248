package usecase

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/metrics"
)

const (
	defaultRange  = 30 * 24 * time.Hour
	maxRange      = 366 * 24 * time.Hour
	maxFutureSkew = 5 * time.Minute
	maxBulkEvents = 1000
	rollupMaxDays = 400
	csvDateLayout = "2006-01-02"
)

// CSVHeader is the fixed column order of the analytics export.
var CSVHeader = []string{"date", "impressions", "clicks", "watchTimeMs"}

// AnalyticsUseCase appends delivery events to the ledger and aggregates it.
// Campaign cached totals are never read here.
type AnalyticsUseCase struct {
	events    port.EventRepository
	campaigns port.CampaignRepository
	rollup    *dayRollup
	opts      options
}

// NewAnalyticsUseCase wires the aggregator to the ledger.
func NewAnalyticsUseCase(events port.EventRepository, campaigns port.CampaignRepository, opts ...Option) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		events:    events,
		campaigns: campaigns,
		rollup:    newDayRollup(rollupMaxDays),
		opts:      buildOptions(opts),
	}
}

var _ port.AnalyticsUseCase = (*AnalyticsUseCase)(nil)

func (u *AnalyticsUseCase) RecordEvent(ctx context.Context, in port.EventInput) (domain.DeliveryEvent, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.DeliveryEvent{}, err
	}
	e, err := u.prepare(ctx, in, u.opts.now(), u.campaigns.GetCampaign)
	if err != nil {
		return domain.DeliveryEvent{}, err
	}
	if err := u.append(ctx, e); err != nil {
		return domain.DeliveryEvent{}, err
	}
	return e, nil
}

// RecordEvents validates and appends each event independently. Rejected
// events are reported by index and do not stop the rest of the batch.
func (u *AnalyticsUseCase) RecordEvents(ctx context.Context, in []port.EventInput) (port.BulkResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return port.BulkResult{}, err
	}
	if len(in) == 0 {
		return port.BulkResult{}, apperr.Validation("events", "batch is empty")
	}
	if len(in) > maxBulkEvents {
		return port.BulkResult{}, apperr.Validation("events", "batch exceeds %d events", maxBulkEvents)
	}
	cache := map[string]domain.Campaign{}
	lookup := func(ctx context.Context, id string) (domain.Campaign, error) {
		if c, ok := cache[id]; ok {
			return c, nil
		}
		c, err := u.campaigns.GetCampaign(ctx, id)
		if err == nil {
			cache[id] = c
		}
		return c, err
	}
	res := port.BulkResult{Accepted: make([]string, 0, len(in)), Errors: map[int]error{}}
	now := u.opts.now()
	for i, ev := range in {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e, err := u.prepare(ctx, ev, now, lookup)
		if err == nil {
			err = u.append(ctx, e)
		}
		if err != nil {
			res.Errors[i] = err
			continue
		}
		res.Accepted = append(res.Accepted, e.ID)
	}
	u.opts.logger.InfoContext(ctx, "bulk events recorded",
		slog.Int("accepted", len(res.Accepted)),
		slog.Int("rejected", len(res.Errors)),
	)
	return res, nil
}

func (u *AnalyticsUseCase) prepare(ctx context.Context, in port.EventInput, now time.Time, lookup func(context.Context, string) (domain.Campaign, error)) (domain.DeliveryEvent, error) {
	typ, ok := domain.ParseEventType(in.Type)
	if !ok {
		return domain.DeliveryEvent{}, apperr.Validation("type", "unknown event type %q", in.Type)
	}
	campaignID := strings.TrimSpace(in.CampaignID)
	if campaignID == "" {
		return domain.DeliveryEvent{}, apperr.Validation("campaignId", "campaignId is required")
	}
	c, err := lookup(ctx, campaignID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return domain.DeliveryEvent{}, apperr.Validation("campaignId", "campaign %s does not exist", campaignID)
		}
		return domain.DeliveryEvent{}, err
	}
	slotID := strings.TrimSpace(in.SlotID)
	if slotID == "" {
		return domain.DeliveryEvent{}, apperr.Validation("slotId", "slotId is required")
	}
	if !c.HasSlot(slotID) {
		return domain.DeliveryEvent{}, apperr.Validation("slotId", "slot %s is not part of campaign %s", slotID, campaignID)
	}
	if in.WatchMs < 0 {
		return domain.DeliveryEvent{}, apperr.Validation("watchMs", "watchMs must not be negative")
	}
	if typ != domain.EventWatch && in.WatchMs != 0 {
		return domain.DeliveryEvent{}, apperr.Validation("watchMs", "watchMs is only allowed on watch events")
	}
	at := in.OccurredAt
	if at.IsZero() {
		at = now
	}
	if at.After(now.Add(maxFutureSkew)) {
		return domain.DeliveryEvent{}, apperr.Validation("occurredAt", "occurredAt is in the future")
	}
	return domain.DeliveryEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		CampaignID: campaignID,
		SlotID:     slotID,
		OccurredAt: at.UTC(),
		WatchMs:    in.WatchMs,
	}, nil
}

func (u *AnalyticsUseCase) append(ctx context.Context, e domain.DeliveryEvent) error {
	if err := u.events.AppendEvent(ctx, e); err != nil {
		return err
	}
	u.rollup.invalidate(domain.DayOf(e.OccurredAt))
	metrics.RecordEvent(string(e.Type))
	return nil
}

func (u *AnalyticsUseCase) Summarize(ctx context.Context, f port.AnalyticsFilter, r port.DateRange) (port.Summary, error) {
	points, err := u.TimeSeries(ctx, f, r, false)
	if err != nil {
		return port.Summary{}, err
	}
	var total domain.Counters
	for _, p := range points {
		total.Add(p.Counters)
	}
	return port.Summary{Counters: total, CTR: total.CTR()}, nil
}

// TimeSeries returns one point per UTC day overlapping the range, empty
// days included, in ascending order.
func (u *AnalyticsUseCase) TimeSeries(ctx context.Context, f port.AnalyticsFilter, r port.DateRange, withCTR bool) ([]port.SeriesPoint, error) {
	r, err := u.normalize(r)
	if err != nil {
		return nil, err
	}
	sc, err := u.resolveScope(ctx, f)
	if err != nil {
		return nil, err
	}
	byDay, err := retryRead(ctx, u.opts, func() (map[time.Time]domain.Counters, error) {
		return u.daily(ctx, sc, r)
	})
	if err != nil {
		return nil, err
	}
	var points []port.SeriesPoint
	for d := domain.DayOf(r.From); d.Before(r.To); d = d.AddDate(0, 0, 1) {
		p := port.SeriesPoint{Date: d, Counters: byDay[d]}
		if withCTR {
			ctr := p.Counters.CTR()
			p.CTR = &ctr
		}
		points = append(points, p)
	}
	return points, nil
}

func (u *AnalyticsUseCase) ExportCSV(ctx context.Context, w io.Writer, f port.AnalyticsFilter, r port.DateRange) error {
	points, err := u.TimeSeries(ctx, f, r, false)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{
			p.Date.Format(csvDateLayout),
			strconv.FormatInt(p.Impressions, 10),
			strconv.FormatInt(p.Clicks, 10),
			strconv.FormatInt(p.WatchTimeMs, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (u *AnalyticsUseCase) CampaignCounters(ctx context.Context, campaignID string, from, until time.Time) (domain.Counters, error) {
	rows, err := u.events.DailyCounts(ctx, port.LedgerQuery{
		Scoped:      true,
		CampaignIDs: []string{campaignID},
		From:        from,
		To:          until,
	})
	if err != nil {
		return domain.Counters{}, err
	}
	var total domain.Counters
	for _, row := range rows {
		total.Add(row.Counters)
	}
	return total, nil
}

// ledgerScope restricts aggregation to a set of campaigns. ids is nil when
// every campaign counts.
type ledgerScope struct {
	ids map[string]struct{}
}

func (s ledgerScope) scoped() bool { return s.ids != nil }

func (s ledgerScope) query(from, to time.Time) port.LedgerQuery {
	q := port.LedgerQuery{Scoped: s.scoped(), From: from, To: to}
	for id := range s.ids {
		q.CampaignIDs = append(q.CampaignIDs, id)
	}
	return q
}

func (u *AnalyticsUseCase) resolveScope(ctx context.Context, f port.AnalyticsFilter) (ledgerScope, error) {
	sponsorID, err := scopeSponsor(ctx, f.SponsorID)
	if err != nil {
		return ledgerScope{}, err
	}
	if f.CampaignID != "" {
		c, err := retryRead(ctx, u.opts, func() (domain.Campaign, error) {
			return u.campaigns.GetCampaign(ctx, f.CampaignID)
		})
		if err != nil {
			return ledgerScope{}, err
		}
		if err := canSee(ctx, "campaign", c.ID, c.SponsorID); err != nil {
			return ledgerScope{}, err
		}
		if sponsorID != "" && c.SponsorID != sponsorID {
			return ledgerScope{ids: map[string]struct{}{}}, nil
		}
		return ledgerScope{ids: map[string]struct{}{c.ID: {}}}, nil
	}
	if sponsorID == "" {
		return ledgerScope{}, nil
	}
	list, err := retryRead(ctx, u.opts, func() ([]domain.Campaign, error) {
		return u.campaigns.ListCampaigns(ctx, port.CampaignFilter{SponsorID: sponsorID})
	})
	if err != nil {
		return ledgerScope{}, err
	}
	ids := make(map[string]struct{}, len(list))
	for _, c := range list {
		ids[c.ID] = struct{}{}
	}
	return ledgerScope{ids: ids}, nil
}

func (u *AnalyticsUseCase) normalize(r port.DateRange) (port.DateRange, error) {
	if r.To.IsZero() {
		r.To = u.opts.now()
	}
	if r.From.IsZero() {
		r.From = r.To.Add(-defaultRange)
	}
	r.From, r.To = r.From.UTC(), r.To.UTC()
	if !r.From.Before(r.To) {
		return r, apperr.Validation("from", "from must be before to")
	}
	if r.To.Sub(r.From) > maxRange {
		return r, apperr.Validation("from", "date range must not exceed 366 days")
	}
	return r, nil
}

// daily totals the scope per UTC day. Complete past days come from the
// rollup, filling it from the ledger on a miss; partial edge days and the
// current day always go to the ledger.
func (u *AnalyticsUseCase) daily(ctx context.Context, sc ledgerScope, r port.DateRange) (map[time.Time]domain.Counters, error) {
	out := map[time.Time]domain.Counters{}
	if sc.scoped() && len(sc.ids) == 0 {
		return out, nil
	}
	today := domain.DayOf(u.opts.now())
	var missing []time.Time
	var edges []port.DateRange
	for d := domain.DayOf(r.From); d.Before(r.To); d = d.AddDate(0, 0, 1) {
		end := d.AddDate(0, 0, 1)
		if d.Before(r.From) || end.After(r.To) || !d.Before(today) {
			edge := port.DateRange{From: later(d, r.From), To: earlier(end, r.To)}
			if n := len(edges); n > 0 && edges[n-1].To.Equal(edge.From) {
				edges[n-1].To = edge.To
			} else {
				edges = append(edges, edge)
			}
			continue
		}
		if cached, ok := u.rollup.get(d); ok {
			out[d] = cached.sum(sc.ids)
			continue
		}
		missing = append(missing, d)
	}

	if len(missing) > 0 {
		gens := u.rollup.generations(missing)
		rows, err := u.events.DailyCounts(ctx, port.LedgerQuery{
			From: missing[0],
			To:   missing[len(missing)-1].AddDate(0, 0, 1),
		})
		if err != nil {
			return nil, err
		}
		filled := map[time.Time]dayCounters{}
		for _, row := range rows {
			day, ok := filled[row.Day]
			if !ok {
				day = dayCounters{}
				filled[row.Day] = day
			}
			day[row.CampaignID] = row.Counters
		}
		for _, d := range missing {
			day := filled[d]
			if day == nil {
				day = dayCounters{}
			}
			u.rollup.store(d, gens[d], day)
			out[d] = day.sum(sc.ids)
		}
	}

	for _, e := range edges {
		rows, err := u.events.DailyCounts(ctx, sc.query(e.From, e.To))
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			c := out[row.Day]
			c.Add(row.Counters)
			out[row.Day] = c
		}
	}
	return out, nil
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
