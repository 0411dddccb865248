package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

func (s *Store) AppendEvent(ctx context.Context, e domain.DeliveryEvent) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO delivery_events (id, type, campaign_id, slot_id, occurred_at, watch_ms)
VALUES ($1,$2,$3,$4,$5,$6)`, e.ID, e.Type, e.CampaignID, e.SlotID, e.OccurredAt, e.WatchMs)
	return translate("append event", err)
}

// DailyCounts groups by UTC day. Campaign IDs sort in byte order so the
// result matches the in-memory store.
func (s *Store) DailyCounts(ctx context.Context, q port.LedgerQuery) ([]domain.DayCounters, error) {
	if q.Scoped && len(q.CampaignIDs) == 0 {
		return nil, nil
	}
	var w filter
	if !q.From.IsZero() {
		w.add("occurred_at >= $%[1]d", q.From)
	}
	w.add("occurred_at < $%[1]d", q.To)
	if q.Scoped {
		w.add("campaign_id = ANY($%[1]d)", q.CampaignIDs)
	}
	rows, _ := s.pool.Query(ctx, `SELECT
    date_trunc('day', occurred_at AT TIME ZONE 'UTC') AS day,
    campaign_id,
    count(*) FILTER (WHERE type = 'impression'),
    count(*) FILTER (WHERE type = 'click'),
    COALESCE(sum(watch_ms) FILTER (WHERE type = 'watch'), 0)::bigint
FROM delivery_events`+w.where()+`
GROUP BY 1, 2
ORDER BY 1, 2 COLLATE "C"`, w.args...)
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DayCounters, error) {
		var d domain.DayCounters
		err := row.Scan(&d.Day, &d.CampaignID, &d.Impressions, &d.Clicks, &d.WatchTimeMs)
		d.Day = domain.DayOf(d.Day)
		return d, err
	})
	if err != nil {
		return nil, translate("daily counts", err)
	}
	return out, nil
}
