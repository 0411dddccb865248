package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

func (s *Store) AppendEvent(_ context.Context, e domain.DeliveryEvent) error {
	s.eventsMu.Lock()
	s.events = append(s.events, e)
	s.eventsMu.Unlock()
	return nil
}

type dayCampaign struct {
	day        time.Time
	campaignID string
}

func (s *Store) DailyCounts(ctx context.Context, q port.LedgerQuery) ([]domain.DayCounters, error) {
	if q.Scoped && len(q.CampaignIDs) == 0 {
		return nil, nil
	}
	var wanted map[string]struct{}
	if q.Scoped {
		wanted = make(map[string]struct{}, len(q.CampaignIDs))
		for _, id := range q.CampaignIDs {
			wanted[id] = struct{}{}
		}
	}

	s.eventsMu.RLock()
	groups := map[dayCampaign]*domain.Counters{}
	for i, e := range s.events {
		if i%4096 == 0 && ctx.Err() != nil {
			s.eventsMu.RUnlock()
			return nil, ctx.Err()
		}
		if e.OccurredAt.Before(q.From) || !e.OccurredAt.Before(q.To) {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[e.CampaignID]; !ok {
				continue
			}
		}
		key := dayCampaign{day: domain.DayOf(e.OccurredAt), campaignID: e.CampaignID}
		c, ok := groups[key]
		if !ok {
			c = &domain.Counters{}
			groups[key] = c
		}
		c.Add(domain.CountEvent(e))
	}
	s.eventsMu.RUnlock()

	out := make([]domain.DayCounters, 0, len(groups))
	for k, c := range groups {
		out = append(out, domain.DayCounters{Day: k.day, CampaignID: k.campaignID, Counters: *c})
	}
	slices.SortFunc(out, func(a, b domain.DayCounters) int {
		return cmp.Or(a.Day.Compare(b.Day), cmp.Compare(a.CampaignID, b.CampaignID))
	})
	return out, nil
}
