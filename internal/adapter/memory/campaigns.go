package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

func (s *Store) CreateCampaign(_ context.Context, c domain.Campaign) error {
	s.campaignsMu.Lock()
	defer s.campaignsMu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return apperr.Conflict("campaign %s already exists", c.ID)
	}
	s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (s *Store) UpdateCampaign(_ context.Context, c domain.Campaign, expectedVersion int64) error {
	s.campaignsMu.Lock()
	defer s.campaignsMu.Unlock()
	cur, ok := s.campaigns[c.ID]
	if !ok {
		return apperr.NotFound("campaign", c.ID)
	}
	if cur.Version != expectedVersion {
		return port.ErrStale
	}
	c = cloneCampaign(c)
	c.Version = expectedVersion + 1
	// cache columns are owned by UpdateTotals
	c.TotalSpend = cur.TotalSpend
	c.DeliveredImpressions = cur.DeliveredImpressions
	c.TotalsRefreshedAt = cur.TotalsRefreshedAt
	s.campaigns[c.ID] = c
	return nil
}

// DeleteCampaign refuses campaigns referenced by any invoice. It holds the
// invoice lock across the delete so a concurrent CreateInvoice cannot bill it.
func (s *Store) DeleteCampaign(_ context.Context, id string, expectedVersion int64) error {
	s.invoicesMu.RLock()
	defer s.invoicesMu.RUnlock()
	s.campaignsMu.Lock()
	defer s.campaignsMu.Unlock()
	cur, ok := s.campaigns[id]
	if !ok {
		return apperr.NotFound("campaign", id)
	}
	if cur.Version != expectedVersion {
		return port.ErrStale
	}
	for _, inv := range s.invoices {
		if slices.Contains(inv.CampaignIDs(), id) {
			return apperr.Conflict("delete campaign: campaign %s is referenced by invoice %s", id, inv.ID)
		}
	}
	delete(s.campaigns, id)
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (domain.Campaign, error) {
	s.campaignsMu.RLock()
	defer s.campaignsMu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return domain.Campaign{}, apperr.NotFound("campaign", id)
	}
	return cloneCampaign(c), nil
}

func (s *Store) ListCampaigns(_ context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	s.campaignsMu.RLock()
	defer s.campaignsMu.RUnlock()
	out := make([]domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if f.SponsorID != "" && c.SponsorID != f.SponsorID {
			continue
		}
		if f.SlotID != "" && !c.HasSlot(f.SlotID) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, c.Status) {
			continue
		}
		if (f.From != nil || f.To != nil) && !c.Overlaps(f.From, f.To) {
			continue
		}
		out = append(out, cloneCampaign(c))
	}
	slices.SortFunc(out, func(a, b domain.Campaign) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) UpdateTotals(_ context.Context, id string, spend domain.Money, impressions int64, at time.Time) error {
	s.campaignsMu.Lock()
	defer s.campaignsMu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return apperr.NotFound("campaign", id)
	}
	c.TotalSpend = spend
	c.DeliveredImpressions = impressions
	c.TotalsRefreshedAt = &at
	s.campaigns[id] = c
	return nil
}

func (s *Store) FlagForReview(_ context.Context, ids []string) error {
	s.campaignsMu.Lock()
	defer s.campaignsMu.Unlock()
	for _, id := range ids {
		if c, ok := s.campaigns[id]; ok {
			c.NeedsReview = true
			c.Version++
			s.campaigns[id] = c
		}
	}
	return nil
}
