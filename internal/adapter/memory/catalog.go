package memory

import (
	"cmp"
	"context"
	"slices"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

func (s *Store) CreateSponsor(_ context.Context, sp domain.Sponsor) error {
	s.sponsorsMu.Lock()
	defer s.sponsorsMu.Unlock()
	if _, ok := s.sponsors[sp.ID]; ok {
		return apperr.Conflict("sponsor %s already exists", sp.ID)
	}
	s.sponsors[sp.ID] = cloneSponsor(sp)
	return nil
}

func (s *Store) UpdateSponsor(_ context.Context, sp domain.Sponsor) error {
	s.sponsorsMu.Lock()
	defer s.sponsorsMu.Unlock()
	if _, ok := s.sponsors[sp.ID]; !ok {
		return apperr.NotFound("sponsor", sp.ID)
	}
	s.sponsors[sp.ID] = cloneSponsor(sp)
	return nil
}

func (s *Store) DeleteSponsor(_ context.Context, id string) error {
	s.sponsorsMu.Lock()
	defer s.sponsorsMu.Unlock()
	if _, ok := s.sponsors[id]; !ok {
		return apperr.NotFound("sponsor", id)
	}
	delete(s.sponsors, id)
	return nil
}

func (s *Store) GetSponsor(_ context.Context, id string) (domain.Sponsor, error) {
	s.sponsorsMu.RLock()
	defer s.sponsorsMu.RUnlock()
	sp, ok := s.sponsors[id]
	if !ok {
		return domain.Sponsor{}, apperr.NotFound("sponsor", id)
	}
	return cloneSponsor(sp), nil
}

func (s *Store) ListSponsors(_ context.Context, f port.SponsorFilter) ([]domain.Sponsor, error) {
	s.sponsorsMu.RLock()
	defer s.sponsorsMu.RUnlock()
	out := make([]domain.Sponsor, 0, len(s.sponsors))
	for _, sp := range s.sponsors {
		if f.Tier != "" && sp.Tier != f.Tier {
			continue
		}
		if f.Query != "" && !containsFold(sp.Name, f.Query) && !containsFold(sp.Email, f.Query) {
			continue
		}
		out = append(out, cloneSponsor(sp))
	}
	slices.SortFunc(out, func(a, b domain.Sponsor) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) CreateSlot(_ context.Context, sl domain.AdSlot) error {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()
	if _, ok := s.slots[sl.ID]; ok {
		return apperr.Conflict("slot %s already exists", sl.ID)
	}
	s.slots[sl.ID] = cloneSlot(sl)
	return nil
}

func (s *Store) UpdateSlot(_ context.Context, sl domain.AdSlot) error {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()
	if _, ok := s.slots[sl.ID]; !ok {
		return apperr.NotFound("slot", sl.ID)
	}
	s.slots[sl.ID] = cloneSlot(sl)
	return nil
}

func (s *Store) DeleteSlot(_ context.Context, id string) error {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return apperr.NotFound("slot", id)
	}
	delete(s.slots, id)
	return nil
}

func (s *Store) GetSlot(_ context.Context, id string) (domain.AdSlot, error) {
	s.slotsMu.RLock()
	defer s.slotsMu.RUnlock()
	sl, ok := s.slots[id]
	if !ok {
		return domain.AdSlot{}, apperr.NotFound("slot", id)
	}
	return cloneSlot(sl), nil
}

func (s *Store) ListSlots(_ context.Context, f port.SlotFilter) ([]domain.AdSlot, error) {
	s.slotsMu.RLock()
	defer s.slotsMu.RUnlock()
	out := make([]domain.AdSlot, 0, len(s.slots))
	for _, sl := range s.slots {
		if f.Type != "" && sl.Type != f.Type {
			continue
		}
		if f.Active != nil && sl.Active != *f.Active {
			continue
		}
		if f.SponsorID != "" && (sl.SponsorLock == nil || *sl.SponsorLock != f.SponsorID) {
			continue
		}
		out = append(out, cloneSlot(sl))
	}
	slices.SortFunc(out, func(a, b domain.AdSlot) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}
