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

func (s *Store) CreateInvoice(_ context.Context, inv domain.Invoice) error {
	s.invoicesMu.Lock()
	defer s.invoicesMu.Unlock()
	if _, ok := s.invoices[inv.ID]; ok {
		return apperr.Conflict("invoice %s already exists", inv.ID)
	}
	ids := inv.CampaignIDs()
	s.campaignsMu.RLock()
	defer s.campaignsMu.RUnlock()
	for _, id := range ids {
		if _, ok := s.campaigns[id]; !ok {
			return apperr.Conflict("create invoice: campaign %s is missing", id)
		}
		if open, ok := s.openByCampaign[id]; ok {
			return apperr.Conflict("campaign %s is already billed on open invoice %s", id, open)
		}
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	if inv.Status.Open() {
		for _, id := range ids {
			s.openByCampaign[id] = inv.ID
		}
	}
	return nil
}

func (s *Store) TransitionInvoice(_ context.Context, id string, from []domain.InvoiceStatus, to domain.InvoiceStatus, at time.Time) (domain.Invoice, error) {
	s.invoicesMu.Lock()
	defer s.invoicesMu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return domain.Invoice{}, apperr.NotFound("invoice", id)
	}
	if !slices.Contains(from, inv.Status) {
		return cloneInvoice(inv), port.ErrStale
	}
	inv.Status = to
	if to == domain.InvoicePaid {
		inv.PaidAt = &at
		for _, cid := range inv.CampaignIDs() {
			if s.openByCampaign[cid] == inv.ID {
				delete(s.openByCampaign, cid)
			}
		}
	}
	s.invoices[id] = inv
	return cloneInvoice(inv), nil
}

func (s *Store) MarkOverdue(_ context.Context, now time.Time) ([]domain.Invoice, error) {
	s.invoicesMu.Lock()
	defer s.invoicesMu.Unlock()
	var changed []domain.Invoice
	for id, inv := range s.invoices {
		if !slices.Contains(domain.OverdueableStatuses, inv.Status) || !inv.DueDate.Before(now) {
			continue
		}
		inv.Status = domain.InvoiceOverdue
		s.invoices[id] = inv
		changed = append(changed, cloneInvoice(inv))
	}
	sortInvoices(changed)
	return changed, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (domain.Invoice, error) {
	s.invoicesMu.RLock()
	defer s.invoicesMu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return domain.Invoice{}, apperr.NotFound("invoice", id)
	}
	return cloneInvoice(inv), nil
}

func (s *Store) ListInvoices(_ context.Context, f port.InvoiceFilter) ([]domain.Invoice, error) {
	s.invoicesMu.RLock()
	defer s.invoicesMu.RUnlock()
	out := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if f.SponsorID != "" && inv.SponsorID != f.SponsorID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, inv.Status) {
			continue
		}
		if f.CampaignID != "" && !slices.Contains(inv.CampaignIDs(), f.CampaignID) {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sortInvoices(out)
	return out, nil
}

func sortInvoices(list []domain.Invoice) {
	slices.SortFunc(list, func(a, b domain.Invoice) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
}
