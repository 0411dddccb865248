// Package memory implements the storage ports over in-process maps. Each
// table has its own lock so campaign, invoice and ledger traffic never
// contend on a single mutex. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

// Store is an in-memory port.Store. Methods that hold two locks take
// invoicesMu before campaignsMu.
type Store struct {
	sponsorsMu sync.RWMutex
	sponsors   map[string]domain.Sponsor

	slotsMu sync.RWMutex
	slots   map[string]domain.AdSlot

	campaignsMu sync.RWMutex
	campaigns   map[string]domain.Campaign

	eventsMu sync.RWMutex
	events   []domain.DeliveryEvent

	invoicesMu sync.RWMutex
	invoices   map[string]domain.Invoice
	// openByCampaign maps a campaign to the open invoice billing it.
	openByCampaign map[string]string
}

var _ port.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sponsors:       map[string]domain.Sponsor{},
		slots:          map[string]domain.AdSlot{},
		campaigns:      map[string]domain.Campaign{},
		invoices:       map[string]domain.Invoice{},
		openByCampaign: map[string]string{},
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.SlotIDs = slices.Clone(c.SlotIDs)
	if c.StartDate != nil {
		v := *c.StartDate
		c.StartDate = &v
	}
	if c.EndDate != nil {
		v := *c.EndDate
		c.EndDate = &v
	}
	if c.ImpressionCap != nil {
		v := *c.ImpressionCap
		c.ImpressionCap = &v
	}
	if c.TotalsRefreshedAt != nil {
		v := *c.TotalsRefreshedAt
		c.TotalsRefreshedAt = &v
	}
	return c
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	inv.Lines = slices.Clone(inv.Lines)
	if inv.PaidAt != nil {
		v := *inv.PaidAt
		inv.PaidAt = &v
	}
	return inv
}

func cloneSponsor(sp domain.Sponsor) domain.Sponsor {
	sp.TaxID = cloneStr(sp.TaxID)
	sp.LogoURL = cloneStr(sp.LogoURL)
	sp.AgentID = cloneStr(sp.AgentID)
	return sp
}

func cloneSlot(sl domain.AdSlot) domain.AdSlot {
	sl.SponsorLock = cloneStr(sl.SponsorLock)
	sl.CreativeURL = cloneStr(sl.CreativeURL)
	return sl
}
