package port

import (
	"context"
	"errors"
	"time"

	"sponsorhub/internal/core/domain"
)

// ErrStale is returned by compare-and-set updates when the stored version or
// status no longer matches what the caller read.
var ErrStale = errors.New("stale record")

// SponsorRepository persists sponsors. Missing rows yield apperr NotFound.
type SponsorRepository interface {
	CreateSponsor(ctx context.Context, s domain.Sponsor) error
	UpdateSponsor(ctx context.Context, s domain.Sponsor) error
	DeleteSponsor(ctx context.Context, id string) error
	GetSponsor(ctx context.Context, id string) (domain.Sponsor, error)
	ListSponsors(ctx context.Context, f SponsorFilter) ([]domain.Sponsor, error)
}

// SlotRepository persists the ad slot catalog.
type SlotRepository interface {
	CreateSlot(ctx context.Context, s domain.AdSlot) error
	UpdateSlot(ctx context.Context, s domain.AdSlot) error
	DeleteSlot(ctx context.Context, id string) error
	GetSlot(ctx context.Context, id string) (domain.AdSlot, error)
	ListSlots(ctx context.Context, f SlotFilter) ([]domain.AdSlot, error)
}

// CampaignRepository persists campaigns. UpdateCampaign and DeleteCampaign
// are compare-and-set on Version and return ErrStale on a lost race.
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, c domain.Campaign) error
	// UpdateCampaign stores c if the stored version equals
	// expectedVersion and bumps it to expectedVersion+1.
	UpdateCampaign(ctx context.Context, c domain.Campaign, expectedVersion int64) error
	DeleteCampaign(ctx context.Context, id string, expectedVersion int64) error
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, f CampaignFilter) ([]domain.Campaign, error)
	// UpdateTotals refreshes the display caches without touching Version.
	UpdateTotals(ctx context.Context, id string, spend domain.Money, impressions int64, at time.Time) error
	// FlagForReview sets NeedsReview on the given campaigns and bumps their
	// Version so a concurrent update based on an older read goes stale.
	FlagForReview(ctx context.Context, ids []string) error
}

// EventRepository is the append-only delivery ledger. Appends are atomic and
// safe for concurrent writers.
type EventRepository interface {
	AppendEvent(ctx context.Context, e domain.DeliveryEvent) error
	// DailyCounts aggregates ledger rows in [From, To) per UTC day and
	// campaign, ordered by day then campaign ID.
	DailyCounts(ctx context.Context, q LedgerQuery) ([]domain.DayCounters, error)
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	// CreateInvoice stores inv atomically. It fails with apperr Conflict if
	// any of its campaigns is already on an open invoice.
	CreateInvoice(ctx context.Context, inv domain.Invoice) error
	// TransitionInvoice moves the invoice to `to` only if its current status
	// is one of from. It returns ErrStale otherwise.
	TransitionInvoice(ctx context.Context, id string, from []domain.InvoiceStatus, to domain.InvoiceStatus, at time.Time) (domain.Invoice, error)
	// MarkOverdue moves every draft or sent invoice due before now to
	// overdue and returns the invoices it changed.
	MarkOverdue(ctx context.Context, now time.Time) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (domain.Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]domain.Invoice, error)
}

// Store bundles every repository of one storage backend.
type Store interface {
	SponsorRepository
	SlotRepository
	CampaignRepository
	EventRepository
	InvoiceRepository
	Ping(ctx context.Context) error
}

// SponsorFilter narrows ListSponsors. Zero fields match everything.
type SponsorFilter struct {
	Tier  domain.Tier
	Query string
}

// SlotFilter narrows ListSlots.
type SlotFilter struct {
	Type domain.SlotType
	// SponsorID selects slots locked to that sponsor.
	SponsorID string
	Active    *bool
}

// CampaignFilter narrows ListCampaigns.
type CampaignFilter struct {
	SponsorID string
	SlotID    string
	Statuses  []domain.CampaignStatus
	// From and To select campaigns whose flight overlaps the window.
	From *time.Time
	To   *time.Time
}

// LedgerQuery selects ledger rows. When Scoped is true only CampaignIDs are
// considered, and an empty list matches nothing.
type LedgerQuery struct {
	Scoped      bool
	CampaignIDs []string
	From        time.Time
	To          time.Time
}

// InvoiceFilter narrows ListInvoices.
type InvoiceFilter struct {
	SponsorID  string
	CampaignID string
	Statuses   []domain.InvoiceStatus
}
