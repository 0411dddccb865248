package port

import (
	"context"
	"io"
	"time"

	"sponsorhub/internal/core/domain"
)

// SponsorUseCase is the sponsor registry.
type SponsorUseCase interface {
	CreateSponsor(ctx context.Context, in SponsorInput) (domain.Sponsor, error)
	UpdateSponsor(ctx context.Context, id string, p SponsorPatch) (domain.Sponsor, error)
	DeleteSponsor(ctx context.Context, id string) error
	GetSponsor(ctx context.Context, id string) (domain.Sponsor, error)
	ListSponsors(ctx context.Context, f SponsorFilter) ([]domain.Sponsor, error)
}

// SlotUseCase is the ad slot catalog.
type SlotUseCase interface {
	CreateSlot(ctx context.Context, in SlotInput) (domain.AdSlot, error)
	UpdateSlot(ctx context.Context, id string, p SlotPatch) (domain.AdSlot, error)
	DeleteSlot(ctx context.Context, id string) error
	GetSlot(ctx context.Context, id string) (domain.AdSlot, error)
	ListSlots(ctx context.Context, f SlotFilter) ([]domain.AdSlot, error)
}

// CampaignUseCase is the campaign lifecycle engine.
type CampaignUseCase interface {
	CreateCampaign(ctx context.Context, in CampaignInput) (domain.Campaign, error)
	// UpdateCampaign patches fields and, when p.Status is set, applies the
	// matching lifecycle transition.
	UpdateCampaign(ctx context.Context, id string, p CampaignPatch) (domain.Campaign, error)
	TransitionCampaign(ctx context.Context, id string, action domain.Action) (domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, f CampaignFilter) ([]domain.Campaign, error)
	// RefreshTotals recomputes the cached totals of one campaign from the
	// ledger.
	RefreshTotals(ctx context.Context, id string) (domain.Campaign, error)
}

// AnalyticsUseCase records deliveries and aggregates the ledger.
type AnalyticsUseCase interface {
	RecordEvent(ctx context.Context, in EventInput) (domain.DeliveryEvent, error)
	RecordEvents(ctx context.Context, in []EventInput) (BulkResult, error)
	Summarize(ctx context.Context, f AnalyticsFilter, r DateRange) (Summary, error)
	TimeSeries(ctx context.Context, f AnalyticsFilter, r DateRange, withCTR bool) ([]SeriesPoint, error)
	ExportCSV(ctx context.Context, w io.Writer, f AnalyticsFilter, r DateRange) error
	// CampaignCounters totals a campaign's ledger rows in [from, until). A
	// zero from starts at the beginning of the ledger.
	CampaignCounters(ctx context.Context, campaignID string, from, until time.Time) (domain.Counters, error)
}

// BillingUseCase generates and tracks invoices.
type BillingUseCase interface {
	CreateInvoice(ctx context.Context, in InvoiceInput) (domain.Invoice, error)
	SendInvoice(ctx context.Context, id string) (domain.Invoice, error)
	MarkPaid(ctx context.Context, id string) (domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (domain.Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]domain.Invoice, error)
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

// SponsorInput carries the fields of a new sponsor.
type SponsorInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	TaxID         *string
	Tier          string
	LogoURL       *string
	AgentID       *string
}

// SponsorPatch carries the fields to change; nil means unchanged. An empty
// string clears an optional field.
type SponsorPatch struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	TaxID         *string
	Tier          *string
	LogoURL       *string
	AgentID       *string
}

// SlotInput carries the fields of a new slot.
type SlotInput struct {
	Type        string
	DurationSec int
	PriceModel  string
	PriceAmount int64
	SponsorLock *string
	CreativeURL *string
	Active      *bool
}

// SlotPatch carries the fields to change. An empty SponsorLock removes the
// lock.
type SlotPatch struct {
	Type        *string
	DurationSec *int
	PriceModel  *string
	PriceAmount *int64
	SponsorLock *string
	CreativeURL *string
	Active      *bool
}

// CampaignInput carries the fields of a new campaign. Status defaults to
// draft; other values take the administrative bulk-load path.
type CampaignInput struct {
	Name          string
	SponsorID     string
	SlotIDs       []string
	CreativeURL   string
	StartDate     *time.Time
	EndDate       *time.Time
	ImpressionCap *int64
	PricingModel  string
	// PriceAmount overrides the rate derived from the slots.
	PriceAmount *int64
	Status      string
}

// CampaignPatch carries the fields to change. SlotIDs nil means unchanged.
type CampaignPatch struct {
	Name          *string
	SlotIDs       []string
	CreativeURL   *string
	StartDate     *time.Time
	EndDate       *time.Time
	ImpressionCap *int64
	PricingModel  *string
	PriceAmount   *int64
	Status        *string
	NeedsReview   *bool
}

// EventInput is a delivery observation. A zero OccurredAt means now.
type EventInput struct {
	Type       string
	CampaignID string
	SlotID     string
	OccurredAt time.Time
	WatchMs    int64
}

// BulkResult reports partial acceptance of a batch of events.
type BulkResult struct {
	Accepted []string
	Errors   map[int]error
}

// AnalyticsFilter narrows aggregation to a sponsor and/or campaign.
type AnalyticsFilter struct {
	SponsorID  string
	CampaignID string
}

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// Summary aggregates the filtered ledger.
type Summary struct {
	domain.Counters
	CTR float64
}

// SeriesPoint is one UTC day of a time series.
type SeriesPoint struct {
	Date time.Time
	domain.Counters
	// CTR is only set when requested.
	CTR *float64
}

// InvoiceInput requests an invoice. A nil DueDate uses the configured net
// days.
type InvoiceInput struct {
	SponsorID   string
	CampaignIDs []string
	DueDate     *time.Time
}
