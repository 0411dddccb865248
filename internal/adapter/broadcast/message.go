package broadcast

import (
	"time"

	"sponsorhub/internal/core/domain"
)

// Push message types.
const (
	TypeCampaignUpdate = "campaign_update"
	TypeInvoiceUpdate  = "invoice_update"
)

// CampaignUpdate carries the full campaign list visible to a session. The
// list is always present, empty when nothing is visible.
type CampaignUpdate struct {
	Type      string         `json:"type"`
	Campaigns []CampaignView `json:"campaigns"`
}

// InvoiceUpdate carries one changed invoice.
type InvoiceUpdate struct {
	Type    string      `json:"type"`
	Invoice InvoiceView `json:"invoice"`
}

// CampaignView is the dashboard projection of a campaign.
type CampaignView struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	SponsorID            string     `json:"sponsorId"`
	Status               string     `json:"status"`
	NeedsReview          bool       `json:"needsReview"`
	TotalSpend           int64      `json:"totalSpend"`
	DeliveredImpressions int64      `json:"deliveredImpressions"`
	TotalsRefreshedAt    *time.Time `json:"totalsRefreshedAt,omitempty"`
	Version              int64      `json:"version"`
}

// InvoiceView is the dashboard projection of an invoice.
type InvoiceView struct {
	ID        string    `json:"id"`
	SponsorID string    `json:"sponsorId"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	DueDate   time.Time `json:"dueDate"`
}

func campaignMessage(list []domain.Campaign, p domain.Principal) CampaignUpdate {
	views := make([]CampaignView, 0, len(list))
	for _, c := range list {
		if !p.CanSee(c.SponsorID) {
			continue
		}
		views = append(views, CampaignView{
			ID:                   c.ID,
			Name:                 c.Name,
			SponsorID:            c.SponsorID,
			Status:               string(c.Status),
			NeedsReview:          c.NeedsReview,
			TotalSpend:           int64(c.TotalSpend),
			DeliveredImpressions: c.DeliveredImpressions,
			TotalsRefreshedAt:    c.TotalsRefreshedAt,
			Version:              c.Version,
		})
	}
	return CampaignUpdate{Type: TypeCampaignUpdate, Campaigns: views}
}

func invoiceMessage(inv domain.Invoice) InvoiceUpdate {
	return InvoiceUpdate{Type: TypeInvoiceUpdate, Invoice: InvoiceView{
		ID:        inv.ID,
		SponsorID: inv.SponsorID,
		Status:    string(inv.Status),
		Total:     int64(inv.Total),
		DueDate:   inv.DueDate,
	}}
}
