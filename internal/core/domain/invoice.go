package domain

import (
	"strings"
	"time"
)

// InvoiceStatus is a node of the invoice lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// ParseInvoiceStatus normalises an invoice status.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return st, true
	}
	return st, false
}

// Open reports whether the invoice still blocks its campaigns from being
// billed again.
func (s InvoiceStatus) Open() bool { return s != InvoicePaid }

// Source statuses accepted by each invoice transition.
var (
	PayableStatuses     = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoiceOverdue}
	SendableStatuses    = []InvoiceStatus{InvoiceDraft}
	OverdueableStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent}
)

// InvoiceLine freezes the spend computed for one campaign over the ledger
// window [BilledFrom, BilledUntil). A nil BilledFrom means the campaign had
// never been billed before.
type InvoiceLine struct {
	CampaignID   string
	PricingModel PricingModel
	Rate         Money
	Quantity     int64
	Amount       Money
	BilledFrom   *time.Time
	BilledUntil  time.Time
}

// Invoice bills one or more campaigns of a single sponsor. Lines and Total
// never change after creation; only Status moves.
type Invoice struct {
	ID        string
	SponsorID string
	Lines     []InvoiceLine
	Total     Money
	Status    InvoiceStatus
	DueDate   time.Time
	CreatedAt time.Time
	PaidAt    *time.Time
}

// CampaignIDs lists the billed campaigns in line order.
func (i Invoice) CampaignIDs() []string {
	ids := make([]string, 0, len(i.Lines))
	for _, l := range i.Lines {
		ids = append(ids, l.CampaignID)
	}
	return ids
}
