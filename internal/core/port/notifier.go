package port

import (
	"context"

	"sponsorhub/internal/core/domain"
)

// ChangePublisher receives change notifications from the use cases. Both
// methods must return immediately; delivery to clients is asynchronous.
type ChangePublisher interface {
	// CampaignsChanged signals that the campaign list should be re-broadcast.
	CampaignsChanged()
	// InvoiceChanged signals a billing state change.
	InvoiceChanged(inv domain.Invoice)
}

// ReminderSender is the outbound email/SMS channel for invoice reminders.
type ReminderSender interface {
	SendInvoiceReminder(ctx context.Context, inv domain.Invoice, sponsor domain.Sponsor) error
}
