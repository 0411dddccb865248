// Package notify holds the outbound reminder channel.
package notify

import (
	"context"
	"log/slog"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

// LogReminder writes invoice reminders to the log in place of an email or
// SMS gateway.
type LogReminder struct {
	logger *slog.Logger
}

var _ port.ReminderSender = (*LogReminder)(nil)

func NewLogReminder(logger *slog.Logger) *LogReminder {
	return &LogReminder{logger: logger.With("component", "reminder")}
}

func (r *LogReminder) SendInvoiceReminder(ctx context.Context, inv domain.Invoice, sponsor domain.Sponsor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "invoice reminder",
		"invoice", inv.ID,
		"status", inv.Status,
		"sponsor", sponsor.ID,
		"to", sponsor.Email,
		"contact", sponsor.ContactPerson,
		"total", int64(inv.Total),
		"due", inv.DueDate.Format("2006-01-02"),
	)
	return nil
}
