package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/metrics"
)

// BillingUseCase turns ledger deliveries into frozen invoices.
type BillingUseCase struct {
	invoices  port.InvoiceRepository
	campaigns port.CampaignRepository
	sponsors  port.SponsorRepository
	counters  counterSource
	publisher port.ChangePublisher
	reminders port.ReminderSender
	netDays   int
	opts      options
}

// NewBillingUseCase wires the billing engine. netDays is the default
// payment term applied when an invoice is created without a due date.
// publisher and reminders may be nil.
func NewBillingUseCase(
	invoices port.InvoiceRepository,
	campaigns port.CampaignRepository,
	sponsors port.SponsorRepository,
	counters counterSource,
	publisher port.ChangePublisher,
	reminders port.ReminderSender,
	netDays int,
	opts ...Option,
) *BillingUseCase {
	if netDays <= 0 {
		netDays = 30
	}
	return &BillingUseCase{
		invoices:  invoices,
		campaigns: campaigns,
		sponsors:  sponsors,
		counters:  counters,
		publisher: publisherOrNoop(publisher),
		reminders: reminders,
		netDays:   netDays,
		opts:      buildOptions(opts),
	}
}

var _ port.BillingUseCase = (*BillingUseCase)(nil)

func (u *BillingUseCase) CreateInvoice(ctx context.Context, in port.InvoiceInput) (domain.Invoice, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Invoice{}, err
	}
	sponsorID := strings.TrimSpace(in.SponsorID)
	if sponsorID == "" {
		return domain.Invoice{}, apperr.Validation("sponsorId", "sponsorId is required")
	}
	if len(in.CampaignIDs) == 0 {
		return domain.Invoice{}, apperr.Validation("campaignIds", "at least one campaign is required")
	}
	if _, err := u.sponsors.GetSponsor(ctx, sponsorID); err != nil {
		return domain.Invoice{}, err
	}

	now := u.opts.now()
	due := now.AddDate(0, 0, u.netDays)
	if in.DueDate != nil {
		if !in.DueDate.After(now) {
			return domain.Invoice{}, apperr.Validation("dueDate", "dueDate must be in the future")
		}
		due = in.DueDate.UTC()
	}

	seen := make(map[string]struct{}, len(in.CampaignIDs))
	campaigns := make([]domain.Campaign, 0, len(in.CampaignIDs))
	billedSince := make([]*time.Time, 0, len(in.CampaignIDs))
	for _, id := range in.CampaignIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			return domain.Invoice{}, apperr.Validation("campaignIds", "campaign %s is listed twice", id)
		}
		seen[id] = struct{}{}
		c, err := u.campaigns.GetCampaign(ctx, id)
		if err != nil {
			return domain.Invoice{}, err
		}
		if c.SponsorID != sponsorID {
			return domain.Invoice{}, apperr.Validation("campaignIds", "campaign %s belongs to another sponsor", id)
		}
		since, err := u.billedUntil(ctx, id)
		if err != nil {
			return domain.Invoice{}, err
		}
		if since != nil && c.PricingModel == domain.PricingFlat {
			return domain.Invoice{}, apperr.Conflict("campaign %s flat fee is already billed", id)
		}
		campaigns = append(campaigns, c)
		billedSince = append(billedSince, since)
	}

	inv := domain.Invoice{
		ID:        uuid.NewString(),
		SponsorID: sponsorID,
		Lines:     make([]domain.InvoiceLine, 0, len(campaigns)),
		Status:    domain.InvoiceDraft,
		DueDate:   due,
		CreatedAt: now,
	}
	for i, c := range campaigns {
		var from time.Time
		if since := billedSince[i]; since != nil {
			from = *since
		}
		counters, err := u.counters.CampaignCounters(ctx, c.ID, from, now)
		if err != nil {
			return domain.Invoice{}, err
		}
		qty, amount, err := c.PricingModel.Spend(c.PriceAmount, counters)
		if err != nil {
			return domain.Invoice{}, apperr.Validation("campaignIds", "spend of campaign %s is too large to invoice", c.ID)
		}
		if billedSince[i] != nil && qty == 0 {
			return domain.Invoice{}, apperr.Conflict("campaign %s has no unbilled delivery since %s",
				c.ID, from.Format(time.RFC3339))
		}
		if inv.Total, err = inv.Total.Add(amount); err != nil {
			return domain.Invoice{}, apperr.Validation("campaignIds", "invoice total is too large")
		}
		inv.Lines = append(inv.Lines, domain.InvoiceLine{
			CampaignID:   c.ID,
			PricingModel: c.PricingModel,
			Rate:         c.PriceAmount,
			Quantity:     qty,
			Amount:       amount,
			BilledFrom:   billedSince[i],
			BilledUntil:  now,
		})
	}
	if err := u.invoices.CreateInvoice(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}
	metrics.RecordInvoice(string(inv.Status))
	u.opts.audit(ctx, "invoice", inv.ID, "create",
		slog.String("sponsor", sponsorID),
		slog.Int64("total", int64(inv.Total)),
		slog.Any("campaigns", inv.CampaignIDs()),
	)
	u.publisher.InvoiceChanged(inv)
	return inv, nil
}

// billedUntil returns the end of the ledger window already invoiced for
// the campaign, nil when it was never billed. A campaign sitting on an open
// invoice is a Conflict; the repository enforces that rule atomically on
// insert as well.
func (u *BillingUseCase) billedUntil(ctx context.Context, campaignID string) (*time.Time, error) {
	list, err := u.invoices.ListInvoices(ctx, port.InvoiceFilter{CampaignID: campaignID})
	if err != nil {
		return nil, err
	}
	var until *time.Time
	for _, inv := range list {
		if inv.Status.Open() {
			return nil, apperr.Conflict("campaign %s is already billed on open invoice %s", campaignID, inv.ID)
		}
		for _, l := range inv.Lines {
			if l.CampaignID == campaignID && (until == nil || l.BilledUntil.After(*until)) {
				t := l.BilledUntil
				until = &t
			}
		}
	}
	return until, nil
}

// SendInvoice issues a draft invoice to the sponsor.
func (u *BillingUseCase) SendInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	inv, err := u.transition(ctx, id, domain.SendableStatuses, domain.InvoiceSent)
	if err != nil {
		return domain.Invoice{}, err
	}
	u.remind(ctx, inv)
	return inv, nil
}

// MarkPaid settles an invoice. It wins over a concurrent overdue sweep
// because both are compare-and-set on the current status.
func (u *BillingUseCase) MarkPaid(ctx context.Context, id string) (domain.Invoice, error) {
	return u.transition(ctx, id, domain.PayableStatuses, domain.InvoicePaid)
}

func (u *BillingUseCase) transition(ctx context.Context, id string, from []domain.InvoiceStatus, to domain.InvoiceStatus) (domain.Invoice, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Invoice{}, err
	}
	inv, err := u.invoices.TransitionInvoice(ctx, id, from, to, u.opts.now())
	if errors.Is(err, port.ErrStale) {
		if inv.ID == "" {
			if inv, err = u.invoices.GetInvoice(ctx, id); err != nil {
				return domain.Invoice{}, err
			}
		}
		return domain.Invoice{}, apperr.InvalidState("invoice", string(inv.Status), string(to))
	}
	if err != nil {
		return domain.Invoice{}, err
	}
	metrics.RecordInvoice(string(to))
	u.opts.audit(ctx, "invoice", id, string(to), slog.Int64("total", int64(inv.Total)))
	u.publisher.InvoiceChanged(inv)
	return inv, nil
}

func (u *BillingUseCase) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	if _, err := principal(ctx); err != nil {
		return domain.Invoice{}, err
	}
	inv, err := retryRead(ctx, u.opts, func() (domain.Invoice, error) {
		return u.invoices.GetInvoice(ctx, id)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := canSee(ctx, "invoice", id, inv.SponsorID); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (u *BillingUseCase) ListInvoices(ctx context.Context, f port.InvoiceFilter) ([]domain.Invoice, error) {
	sponsorID, err := scopeSponsor(ctx, f.SponsorID)
	if err != nil {
		return nil, err
	}
	f.SponsorID = sponsorID
	return retryRead(ctx, u.opts, func() ([]domain.Invoice, error) {
		return u.invoices.ListInvoices(ctx, f)
	})
}

// SweepOverdue marks unpaid invoices past their due date as overdue and
// reminds their sponsors. Paid invoices are never touched.
func (u *BillingUseCase) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	if err := requireAdmin(ctx); err != nil {
		return 0, err
	}
	changed, err := u.invoices.MarkOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, inv := range changed {
		metrics.RecordInvoice(string(domain.InvoiceOverdue))
		u.opts.audit(ctx, "invoice", inv.ID, string(domain.InvoiceOverdue), slog.Time("due", inv.DueDate))
		u.publisher.InvoiceChanged(inv)
		u.remind(ctx, inv)
	}
	return len(changed), nil
}

// remind hands the invoice to the outbound channel. Failures are logged;
// they never undo the billing transition.
func (u *BillingUseCase) remind(ctx context.Context, inv domain.Invoice) {
	if u.reminders == nil {
		return
	}
	sponsor, err := u.sponsors.GetSponsor(ctx, inv.SponsorID)
	if err == nil {
		err = u.reminders.SendInvoiceReminder(ctx, inv, sponsor)
	}
	if err != nil {
		u.opts.logger.WarnContext(ctx, "invoice reminder failed",
			slog.String("invoice", inv.ID),
			slog.Any("error", err),
		)
	}
}
