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
)

// counterSource totals the ledger of one campaign. AnalyticsUseCase
// satisfies it.
type counterSource interface {
	CampaignCounters(ctx context.Context, campaignID string, from, until time.Time) (domain.Counters, error)
}

// CampaignUseCase drives the campaign lifecycle. Every write is a
// compare-and-set on the campaign version, so concurrent transitions of
// the same campaign serialize and at most one of them wins.
type CampaignUseCase struct {
	campaigns port.CampaignRepository
	sponsors  port.SponsorRepository
	slots     port.SlotRepository
	invoices  port.InvoiceRepository
	counters  counterSource
	publisher port.ChangePublisher
	opts      options
}

// NewCampaignUseCase wires the engine. publisher may be nil.
func NewCampaignUseCase(
	campaigns port.CampaignRepository,
	sponsors port.SponsorRepository,
	slots port.SlotRepository,
	invoices port.InvoiceRepository,
	counters counterSource,
	publisher port.ChangePublisher,
	opts ...Option,
) *CampaignUseCase {
	return &CampaignUseCase{
		campaigns: campaigns,
		sponsors:  sponsors,
		slots:     slots,
		invoices:  invoices,
		counters:  counters,
		publisher: publisherOrNoop(publisher),
		opts:      buildOptions(opts),
	}
}

var _ port.CampaignUseCase = (*CampaignUseCase)(nil)

func (u *CampaignUseCase) CreateCampaign(ctx context.Context, in port.CampaignInput) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	c := domain.Campaign{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		SponsorID:     strings.TrimSpace(in.SponsorID),
		CreativeURL:   strings.TrimSpace(in.CreativeURL),
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		ImpressionCap: in.ImpressionCap,
		PricingModel:  domain.PricingFlat,
		Status:        domain.StatusDraft,
	}
	if c.Name == "" {
		return domain.Campaign{}, apperr.Validation("name", "name is required")
	}
	if c.SponsorID == "" {
		return domain.Campaign{}, apperr.Validation("sponsorId", "sponsorId is required")
	}
	if err := u.requireSponsor(ctx, c.SponsorID); err != nil {
		return domain.Campaign{}, err
	}
	slots, err := u.resolveSlots(ctx, c.SponsorID, in.SlotIDs)
	if err != nil {
		return domain.Campaign{}, err
	}
	c.SlotIDs = slotIDs(slots)
	if err := validateFlight(c); err != nil {
		return domain.Campaign{}, err
	}
	if in.PricingModel != "" {
		model, ok := domain.ParsePricingModel(in.PricingModel)
		if !ok {
			return domain.Campaign{}, apperr.Validation("pricingModel", "unknown pricing model %q", in.PricingModel)
		}
		c.PricingModel = model
	}
	if in.PriceAmount != nil {
		if *in.PriceAmount < 0 {
			return domain.Campaign{}, apperr.Validation("priceAmount", "priceAmount must not be negative")
		}
		c.PriceAmount = domain.Money(*in.PriceAmount)
	} else if c.PriceAmount, err = slotPrice(slots); err != nil {
		return domain.Campaign{}, err
	}
	if in.Status != "" {
		st, ok := domain.ParseCampaignStatus(in.Status)
		if !ok {
			return domain.Campaign{}, apperr.Validation("status", "unknown status %q", in.Status)
		}
		c.Status = st
	}
	if c.Status != domain.StatusDraft {
		if err := validateReady(c); err != nil {
			return domain.Campaign{}, err
		}
	}
	now := u.opts.now()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := u.campaigns.CreateCampaign(ctx, c); err != nil {
		return domain.Campaign{}, err
	}
	u.opts.audit(ctx, "campaign", c.ID, "create", "status", string(c.Status), "sponsor", c.SponsorID)
	u.publisher.CampaignsChanged()
	return c, nil
}

func (u *CampaignUseCase) UpdateCampaign(ctx context.Context, id string, p port.CampaignPatch) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	cur, err := u.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	next := cur
	if p.Name != nil {
		if next.Name = strings.TrimSpace(*p.Name); next.Name == "" {
			return domain.Campaign{}, apperr.Validation("name", "name is required")
		}
	}
	if p.SlotIDs != nil {
		slots, err := u.resolveSlots(ctx, cur.SponsorID, p.SlotIDs)
		if err != nil {
			return domain.Campaign{}, err
		}
		next.SlotIDs = slotIDs(slots)
		if next.PriceAmount, err = slotPrice(slots); err != nil {
			return domain.Campaign{}, err
		}
	}
	if p.CreativeURL != nil {
		next.CreativeURL = strings.TrimSpace(*p.CreativeURL)
	}
	if p.StartDate != nil {
		next.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		next.EndDate = p.EndDate
	}
	if p.ImpressionCap != nil {
		next.ImpressionCap = p.ImpressionCap
	}
	if err := validateFlight(next); err != nil {
		return domain.Campaign{}, err
	}
	if p.PricingModel != nil {
		model, ok := domain.ParsePricingModel(*p.PricingModel)
		if !ok {
			return domain.Campaign{}, apperr.Validation("pricingModel", "unknown pricing model %q", *p.PricingModel)
		}
		next.PricingModel = model
	}
	if p.PriceAmount != nil {
		if *p.PriceAmount < 0 {
			return domain.Campaign{}, apperr.Validation("priceAmount", "priceAmount must not be negative")
		}
		next.PriceAmount = domain.Money(*p.PriceAmount)
	}

	action := ""
	if p.Status != nil {
		to, ok := domain.ParseCampaignStatus(*p.Status)
		if !ok {
			return domain.Campaign{}, apperr.Validation("status", "unknown status %q", *p.Status)
		}
		if to != cur.Status {
			a, ok := domain.Transition(cur.Status, to)
			if !ok {
				return domain.Campaign{}, apperr.InvalidState("campaign", string(cur.Status), string(to))
			}
			next.Status = to
			next.NeedsReview = reviewAfter(a, next.NeedsReview)
			action = string(a)
		}
	}
	if p.NeedsReview != nil {
		next.NeedsReview = *p.NeedsReview
	}
	if next.Status != domain.StatusDraft {
		if err := validateReady(next); err != nil {
			return domain.Campaign{}, err
		}
	}
	return u.commit(ctx, cur, next, "update", func(fresh domain.Campaign) error {
		if action == "" {
			return apperr.Conflict("campaign %s was modified concurrently", id)
		}
		return apperr.InvalidState("campaign", string(fresh.Status), string(next.Status))
	})
}

func (u *CampaignUseCase) TransitionCampaign(ctx context.Context, id string, action domain.Action) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	cur, err := u.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	to, ok := domain.Apply(cur.Status, action)
	if !ok {
		return domain.Campaign{}, apperr.InvalidAction("campaign", string(action), string(cur.Status))
	}
	next := cur
	next.Status = to
	next.NeedsReview = reviewAfter(action, cur.NeedsReview)
	if action == domain.ActionSubmit {
		if err := u.requireSponsor(ctx, cur.SponsorID); err != nil {
			return domain.Campaign{}, err
		}
		if err := validateReady(next); err != nil {
			return domain.Campaign{}, err
		}
	}
	return u.commit(ctx, cur, next, string(action), func(fresh domain.Campaign) error {
		return apperr.InvalidAction("campaign", string(action), string(fresh.Status))
	})
}

// reviewAfter is the review flag once action is applied. Rejection flags
// the campaign; approval and reactivation are an operator sign-off and
// clear it.
func reviewAfter(action domain.Action, flagged bool) bool {
	switch action {
	case domain.ActionReject:
		return true
	case domain.ActionApprove, domain.ActionActivate:
		return false
	}
	return flagged
}

// commit stores next if cur is still the stored version. On a lost race
// the current record is re-read and passed to lost to build the error.
func (u *CampaignUseCase) commit(ctx context.Context, cur, next domain.Campaign, action string, lost func(fresh domain.Campaign) error) (domain.Campaign, error) {
	next.UpdatedAt = u.opts.now()
	err := u.campaigns.UpdateCampaign(ctx, next, cur.Version)
	if errors.Is(err, port.ErrStale) {
		fresh, gerr := u.campaigns.GetCampaign(ctx, cur.ID)
		if gerr != nil {
			return domain.Campaign{}, gerr
		}
		return domain.Campaign{}, lost(fresh)
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	next.Version = cur.Version + 1
	u.opts.audit(ctx, "campaign", next.ID, action,
		slog.String("from", string(cur.Status)),
		slog.String("to", string(next.Status)),
		slog.Int64("version", next.Version),
	)
	u.publisher.CampaignsChanged()
	return next, nil
}

func (u *CampaignUseCase) DeleteCampaign(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	cur, err := u.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if cur.Status.Terminal() {
		return apperr.InvalidState("campaign", string(cur.Status), "deleted")
	}
	billed, err := u.invoices.ListInvoices(ctx, port.InvoiceFilter{CampaignID: id})
	if err != nil {
		return err
	}
	if len(billed) > 0 {
		return apperr.Conflict("campaign %s is referenced by invoice %s", id, billed[0].ID)
	}
	if err := u.campaigns.DeleteCampaign(ctx, id, cur.Version); err != nil {
		if errors.Is(err, port.ErrStale) {
			return apperr.Conflict("campaign %s was modified concurrently", id)
		}
		return err
	}
	u.opts.audit(ctx, "campaign", id, "delete", "status", string(cur.Status))
	u.publisher.CampaignsChanged()
	return nil
}

func (u *CampaignUseCase) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	if _, err := principal(ctx); err != nil {
		return domain.Campaign{}, err
	}
	c, err := retryRead(ctx, u.opts, func() (domain.Campaign, error) {
		return u.campaigns.GetCampaign(ctx, id)
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := canSee(ctx, "campaign", id, c.SponsorID); err != nil {
		return domain.Campaign{}, err
	}
	return c, nil
}

func (u *CampaignUseCase) ListCampaigns(ctx context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	sponsorID, err := scopeSponsor(ctx, f.SponsorID)
	if err != nil {
		return nil, err
	}
	f.SponsorID = sponsorID
	return retryRead(ctx, u.opts, func() ([]domain.Campaign, error) {
		return u.campaigns.ListCampaigns(ctx, f)
	})
}

func (u *CampaignUseCase) RefreshTotals(ctx context.Context, id string) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	c, err := u.refresh(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	u.publisher.CampaignsChanged()
	return c, nil
}

// RefreshAllTotals recomputes the cached totals of every delivering
// campaign and reports how many were refreshed.
func (u *CampaignUseCase) RefreshAllTotals(ctx context.Context) (int, error) {
	if err := requireAdmin(ctx); err != nil {
		return 0, err
	}
	list, err := u.campaigns.ListCampaigns(ctx, port.CampaignFilter{
		Statuses: []domain.CampaignStatus{domain.StatusActive, domain.StatusPaused},
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range list {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := u.refresh(ctx, c.ID); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				continue
			}
			return n, err
		}
		n++
	}
	if n > 0 {
		u.publisher.CampaignsChanged()
	}
	return n, nil
}

func (u *CampaignUseCase) refresh(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := u.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	now := u.opts.now()
	counters, err := u.counters.CampaignCounters(ctx, id, time.Time{}, now)
	if err != nil {
		return domain.Campaign{}, err
	}
	_, spend, err := c.PricingModel.Spend(c.PriceAmount, counters)
	if err != nil {
		return domain.Campaign{}, apperr.Internal("refresh campaign totals", err)
	}
	if err := u.campaigns.UpdateTotals(ctx, id, spend, counters.Impressions, now); err != nil {
		return domain.Campaign{}, err
	}
	c.TotalSpend = spend
	c.DeliveredImpressions = counters.Impressions
	c.TotalsRefreshedAt = &now
	return c, nil
}

// CompleteExpired moves active and paused campaigns whose end date has
// passed to completed. Campaigns changed concurrently are skipped and
// picked up by the next run.
func (u *CampaignUseCase) CompleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := requireAdmin(ctx); err != nil {
		return 0, err
	}
	list, err := u.campaigns.ListCampaigns(ctx, port.CampaignFilter{
		Statuses: []domain.CampaignStatus{domain.StatusActive, domain.StatusPaused},
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range list {
		if !c.Expired(now) {
			continue
		}
		next := c
		next.Status = domain.StatusCompleted
		next.UpdatedAt = now
		err := u.campaigns.UpdateCampaign(ctx, next, c.Version)
		if errors.Is(err, port.ErrStale) || apperr.KindOf(err) == apperr.KindNotFound {
			u.opts.logger.DebugContext(ctx, "skip expired campaign changed concurrently", slog.String("campaign", c.ID))
			continue
		}
		if err != nil {
			return n, err
		}
		u.opts.audit(ctx, "campaign", c.ID, string(domain.ActionComplete), slog.String("from", string(c.Status)), slog.String("reason", "end date reached"))
		n++
	}
	if n > 0 {
		u.publisher.CampaignsChanged()
	}
	return n, nil
}

func (u *CampaignUseCase) requireSponsor(ctx context.Context, id string) error {
	if _, err := u.sponsors.GetSponsor(ctx, id); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.Validation("sponsorId", "sponsor %s does not exist", id)
		}
		return err
	}
	return nil
}

// resolveSlots loads the requested slots and enforces sponsor locks.
func (u *CampaignUseCase) resolveSlots(ctx context.Context, sponsorID string, ids []string) ([]domain.AdSlot, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]domain.AdSlot, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			return nil, apperr.Validation("slotIds", "slot %s is listed twice", id)
		}
		seen[id] = struct{}{}
		s, err := u.slots.GetSlot(ctx, id)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, apperr.Validation("slotIds", "slot %s does not exist", id)
			}
			return nil, err
		}
		if !s.Active {
			return nil, apperr.Validation("slotIds", "slot %s is inactive", id)
		}
		if !s.AllowsSponsor(sponsorID) {
			e := apperr.Conflict("slot %s is locked to a different sponsor", id)
			e.Fields = map[string]string{"field": "slotIds", "slotId": id}
			return nil, e
		}
		out = append(out, s)
	}
	return out, nil
}

func validateFlight(c domain.Campaign) error {
	if c.StartDate != nil && c.EndDate != nil && !c.EndDate.After(*c.StartDate) {
		return apperr.Validation("endDate", "endDate must be after startDate")
	}
	if c.ImpressionCap != nil && *c.ImpressionCap <= 0 {
		return apperr.Validation("impressionCap", "impressionCap must be positive")
	}
	return nil
}

// validateReady checks what a campaign needs before it leaves draft.
func validateReady(c domain.Campaign) error {
	if len(c.SlotIDs) == 0 {
		return apperr.Validation("slotIds", "at least one slot is required")
	}
	if c.CreativeURL == "" {
		return apperr.Validation("creativeUrl", "creativeUrl is required")
	}
	return nil
}

func slotIDs(slots []domain.AdSlot) []string {
	ids := make([]string, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	return ids
}

func slotPrice(slots []domain.AdSlot) (domain.Money, error) {
	amounts := make([]domain.Money, len(slots))
	for i, s := range slots {
		amounts[i] = s.PriceAmount
	}
	total, err := domain.Sum(amounts...)
	if err != nil {
		return 0, apperr.Validation("slotIds", "combined slot price is too large")
	}
	return total, nil
}
