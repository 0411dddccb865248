package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

// SlotUseCase manages the ad slot catalog.
type SlotUseCase struct {
	slots     port.SlotRepository
	sponsors  port.SponsorRepository
	campaigns port.CampaignRepository
	publisher port.ChangePublisher
	opts      options
}

// NewSlotUseCase wires the catalog. publisher may be nil.
func NewSlotUseCase(slots port.SlotRepository, sponsors port.SponsorRepository, campaigns port.CampaignRepository, publisher port.ChangePublisher, opts ...Option) *SlotUseCase {
	return &SlotUseCase{
		slots:     slots,
		sponsors:  sponsors,
		campaigns: campaigns,
		publisher: publisherOrNoop(publisher),
		opts:      buildOptions(opts),
	}
}

var _ port.SlotUseCase = (*SlotUseCase)(nil)

func (u *SlotUseCase) CreateSlot(ctx context.Context, in port.SlotInput) (domain.AdSlot, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.AdSlot{}, err
	}
	typ, ok := domain.ParseSlotType(in.Type)
	if !ok {
		return domain.AdSlot{}, apperr.Validation("type", "unknown slot type %q", in.Type)
	}
	model := domain.PriceFlat
	if in.PriceModel != "" {
		if model, ok = domain.ParsePriceModel(in.PriceModel); !ok {
			return domain.AdSlot{}, apperr.Validation("priceModel", "unknown price model %q", in.PriceModel)
		}
	}
	now := u.opts.now()
	s := domain.AdSlot{
		ID:          uuid.NewString(),
		Type:        typ,
		DurationSec: in.DurationSec,
		PriceModel:  model,
		PriceAmount: domain.Money(in.PriceAmount),
		SponsorLock: optional(in.SponsorLock),
		CreativeURL: optional(in.CreativeURL),
		Active:      in.Active == nil || *in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.validate(ctx, s); err != nil {
		return domain.AdSlot{}, err
	}
	if err := u.slots.CreateSlot(ctx, s); err != nil {
		return domain.AdSlot{}, err
	}
	u.opts.audit(ctx, "adslot", s.ID, "create", "type", string(s.Type))
	return s, nil
}

func (u *SlotUseCase) UpdateSlot(ctx context.Context, id string, p port.SlotPatch) (domain.AdSlot, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.AdSlot{}, err
	}
	s, err := u.slots.GetSlot(ctx, id)
	if err != nil {
		return domain.AdSlot{}, err
	}
	prevLock := s.SponsorLock
	if p.Type != nil {
		typ, ok := domain.ParseSlotType(*p.Type)
		if !ok {
			return domain.AdSlot{}, apperr.Validation("type", "unknown slot type %q", *p.Type)
		}
		s.Type = typ
	}
	if p.DurationSec != nil {
		s.DurationSec = *p.DurationSec
	}
	if p.PriceModel != nil {
		model, ok := domain.ParsePriceModel(*p.PriceModel)
		if !ok {
			return domain.AdSlot{}, apperr.Validation("priceModel", "unknown price model %q", *p.PriceModel)
		}
		s.PriceModel = model
	}
	if p.PriceAmount != nil {
		s.PriceAmount = domain.Money(*p.PriceAmount)
	}
	if p.SponsorLock != nil {
		s.SponsorLock = optional(p.SponsorLock)
	}
	if p.CreativeURL != nil {
		s.CreativeURL = optional(p.CreativeURL)
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
	if err := u.validate(ctx, s); err != nil {
		return domain.AdSlot{}, err
	}
	s.UpdatedAt = u.opts.now()
	if err := u.slots.UpdateSlot(ctx, s); err != nil {
		return domain.AdSlot{}, err
	}
	u.opts.audit(ctx, "adslot", s.ID, "update")

	if s.SponsorLock != nil && (prevLock == nil || *prevLock != *s.SponsorLock) {
		if err := u.flagGrandfathered(ctx, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// flagGrandfathered marks live campaigns of other sponsors that already use
// a slot which has just been locked.
func (u *SlotUseCase) flagGrandfathered(ctx context.Context, s domain.AdSlot) error {
	campaigns, err := u.campaigns.ListCampaigns(ctx, port.CampaignFilter{SlotID: s.ID})
	if err != nil {
		return err
	}
	var ids []string
	for _, c := range campaigns {
		if !c.Status.Terminal() && c.SponsorID != *s.SponsorLock {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := u.campaigns.FlagForReview(ctx, ids); err != nil {
		return err
	}
	u.opts.logger.WarnContext(ctx, "slot locked with existing campaigns of other sponsors",
		slog.String("slot", s.ID),
		slog.String("lock", *s.SponsorLock),
		slog.Any("campaigns", ids),
	)
	u.publisher.CampaignsChanged()
	return nil
}

func (u *SlotUseCase) DeleteSlot(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := u.slots.GetSlot(ctx, id); err != nil {
		return err
	}
	campaigns, err := u.campaigns.ListCampaigns(ctx, port.CampaignFilter{SlotID: id})
	if err != nil {
		return err
	}
	for _, c := range campaigns {
		if !c.Status.Terminal() {
			return apperr.Conflict("slot %s is used by campaign %s in status %s", id, c.ID, c.Status)
		}
	}
	if err := u.slots.DeleteSlot(ctx, id); err != nil {
		return err
	}
	u.opts.audit(ctx, "adslot", id, "delete")
	return nil
}

func (u *SlotUseCase) GetSlot(ctx context.Context, id string) (domain.AdSlot, error) {
	if _, err := principal(ctx); err != nil {
		return domain.AdSlot{}, err
	}
	return retryRead(ctx, u.opts, func() (domain.AdSlot, error) {
		return u.slots.GetSlot(ctx, id)
	})
}

func (u *SlotUseCase) ListSlots(ctx context.Context, f port.SlotFilter) ([]domain.AdSlot, error) {
	if _, err := principal(ctx); err != nil {
		return nil, err
	}
	return retryRead(ctx, u.opts, func() ([]domain.AdSlot, error) {
		return u.slots.ListSlots(ctx, f)
	})
}

func (u *SlotUseCase) validate(ctx context.Context, s domain.AdSlot) error {
	if s.DurationSec <= 0 {
		return apperr.Validation("durationSec", "durationSec must be positive")
	}
	if s.PriceAmount < 0 {
		return apperr.Validation("priceAmount", "priceAmount must not be negative")
	}
	if s.SponsorLock != nil {
		if _, err := u.sponsors.GetSponsor(ctx, *s.SponsorLock); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return apperr.Validation("sponsorLock", "sponsor %s does not exist", *s.SponsorLock)
			}
			return err
		}
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) CampaignsChanged() {}
func (noopPublisher) InvoiceChanged(_ domain.Invoice) {}

func publisherOrNoop(p port.ChangePublisher) port.ChangePublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
