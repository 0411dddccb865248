package usecase

import (
	"context"
	"net/mail"
	"slices"
	"strings"

	"github.com/google/uuid"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

// SponsorUseCase manages the sponsor registry.
type SponsorUseCase struct {
	sponsors  port.SponsorRepository
	campaigns port.CampaignRepository
	invoices  port.InvoiceRepository
	opts      options
}

// NewSponsorUseCase wires the registry to its repositories.
func NewSponsorUseCase(sponsors port.SponsorRepository, campaigns port.CampaignRepository, invoices port.InvoiceRepository, opts ...Option) *SponsorUseCase {
	return &SponsorUseCase{sponsors: sponsors, campaigns: campaigns, invoices: invoices, opts: buildOptions(opts)}
}

var _ port.SponsorUseCase = (*SponsorUseCase)(nil)

func (u *SponsorUseCase) CreateSponsor(ctx context.Context, in port.SponsorInput) (domain.Sponsor, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Sponsor{}, err
	}
	now := u.opts.now()
	s := domain.Sponsor{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		TaxID:         optional(in.TaxID),
		LogoURL:       optional(in.LogoURL),
		AgentID:       optional(in.AgentID),
		Tier:          domain.TierBronze,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Tier != "" {
		tier, ok := domain.ParseTier(in.Tier)
		if !ok {
			return domain.Sponsor{}, apperr.Validation("tier", "unknown tier %q", in.Tier)
		}
		s.Tier = tier
	}
	if err := validateSponsor(s); err != nil {
		return domain.Sponsor{}, err
	}
	if err := u.sponsors.CreateSponsor(ctx, s); err != nil {
		return domain.Sponsor{}, err
	}
	u.opts.audit(ctx, "sponsor", s.ID, "create", "tier", string(s.Tier))
	return s, nil
}

func (u *SponsorUseCase) UpdateSponsor(ctx context.Context, id string, p port.SponsorPatch) (domain.Sponsor, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Sponsor{}, err
	}
	s, err := u.sponsors.GetSponsor(ctx, id)
	if err != nil {
		return domain.Sponsor{}, err
	}
	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			changed = append(changed, name)
		}
	}
	setOptional := func(name string, dst **string, src *string) {
		if src != nil {
			*dst = optional(src)
			changed = append(changed, name)
		}
	}
	setString("name", &s.Name, p.Name)
	setString("contactPerson", &s.ContactPerson, p.ContactPerson)
	setString("email", &s.Email, p.Email)
	setString("phone", &s.Phone, p.Phone)
	setOptional("taxId", &s.TaxID, p.TaxID)
	setOptional("logoUrl", &s.LogoURL, p.LogoURL)
	setOptional("agentId", &s.AgentID, p.AgentID)
	if p.Tier != nil {
		tier, ok := domain.ParseTier(*p.Tier)
		if !ok {
			return domain.Sponsor{}, apperr.Validation("tier", "unknown tier %q", *p.Tier)
		}
		s.Tier = tier
		changed = append(changed, "tier")
	}
	if err := validateSponsor(s); err != nil {
		return domain.Sponsor{}, err
	}
	s.UpdatedAt = u.opts.now()
	if err := u.sponsors.UpdateSponsor(ctx, s); err != nil {
		return domain.Sponsor{}, err
	}
	u.opts.audit(ctx, "sponsor", s.ID, "update", "fields", changed)
	return s, nil
}

func (u *SponsorUseCase) DeleteSponsor(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := u.sponsors.GetSponsor(ctx, id); err != nil {
		return err
	}
	campaigns, err := u.campaigns.ListCampaigns(ctx, port.CampaignFilter{SponsorID: id})
	if err != nil {
		return err
	}
	for _, c := range campaigns {
		if !c.Status.Terminal() {
			return apperr.Conflict("sponsor %s still has campaign %s in status %s", id, c.ID, c.Status)
		}
	}
	open, err := u.invoices.ListInvoices(ctx, port.InvoiceFilter{
		SponsorID: id,
		Statuses:  []domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceSent, domain.InvoiceOverdue},
	})
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return apperr.Conflict("sponsor %s has %d unpaid invoices", id, len(open))
	}
	if err := u.sponsors.DeleteSponsor(ctx, id); err != nil {
		return err
	}
	u.opts.audit(ctx, "sponsor", id, "delete")
	return nil
}

func (u *SponsorUseCase) GetSponsor(ctx context.Context, id string) (domain.Sponsor, error) {
	if err := canSee(ctx, "sponsor", id, id); err != nil {
		return domain.Sponsor{}, err
	}
	return retryRead(ctx, u.opts, func() (domain.Sponsor, error) {
		return u.sponsors.GetSponsor(ctx, id)
	})
}

func (u *SponsorUseCase) ListSponsors(ctx context.Context, f port.SponsorFilter) ([]domain.Sponsor, error) {
	own, err := scopeSponsor(ctx, "")
	if err != nil {
		return nil, err
	}
	list, err := retryRead(ctx, u.opts, func() ([]domain.Sponsor, error) {
		return u.sponsors.ListSponsors(ctx, f)
	})
	if err != nil || own == "" {
		return list, err
	}
	return slices.DeleteFunc(list, func(s domain.Sponsor) bool { return s.ID != own }), nil
}

func validateSponsor(s domain.Sponsor) error {
	switch {
	case s.Name == "":
		return apperr.Validation("name", "name is required")
	case s.ContactPerson == "":
		return apperr.Validation("contactPerson", "contact person is required")
	case s.Email == "":
		return apperr.Validation("email", "email is required")
	case !validEmail(s.Email):
		return apperr.Validation("email", "email %q is not a valid address", s.Email)
	case s.Phone == "":
		return apperr.Validation("phone", "phone is required")
	}
	return nil
}

// validEmail accepts a bare addr-spec only; display names are rejected.
func validEmail(v string) bool {
	a, err := mail.ParseAddress(v)
	return err == nil && a.Address == v && a.Name == ""
}

// optional trims v and maps the empty string to nil.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
