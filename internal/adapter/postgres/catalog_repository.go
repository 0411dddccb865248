package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

const sponsorColumns = `id, name, contact_person, email, phone, tax_id, tier, logo_url, agent_id, created_at, updated_at`

func scanSponsor(row pgx.CollectableRow) (domain.Sponsor, error) {
	var s domain.Sponsor
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.TaxID, &s.Tier, &s.LogoURL, &s.AgentID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (s *Store) CreateSponsor(ctx context.Context, sp domain.Sponsor) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO sponsors (`+sponsorColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sp.ID, sp.Name, sp.ContactPerson, sp.Email, sp.Phone, sp.TaxID, sp.Tier, sp.LogoURL, sp.AgentID, sp.CreatedAt, sp.UpdatedAt)
	return translate("create sponsor", err)
}

func (s *Store) UpdateSponsor(ctx context.Context, sp domain.Sponsor) error {
	tag, err := s.pool.Exec(ctx, `UPDATE sponsors SET name=$2, contact_person=$3, email=$4, phone=$5, tax_id=$6,
    tier=$7, logo_url=$8, agent_id=$9, updated_at=$10 WHERE id=$1`,
		sp.ID, sp.Name, sp.ContactPerson, sp.Email, sp.Phone, sp.TaxID, sp.Tier, sp.LogoURL, sp.AgentID, sp.UpdatedAt)
	if err != nil {
		return translate("update sponsor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("sponsor", sp.ID)
	}
	return nil
}

func (s *Store) DeleteSponsor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sponsors WHERE id=$1`, id)
	if err != nil {
		return translate("delete sponsor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("sponsor", id)
	}
	return nil
}

func (s *Store) GetSponsor(ctx context.Context, id string) (domain.Sponsor, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE id=$1`, id)
	sp, err := pgx.CollectExactlyOneRow(rows, scanSponsor)
	if err != nil {
		return domain.Sponsor{}, notFound("get sponsor", "sponsor", id, err)
	}
	return sp, nil
}

func (s *Store) ListSponsors(ctx context.Context, f port.SponsorFilter) ([]domain.Sponsor, error) {
	var w filter
	if f.Tier != "" {
		w.add("tier = $%[1]d", string(f.Tier))
	}
	if f.Query != "" {
		w.add("(name ILIKE '%%' || $%[1]d || '%%' OR email ILIKE '%%' || $%[1]d || '%%')", f.Query)
	}
	rows, _ := s.pool.Query(ctx, `SELECT `+sponsorColumns+` FROM sponsors`+w.where()+` ORDER BY created_at, id`, w.args...)
	list, err := pgx.CollectRows(rows, scanSponsor)
	if err != nil {
		return nil, translate("list sponsors", err)
	}
	return list, nil
}

const slotColumns = `id, type, duration_sec, price_model, price_amount, sponsor_lock, creative_url, active, created_at, updated_at`

func scanSlot(row pgx.CollectableRow) (domain.AdSlot, error) {
	var s domain.AdSlot
	err := row.Scan(&s.ID, &s.Type, &s.DurationSec, &s.PriceModel, &s.PriceAmount, &s.SponsorLock, &s.CreativeURL, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (s *Store) CreateSlot(ctx context.Context, sl domain.AdSlot) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO ad_slots (`+slotColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sl.ID, sl.Type, sl.DurationSec, sl.PriceModel, sl.PriceAmount, sl.SponsorLock, sl.CreativeURL, sl.Active, sl.CreatedAt, sl.UpdatedAt)
	return translate("create slot", err)
}

func (s *Store) UpdateSlot(ctx context.Context, sl domain.AdSlot) error {
	tag, err := s.pool.Exec(ctx, `UPDATE ad_slots SET type=$2, duration_sec=$3, price_model=$4, price_amount=$5,
    sponsor_lock=$6, creative_url=$7, active=$8, updated_at=$9 WHERE id=$1`,
		sl.ID, sl.Type, sl.DurationSec, sl.PriceModel, sl.PriceAmount, sl.SponsorLock, sl.CreativeURL, sl.Active, sl.UpdatedAt)
	if err != nil {
		return translate("update slot", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("adslot", sl.ID)
	}
	return nil
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ad_slots WHERE id=$1`, id)
	if err != nil {
		return translate("delete slot", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("adslot", id)
	}
	return nil
}

func (s *Store) GetSlot(ctx context.Context, id string) (domain.AdSlot, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+slotColumns+` FROM ad_slots WHERE id=$1`, id)
	sl, err := pgx.CollectExactlyOneRow(rows, scanSlot)
	if err != nil {
		return domain.AdSlot{}, notFound("get slot", "adslot", id, err)
	}
	return sl, nil
}

func (s *Store) ListSlots(ctx context.Context, f port.SlotFilter) ([]domain.AdSlot, error) {
	var w filter
	if f.Type != "" {
		w.add("type = $%[1]d", string(f.Type))
	}
	if f.SponsorID != "" {
		w.add("sponsor_lock = $%[1]d", f.SponsorID)
	}
	if f.Active != nil {
		w.add("active = $%[1]d", *f.Active)
	}
	rows, _ := s.pool.Query(ctx, `SELECT `+slotColumns+` FROM ad_slots`+w.where()+` ORDER BY created_at, id`, w.args...)
	list, err := pgx.CollectRows(rows, scanSlot)
	if err != nil {
		return nil, translate("list slots", err)
	}
	return list, nil
}
