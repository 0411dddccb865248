package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

const campaignColumns = `c.id, c.name, c.sponsor_id, c.creative_url, c.start_date, c.end_date, c.impression_cap,
    c.pricing_model, c.price_amount, c.status, c.needs_review, c.total_spend, c.delivered_impressions,
    c.totals_refreshed_at, c.version, c.created_at, c.updated_at,
    COALESCE((SELECT array_agg(cs.slot_id ORDER BY cs.position) FROM campaign_slots cs WHERE cs.campaign_id = c.id), '{}')`

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.SponsorID,
		&c.CreativeURL,
		&c.StartDate,
		&c.EndDate,
		&c.ImpressionCap,
		&c.PricingModel,
		&c.PriceAmount,
		&c.Status,
		&c.NeedsReview,
		&c.TotalSpend,
		&c.DeliveredImpressions,
		&c.TotalsRefreshedAt,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.SlotIDs,
	)
	return c, err
}

const replaceSlots = `INSERT INTO campaign_slots (campaign_id, slot_id, position)
SELECT $1, s.slot_id, s.position FROM unnest($2::text[]) WITH ORDINALITY AS s(slot_id, position)`

func (s *Store) CreateCampaign(ctx context.Context, c domain.Campaign) error {
	err := s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO campaigns
    (id, name, sponsor_id, creative_url, start_date, end_date, impression_cap, pricing_model, price_amount,
     status, needs_review, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			c.ID, c.Name, c.SponsorID, c.CreativeURL, c.StartDate, c.EndDate, c.ImpressionCap, c.PricingModel,
			c.PriceAmount, c.Status, c.NeedsReview, c.Version, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, replaceSlots, c.ID, c.SlotIDs)
		return err
	})
	return translate("create campaign", err)
}

// UpdateCampaign is a compare-and-set on version. The display caches are
// not written here.
func (s *Store) UpdateCampaign(ctx context.Context, c domain.Campaign, expectedVersion int64) error {
	err := s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE campaigns SET name=$3, creative_url=$4, start_date=$5, end_date=$6,
    impression_cap=$7, pricing_model=$8, price_amount=$9, status=$10, needs_review=$11, updated_at=$12,
    version = version + 1
WHERE id=$1 AND version=$2`,
			c.ID, expectedVersion, c.Name, c.CreativeURL, c.StartDate, c.EndDate, c.ImpressionCap,
			c.PricingModel, c.PriceAmount, c.Status, c.NeedsReview, c.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return s.missingOrStale(ctx, tx, c.ID)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM campaign_slots WHERE campaign_id=$1`, c.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, replaceSlots, c.ID, c.SlotIDs)
		return err
	})
	return translate("update campaign", err)
}

func (s *Store) DeleteCampaign(ctx context.Context, id string, expectedVersion int64) error {
	err := s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM campaigns WHERE id=$1 AND version=$2`, id, expectedVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return s.missingOrStale(ctx, tx, id)
		}
		return nil
	})
	return translate("delete campaign", err)
}

func (s *Store) missingOrStale(ctx context.Context, tx pgx.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("campaign", id)
	}
	return port.ErrStale
}

func (s *Store) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id=$1`, id)
	c, err := pgx.CollectExactlyOneRow(rows, scanCampaign)
	if err != nil {
		return domain.Campaign{}, notFound("get campaign", "campaign", id, err)
	}
	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	var w filter
	if f.SponsorID != "" {
		w.add("c.sponsor_id = $%[1]d", f.SponsorID)
	}
	if f.SlotID != "" {
		w.add("EXISTS (SELECT 1 FROM campaign_slots x WHERE x.campaign_id = c.id AND x.slot_id = $%[1]d)", f.SlotID)
	}
	if len(f.Statuses) > 0 {
		w.add("c.status = ANY($%[1]d)", strs(f.Statuses))
	}
	if f.To != nil {
		w.add("(c.start_date IS NULL OR c.start_date <= $%[1]d)", *f.To)
	}
	if f.From != nil {
		w.add("(c.end_date IS NULL OR c.end_date >= $%[1]d)", *f.From)
	}
	rows, _ := s.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns c`+w.where()+` ORDER BY c.created_at, c.id`, w.args...)
	list, err := pgx.CollectRows(rows, scanCampaign)
	if err != nil {
		return nil, translate("list campaigns", err)
	}
	return list, nil
}

func (s *Store) UpdateTotals(ctx context.Context, id string, spend domain.Money, impressions int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE campaigns SET total_spend=$2, delivered_impressions=$3, totals_refreshed_at=$4 WHERE id=$1`,
		id, spend, impressions, at)
	if err != nil {
		return translate("update campaign totals", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign", id)
	}
	return nil
}

func (s *Store) FlagForReview(ctx context.Context, ids []string) error {
	_, err := s.pool.Exec(ctx, `UPDATE campaigns SET needs_review = TRUE, version = version + 1 WHERE id = ANY($1)`, ids)
	return translate("flag campaigns for review", err)
}
