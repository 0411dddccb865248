package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

const (
	seedSponsorID = "seed-sponsor-acme"
	seedDays      = 14
)

// Seed inserts a demo sponsor with two slots, an active flat campaign and a
// CPM campaign, and two weeks of deliveries. It does nothing when the demo
// sponsor already exists.
func Seed(ctx context.Context, store port.Store, now time.Time) error {
	_, err := store.GetSponsor(ctx, seedSponsorID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	now = now.UTC()
	tax := "GSTIN-27AAACA0000A1Z5"
	sponsor := domain.Sponsor{
		ID:            seedSponsorID,
		Name:          "Acme Beverages",
		ContactPerson: "Riya Sharma",
		Email:         "sponsorships@acme.example",
		Phone:         "+91-20-5550-0100",
		TaxID:         &tax,
		Tier:          domain.TierGold,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err = store.CreateSponsor(ctx, sponsor); err != nil {
		return err
	}

	slots := []domain.AdSlot{
		{ID: "seed-slot-banner", Type: domain.SlotBannerBottom, DurationSec: 10, PriceModel: domain.PriceFlat, PriceAmount: 50000},
		{ID: "seed-slot-preroll", Type: domain.SlotPreRoll, DurationSec: 15, PriceModel: domain.PriceCPM, PriceAmount: 2500},
	}
	for _, s := range slots {
		s.Active, s.CreatedAt, s.UpdatedAt = true, now, now
		if err = store.CreateSlot(ctx, s); err != nil {
			return err
		}
	}

	start := domain.DayOf(now).AddDate(0, 0, -seedDays)
	end := domain.DayOf(now).AddDate(0, 1, 0)
	campaigns := []domain.Campaign{
		{ID: "seed-campaign-flat", Name: "Summer Cup Banner", SlotIDs: []string{slots[0].ID}, PricingModel: domain.PricingFlat, PriceAmount: slots[0].PriceAmount},
		{ID: "seed-campaign-cpm", Name: "Finals Pre-roll", SlotIDs: []string{slots[1].ID}, PricingModel: domain.PricingCPM, PriceAmount: slots[1].PriceAmount},
	}
	for _, c := range campaigns {
		c.SponsorID = sponsor.ID
		c.CreativeURL = fmt.Sprintf("https://cdn.acme.example/creative/%s.png", c.ID)
		c.StartDate, c.EndDate = &start, &end
		c.Status = domain.StatusActive
		c.CreatedAt, c.UpdatedAt = now, now
		if err = store.CreateCampaign(ctx, c); err != nil {
			return err
		}
	}

	r := rand.New(rand.NewPCG(uint64(now.Unix()), 0x5eed))
	for day := range seedDays {
		at := start.AddDate(0, 0, day)
		for _, c := range campaigns {
			impressions := 50 + r.IntN(150)
			for i := range impressions {
				offset := time.Duration(r.Int64N(int64(24 * time.Hour)))
				e := domain.DeliveryEvent{
					ID:         uuid.NewString(),
					Type:       domain.EventImpression,
					CampaignID: c.ID,
					SlotID:     c.SlotIDs[0],
					OccurredAt: at.Add(offset),
				}
				if err = store.AppendEvent(ctx, e); err != nil {
					return err
				}
				// roughly 4% click-through
				if i%25 == 0 {
					e.ID, e.Type = uuid.NewString(), domain.EventClick
					if err = store.AppendEvent(ctx, e); err != nil {
						return err
					}
				}
				if c.SlotIDs[0] == slots[1].ID && i%5 == 0 {
					e.ID, e.Type, e.WatchMs = uuid.NewString(), domain.EventWatch, int64(5000+r.IntN(10000))
					if err = store.AppendEvent(ctx, e); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
