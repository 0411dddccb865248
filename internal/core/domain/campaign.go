package domain

import (
	"slices"
	"strings"
	"time"
)

// PricingModel is the campaign-level model used to compute spend.
type PricingModel string

const (
	PricingFlat PricingModel = "flat"
	PricingCPM  PricingModel = "cpm"
	PricingCPC  PricingModel = "cpc"
)

// ParsePricingModel normalises a campaign pricing model.
func ParsePricingModel(s string) (PricingModel, bool) {
	m := PricingModel(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PricingFlat, PricingCPM, PricingCPC:
		return m, true
	}
	return m, false
}

// Spend computes the amount owed for the delivered counters. CPM divides by
// one thousand with half-up rounding; flat is a one-time charge.
func (m PricingModel) Spend(rate Money, c Counters) (quantity int64, amount Money, err error) {
	switch m {
	case PricingCPM:
		amount, err = rate.MulDiv(c.Impressions, 1000)
		return c.Impressions, amount, err
	case PricingCPC:
		amount, err = rate.MulDiv(c.Clicks, 1)
		return c.Clicks, amount, err
	default:
		return 1, rate, nil
	}
}

// Campaign is a time-bounded assignment of a creative to slots.
//
// TotalSpend and DeliveredImpressions are display caches refreshed from the
// ledger; they are never used for billing.
type Campaign struct {
	ID            string
	Name          string
	SponsorID     string
	SlotIDs       []string
	CreativeURL   string
	StartDate     *time.Time
	EndDate       *time.Time
	ImpressionCap *int64
	PricingModel  PricingModel
	// PriceAmount is the rate snapshotted at creation or slot change.
	PriceAmount Money
	Status      CampaignStatus
	// NeedsReview is set when a slot used by the campaign was later locked
	// to another sponsor.
	NeedsReview          bool
	TotalSpend           Money
	DeliveredImpressions int64
	TotalsRefreshedAt    *time.Time
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasSlot reports whether slotID belongs to the campaign.
func (c Campaign) HasSlot(slotID string) bool {
	return slices.Contains(c.SlotIDs, slotID)
}

// Overlaps reports whether the campaign's flight intersects [from, to].
// Campaigns with an open bound extend indefinitely in that direction.
func (c Campaign) Overlaps(from, to *time.Time) bool {
	if to != nil && c.StartDate != nil && c.StartDate.After(*to) {
		return false
	}
	if from != nil && c.EndDate != nil && c.EndDate.Before(*from) {
		return false
	}
	return true
}

// Expired reports whether the end date has passed at now.
func (c Campaign) Expired(now time.Time) bool {
	return c.EndDate != nil && !c.EndDate.After(now)
}
