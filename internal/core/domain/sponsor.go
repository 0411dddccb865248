package domain

import (
	"strings"
	"time"
)

// Tier is the commercial package of a sponsor. Tiers are ordered and affect
// discount and priority but never hard-code pricing.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierRank = map[Tier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// ParseTier normalises a textual tier. ok is false for unknown values.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := tierRank[t]
	return t, ok
}

// Rank orders tiers; unknown tiers rank 0.
func (t Tier) Rank() int { return tierRank[t] }

// Less reports whether t ranks below o.
func (t Tier) Less(o Tier) bool { return t.Rank() < o.Rank() }

// DiscountBps is the advisory discount in basis points. It is reported on
// sponsor records and never applied to invoice totals.
func (t Tier) DiscountBps() int {
	switch t {
	case TierSilver:
		return 250
	case TierGold:
		return 500
	case TierPlatinum:
		return 1000
	default:
		return 0
	}
}

// Sponsor is an advertiser that owns campaigns and receives invoices.
type Sponsor struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	TaxID         *string
	Tier          Tier
	LogoURL       *string
	AgentID       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
