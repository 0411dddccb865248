package domain

import (
	"strings"
	"time"
)

// SlotType enumerates the sellable placements.
type SlotType string

const (
	SlotPreRoll        SlotType = "pre_roll"
	SlotMidRoll        SlotType = "mid_roll"
	SlotPostRoll       SlotType = "post_roll"
	SlotBannerLeft     SlotType = "banner_left"
	SlotBannerBottom   SlotType = "banner_bottom"
	SlotBannerRight    SlotType = "banner_right"
	SlotTicker         SlotType = "ticker"
	SlotPopupCard      SlotType = "popup_card"
	SlotTimerExtension SlotType = "timer_extension"
)

var slotTypes = map[SlotType]struct{}{
	SlotPreRoll:        {},
	SlotMidRoll:        {},
	SlotPostRoll:       {},
	SlotBannerLeft:     {},
	SlotBannerBottom:   {},
	SlotBannerRight:    {},
	SlotTicker:         {},
	SlotPopupCard:      {},
	SlotTimerExtension: {},
}

// ParseSlotType accepts both "banner-bottom" and "banner_bottom".
func ParseSlotType(s string) (SlotType, bool) {
	t := SlotType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	_, ok := slotTypes[t]
	return t, ok
}

// PriceModel is how a slot is priced in the catalog.
type PriceModel string

const (
	PriceFlat PriceModel = "flat"
	PriceCPM  PriceModel = "cpm"
)

// ParsePriceModel normalises a slot price model.
func ParsePriceModel(s string) (PriceModel, bool) {
	m := PriceModel(strings.ToLower(strings.TrimSpace(s)))
	return m, m == PriceFlat || m == PriceCPM
}

// AdSlot is a unit of sellable inventory.
type AdSlot struct {
	ID          string
	Type        SlotType
	DurationSec int
	PriceModel  PriceModel
	PriceAmount Money
	// SponsorLock restricts new campaigns on this slot to one sponsor.
	SponsorLock *string
	CreativeURL *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AllowsSponsor reports whether a campaign of sponsorID may use the slot.
func (s AdSlot) AllowsSponsor(sponsorID string) bool {
	return s.SponsorLock == nil || *s.SponsorLock == sponsorID
}
