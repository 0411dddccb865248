package domain

import (
	"strings"
	"time"
)

// EventType is the kind of delivery being recorded.
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventWatch      EventType = "watch"
)

// ParseEventType normalises an event type.
func ParseEventType(s string) (EventType, bool) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case EventImpression, EventClick, EventWatch:
		return t, true
	}
	return t, false
}

// DeliveryEvent is an immutable row of the delivery ledger.
type DeliveryEvent struct {
	ID         string
	Type       EventType
	CampaignID string
	SlotID     string
	OccurredAt time.Time
	// WatchMs is only non-zero for watch events.
	WatchMs int64
}

// Counters are the raw aggregates over a set of ledger rows.
type Counters struct {
	Impressions int64
	Clicks      int64
	WatchTimeMs int64
}

// Add accumulates o into c.
func (c *Counters) Add(o Counters) {
	c.Impressions += o.Impressions
	c.Clicks += o.Clicks
	c.WatchTimeMs += o.WatchTimeMs
}

// CTR is clicks over impressions, zero when nothing was shown.
func (c Counters) CTR() float64 {
	if c.Impressions == 0 {
		return 0
	}
	return float64(c.Clicks) / float64(c.Impressions)
}

// CountEvent returns the counters contributed by a single event.
func CountEvent(e DeliveryEvent) Counters {
	switch e.Type {
	case EventImpression:
		return Counters{Impressions: 1}
	case EventClick:
		return Counters{Clicks: 1}
	case EventWatch:
		return Counters{WatchTimeMs: e.WatchMs}
	}
	return Counters{}
}

// DayCounters are the counters of one campaign for one UTC calendar day.
type DayCounters struct {
	Day        time.Time
	CampaignID string
	Counters
}

// DayOf truncates t to the start of its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
