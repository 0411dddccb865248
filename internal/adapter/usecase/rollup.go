package usecase

import (
	"sync"
	"time"

	"sponsorhub/internal/core/domain"
)

// dayCounters maps campaign ID to its counters for one UTC day.
type dayCounters map[string]domain.Counters

// dayRollup caches complete UTC days of the ledger. A per-day generation
// is bumped on every invalidation so a fill that raced with a new event
// for the same day is discarded instead of stored.
type dayRollup struct {
	mu      sync.Mutex
	days    map[time.Time]dayCounters
	gens    map[time.Time]uint64
	maxDays int
}

func newDayRollup(maxDays int) *dayRollup {
	return &dayRollup{
		days:    make(map[time.Time]dayCounters),
		gens:    make(map[time.Time]uint64),
		maxDays: maxDays,
	}
}

func (r *dayRollup) get(day time.Time) (dayCounters, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.days[day]
	return d, ok
}

// generations snapshots the generation of each day before a fill.
func (r *dayRollup) generations(days []time.Time) map[time.Time]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[time.Time]uint64, len(days))
	for _, d := range days {
		out[d] = r.gens[d]
	}
	return out
}

// store caches counters for day unless it was invalidated after gen was
// taken.
func (r *dayRollup) store(day time.Time, gen uint64, counters dayCounters) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[day] != gen {
		return false
	}
	if len(r.days) >= r.maxDays {
		clear(r.days)
	}
	r.days[day] = counters
	return true
}

func (r *dayRollup) invalidate(day time.Time) {
	r.mu.Lock()
	delete(r.days, day)
	r.gens[day]++
	r.mu.Unlock()
}

// sum totals the counters of day restricted to ids, or of every campaign
// when ids is nil.
func (d dayCounters) sum(ids map[string]struct{}) domain.Counters {
	var total domain.Counters
	for id, c := range d {
		if ids != nil {
			if _, ok := ids[id]; !ok {
				continue
			}
		}
		total.Add(c)
	}
	return total
}
