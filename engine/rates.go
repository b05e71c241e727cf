/*
rates.go - Statutory rate schedule resolution

PURPOSE:
  Resolves the annual interest rate applicable on any date from two
  piecewise tables: the normal refinancing-rate table and the moratorium
  table. A moratorium entry active on the date overrides the normal rate.

FAILURE MODE:
  Asking for a rate before the earliest normal entry is a configuration
  error (NoApplicableRate), surfaced rather than silently treated as 0%.
  Past the last entry the last known rate holds - but the penalty walk
  never extrapolates past its asOf bound.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE RESOLVER
// =============================================================================

// RateResolver answers "what annual rate applies on date d". Build one
// per computation; it sorts copies of the tables and never mutates the
// caller's slices.
type RateResolver struct {
	normal     []RateScheduleEntry
	moratorium []RateScheduleEntry
}

func NewRateResolver(normal, moratorium []RateScheduleEntry) *RateResolver {
	return &RateResolver{
		normal:     sortedByEffectiveFrom(normal),
		moratorium: sortedByEffectiveFrom(moratorium),
	}
}

func sortedByEffectiveFrom(entries []RateScheduleEntry) []RateScheduleEntry {
	out := make([]RateScheduleEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveFrom.Before(out[j].EffectiveFrom)
	})
	return out
}

// latestAtOrBefore returns the entry with the latest EffectiveFrom <= d.
func latestAtOrBefore(entries []RateScheduleEntry, d Date) (RateScheduleEntry, bool) {
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].EffectiveFrom.After(d)
	})
	if i == 0 {
		return RateScheduleEntry{}, false
	}
	return entries[i-1], true
}

// RateOn returns the annual rate percent applicable on d. Moratorium
// takes precedence when an entry is active for the day.
func (r *RateResolver) RateOn(d Date) (decimal.Decimal, error) {
	if m, ok := latestAtOrBefore(r.moratorium, d); ok && m.Active(d) {
		return m.AnnualRatePercent, nil
	}
	n, ok := latestAtOrBefore(r.normal, d)
	if !ok {
		return decimal.Zero, &NoApplicableRateError{Date: d}
	}
	return n.AnnualRatePercent, nil
}

// ChangeDatesIn returns every date strictly inside (from, to) where the
// resolved rate may step: entry starts from both tables, plus the day a
// moratorium entry lapses. The penalty walk splits intervals at these so
// a statutory mid-month change is honored at day granularity.
func (r *RateResolver) ChangeDatesIn(from, to Date) []Date {
	var out []Date
	add := func(d Date) {
		if d.After(from) && d.Before(to) {
			out = append(out, d)
		}
	}
	for _, e := range r.normal {
		add(e.EffectiveFrom)
	}
	for _, e := range r.moratorium {
		add(e.EffectiveFrom)
		if !e.EffectiveTo.IsZero() {
			add(e.EffectiveTo.AddDays(1))
		}
	}
	return out
}
