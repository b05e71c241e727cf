/*
penalty.go - Day-accurate late-payment penalty accrual

PURPOSE:
  The algorithmic core of the engine. Walks the timeline from the first
  billed month to asOf in disjoint chronological intervals, accruing
  penalty on the outstanding principal basis of each interval.

THE WALK:
  Interval boundaries are every point where anything the formula depends
  on can change:
    - the start of every calendar month (the principal basis steps at
      month starts: a month's billing is outstanding from its first day,
      and a payment offsets from the start of its attributed month)
    - every rate-table step, at day granularity - statutory changes land
      mid-month
    - every excluded-period edge (From, and the day after To)
    - asOf as the terminal bound (exclusive: accrual runs through the
      day before it; the last known rate is never extrapolated past it)

  Within one interval the basis, the rate, and the exclusion state are
  all constant, so its contribution is simply

      basis * rate/100 * days/365

  on a fixed 365-day year. A non-positive basis (advance) contributes
  zero, never negative penalty. Contributions stay unrounded until the
  end; each source-month total and the grand total round once.

ATTRIBUTION:
  Each interval's contribution is recorded against the calendar month it
  falls in - the "source month" a court report needs, even though the
  basis itself compounds balances spanning many months. Attribution is an
  explicit month-key map, not a positional first-row flag; the view
  builder looks it up by key.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PENALTY ACCRUAL
// =============================================================================

// PenaltyAsOf computes the penalty debt accrued through the day before
// asOf, with a per-source-month breakdown. An asOf on or before the
// responsibility start yields a zero result, not an error.
func PenaltyAsOf(in Input, asOf Date) (PenaltyResult, []RowWarning, error) {
	timeline, warnings := NewPrincipalTimeline(in.Rows, in.Window, in.Options)

	zero := PenaltyResult{PenaltyDebt: decimal.Zero, BySourceMonth: PenaltyBreakdown{}}

	first, ok := timeline.FirstKey()
	if !ok {
		return zero, warnings, nil
	}
	start := first.Date()
	if !in.Window.StartDate.IsZero() && in.Window.StartDate.After(start) {
		start = in.Window.StartDate
	}
	if asOf.BeforeOrEqual(start) {
		return zero, warnings, nil
	}

	resolver := NewRateResolver(in.NormalRates, in.MoratoriumRates)
	// A normal table that starts after the first billed day cannot cover
	// the computation. Surface it up front.
	if _, err := resolver.RateOn(start); err != nil {
		return PenaltyResult{}, warnings, err
	}

	bounds := intervalBounds(start, asOf, resolver, in.ExcludedPeriods)

	raw := make(map[MonthKey]decimal.Decimal)
	total := decimal.Zero

	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]

		basis := timeline.PenaltyBasisAt(MonthKeyOf(a))
		if basis.Sign() <= 0 {
			continue
		}
		if isExcluded(a, in.ExcludedPeriods) {
			continue
		}

		rate, err := resolver.RateOn(a)
		if err != nil {
			return PenaltyResult{}, warnings, err
		}

		days := decimal.NewFromInt(int64(DaysBetween(a, b)))
		contribution := basis.Mul(rate).Mul(days).Div(hundred).Div(daysPerYear)

		key := MonthKeyOf(a)
		raw[key] = raw[key].Add(contribution)
		total = total.Add(contribution)
	}

	breakdown := make(PenaltyBreakdown, len(raw))
	for key, amount := range raw {
		breakdown[key] = Round2(amount)
	}
	return PenaltyResult{PenaltyDebt: Round2(total), BySourceMonth: breakdown}, warnings, nil
}

// intervalBounds returns the sorted, deduplicated boundaries of the walk
// over [start, asOf).
func intervalBounds(start, asOf Date, resolver *RateResolver, excluded []ExcludedPeriod) []Date {
	bounds := []Date{start, asOf}

	for m := start.StartOfMonth().AddMonths(1); m.Before(asOf); m = m.AddMonths(1) {
		if m.After(start) {
			bounds = append(bounds, m)
		}
	}
	bounds = append(bounds, resolver.ChangeDatesIn(start, asOf)...)
	for _, p := range excluded {
		for _, edge := range []Date{p.From, p.To.AddDays(1)} {
			if edge.After(start) && edge.Before(asOf) {
				bounds = append(bounds, edge)
			}
		}
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })
	dedup := bounds[:1]
	for _, d := range bounds[1:] {
		if !d.Equal(dedup[len(dedup)-1]) {
			dedup = append(dedup, d)
		}
	}
	return dedup
}

// isExcluded reports whether the interval starting at a falls inside an
// excluded period. Boundaries are split at every exclusion edge, so the
// interval start speaks for the whole interval.
func isExcluded(a Date, excluded []ExcludedPeriod) bool {
	for _, p := range excluded {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
