/*
principal.go - Running principal balance

PURPOSE:
  Computes the cumulative principal debt at any month from the start of
  the account's responsibility window. Two payment attributions are kept
  side by side:

    own month:        the calendar month the payment row sits in. This is
                      what audit-facing reads and the public principal use.
    attributed month: PaymentPeriod when the row carries one, else the own
                      month. This is what the penalty timeline uses, so a
                      "pay for period" tag moves the offset without ever
                      touching the recorded payment date.

DUAL MODE:
  Public principal is always floored at zero - displayed debt can never
  be negative. The penalty basis may go negative when
  AllowNegativePrincipal is set, so an overpayment carries forward and
  suppresses penalty on subsequently billed months until consumed.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRINCIPAL TIMELINE
// =============================================================================

type principalPoint struct {
	key         MonthKey
	cumAccrued  decimal.Decimal
	cumPaidOwn  decimal.Decimal
	cumPaidAttr decimal.Decimal
}

// PrincipalTimeline is the month-by-month cumulative position of one
// account. Immutable once built.
type PrincipalTimeline struct {
	points []principalPoint
	opts   Options
}

// NewPrincipalTimeline builds the timeline from raw rows. Rows outside
// the responsibility window are dropped (never billed); malformed rows
// are skipped and reported.
func NewPrincipalTimeline(rows []LedgerRow, window ResponsibilityWindow, opts Options) (*PrincipalTimeline, []RowWarning) {
	type monthSums struct {
		accrued  decimal.Decimal
		paidOwn  decimal.Decimal
		paidAttr decimal.Decimal
	}
	sums := make(map[MonthKey]*monthSums)
	var warnings []RowWarning

	at := func(k MonthKey) *monthSums {
		s, ok := sums[k]
		if !ok {
			s = &monthSums{accrued: decimal.Zero, paidOwn: decimal.Zero, paidAttr: decimal.Zero}
			sums[k] = s
		}
		return s
	}

	firstAllowed := MonthKey("")
	if !window.StartDate.IsZero() {
		firstAllowed = MonthKeyOf(window.StartDate)
	}

	for i, row := range rows {
		if reason := validateRow(row); reason != "" {
			warnings = append(warnings, RowWarning{Index: i, Reason: reason})
			continue
		}
		key := row.Key()
		if !window.ContainsMonth(key) {
			continue
		}

		s := at(key)
		s.accrued = s.accrued.Add(row.Accrued)
		s.paidOwn = s.paidOwn.Add(row.Paid)

		// A payment period earlier than the window cannot offset months
		// that were never billed; clamp it to the first billable month.
		offset := row.OffsetKey()
		if !firstAllowed.IsZero() && offset < firstAllowed {
			offset = firstAllowed
		}
		s2 := at(offset)
		s2.paidAttr = s2.paidAttr.Add(row.Paid)
	}

	if len(sums) == 0 {
		return &PrincipalTimeline{opts: opts}, warnings
	}

	keys := make([]MonthKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	// Fill every month between the first and last activity so the
	// timeline is contiguous; the balance holds constant over gaps.
	var points []principalPoint
	cumA, cumPO, cumPA := decimal.Zero, decimal.Zero, decimal.Zero
	for k := keys[0]; k <= keys[len(keys)-1]; k = k.Next() {
		if s, ok := sums[k]; ok {
			cumA = cumA.Add(s.accrued)
			cumPO = cumPO.Add(s.paidOwn)
			cumPA = cumPA.Add(s.paidAttr)
		}
		points = append(points, principalPoint{
			key:         k,
			cumAccrued:  cumA,
			cumPaidOwn:  cumPO,
			cumPaidAttr: cumPA,
		})
	}

	return &PrincipalTimeline{points: points, opts: opts}, warnings
}

// FirstKey returns the first month with ledger activity.
func (pt *PrincipalTimeline) FirstKey() (MonthKey, bool) {
	if len(pt.points) == 0 {
		return "", false
	}
	return pt.points[0].key, true
}

// pointAt returns the cumulative position as of the given month: the
// latest point at or before it.
func (pt *PrincipalTimeline) pointAt(k MonthKey) (principalPoint, bool) {
	i := sort.Search(len(pt.points), func(i int) bool { return pt.points[i].key > k })
	if i == 0 {
		return principalPoint{}, false
	}
	return pt.points[i-1], true
}

// PrincipalAt returns the public-facing principal debt as of the given
// month: cumulative accrued minus cumulative paid, floored at zero.
func (pt *PrincipalTimeline) PrincipalAt(k MonthKey) decimal.Decimal {
	p, ok := pt.pointAt(k)
	if !ok {
		return decimal.Zero
	}
	debt := p.cumAccrued.Sub(p.cumPaidOwn)
	if debt.IsNegative() {
		return decimal.Zero
	}
	return debt
}

// PenaltyBasisAt returns the balance the penalty walk accrues on during
// the given month, honoring the advance-offset options.
func (pt *PrincipalTimeline) PenaltyBasisAt(k MonthKey) decimal.Decimal {
	p, ok := pt.pointAt(k)
	if !ok {
		return decimal.Zero
	}
	paid := p.cumPaidOwn
	if pt.opts.ApplyAdvanceOffset {
		paid = p.cumPaidAttr
	}
	basis := p.cumAccrued.Sub(paid)
	if basis.IsNegative() && !pt.opts.AllowNegativePrincipal {
		return decimal.Zero
	}
	return basis
}
