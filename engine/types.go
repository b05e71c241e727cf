/*
Package engine is the debt-and-penalty accrual core of the utility
billing system.

PURPOSE:
  The engine turns a raw monthly payment ledger into a running principal
  balance, a day-accurate late-payment penalty against a piecewise
  statutory rate schedule, and court-ready monthly breakdowns.

KEY CONCEPTS IN THIS FILE (types.go):
  - LedgerRow: one line of the monthly ledger (a month may hold several)
  - RateScheduleEntry: a step in the normal or moratorium rate table
  - ExcludedPeriod: a range where penalty (not principal) is suspended
  - ResponsibilityWindow: when the account is financially responsible
  - CourtViewRow / Totals / PenaltyBreakdown: the derived outputs

DESIGN PRINCIPLES:
  1. Purity: every computation is a function of its arguments. The engine
     holds no state, performs no I/O, and never mutates its inputs.
  2. Precision: decimal.Decimal for all money; rounding only at output.
  3. Determinism: identical inputs produce identical outputs. The results
     feed legal filings, so this is an invariant, not an aspiration.
  4. Resilience: one malformed historical row is skipped and reported,
     never allowed to block the rest of the ledger.

USAGE:
  in := engine.Input{
      Rows:        rows,
      NormalRates: normal,
      Window:      engine.ResponsibilityWindow{StartDate: start},
      Options:     engine.Options{ApplyAdvanceOffset: true, AllowNegativePrincipal: true},
  }
  totals, warnings, err := engine.TotalsAsOf(in, asOf)

SEE ALSO:
  - aggregate.go: folds rows into month buckets
  - principal.go: cumulative principal timeline
  - rates.go:     rate schedule resolution
  - penalty.go:   the interval accrual walk
  - report.go:    court view and totals
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER ROW - One line of the monthly ledger
// =============================================================================

// LedgerRow is one billing or payment line for an account. A month may
// contain multiple rows (an accrual row plus one or more payment rows);
// rows are never merged into a single event - this is a ledger, not a
// balance counter.
type LedgerRow struct {
	Year  int
	Month int // 1..12

	// Accrued is the amount billed in the month; Paid the amount
	// actually received. Both non-negative.
	Accrued decimal.Decimal
	Paid    decimal.Decimal

	// PaidDate is the real-world date the payment was recorded.
	// Zero when Paid is zero. It is audit data: nothing in the engine
	// ever rewrites it.
	PaidDate Date

	// Source is a free-form label (bank account, cashier). Informational.
	Source string

	// PaymentPeriod, when set, re-attributes which month's principal the
	// payment offsets for penalty purposes. PaidDate stays untouched.
	PaymentPeriod MonthKey
}

// Key returns the month the row belongs to.
func (r LedgerRow) Key() MonthKey {
	return NewMonthKey(r.Year, monthOf(r.Month))
}

// OffsetKey returns the month the row's payment offsets for penalty
// attribution: PaymentPeriod when present, the row's own month otherwise.
func (r LedgerRow) OffsetKey() MonthKey {
	if !r.PaymentPeriod.IsZero() {
		return r.PaymentPeriod
	}
	return r.Key()
}

// =============================================================================
// RATE SCHEDULES
// =============================================================================

// RateScheduleEntry is one step of a piecewise rate table. The rate
// applicable on date d is the entry with the latest EffectiveFrom <= d.
// EffectiveTo is optional and only meaningful on moratorium entries;
// zero means open-ended.
type RateScheduleEntry struct {
	EffectiveFrom     Date
	EffectiveTo       Date
	AnnualRatePercent decimal.Decimal
}

// Active reports whether the entry covers date d.
func (e RateScheduleEntry) Active(d Date) bool {
	if d.Before(e.EffectiveFrom) {
		return false
	}
	return e.EffectiveTo.IsZero() || d.BeforeOrEqual(e.EffectiveTo)
}

// =============================================================================
// EXCLUSION AND RESPONSIBILITY
// =============================================================================

// ExcludedPeriod suspends penalty accrual for the inclusive range
// [From, To]. It never affects principal accrual or payment recognition.
type ExcludedPeriod struct {
	From   Date
	To     Date
	Reason string
}

// Contains reports whether the day d falls inside the period.
func (p ExcludedPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.From) && d.BeforeOrEqual(p.To)
}

// ResponsibilityWindow is the interval during which the account is
// financially responsible for the premises. Months before StartDate are
// never billed or penalized. Zero EndDate means open.
type ResponsibilityWindow struct {
	StartDate Date
	EndDate   Date
}

// ContainsMonth reports whether the month may carry billing.
func (w ResponsibilityWindow) ContainsMonth(k MonthKey) bool {
	first := k.Date()
	if !w.StartDate.IsZero() && first.EndOfMonth().Before(w.StartDate) {
		return false
	}
	if !w.EndDate.IsZero() && first.After(w.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options control the advance-offset policy of the penalty math.
type Options struct {
	// ApplyAdvanceOffset recognizes each payment at the start of its
	// attributed month (PaymentPeriod, else own month) on the penalty
	// timeline, so an advance payment suppresses penalty on months it
	// covers. When false, payments count in their own calendar month.
	ApplyAdvanceOffset bool

	// AllowNegativePrincipal removes the zero floor from the penalty
	// basis so an overpayment carries forward as negative principal
	// until consumed. Public-facing debt is always floored regardless.
	AllowNegativePrincipal bool
}

// =============================================================================
// INPUT - Everything one computation needs
// =============================================================================

// Input carries the full context of one account's computation. The engine
// takes all state as arguments; there are no ambient lookups.
type Input struct {
	Rows            []LedgerRow
	ExcludedPeriods []ExcludedPeriod
	NormalRates     []RateScheduleEntry
	MoratoriumRates []RateScheduleEntry
	Window          ResponsibilityWindow
	Options         Options
}

// =============================================================================
// OUTPUTS - Ephemeral computed views, never persisted by the engine
// =============================================================================

// CourtViewRow is one display row of the court report. Each LedgerRow
// becomes one view row; only the first row of a month carries the
// penalty figure, so a rendered table never double-counts it.
type CourtViewRow struct {
	Year  int
	Month int

	Accrued  decimal.Decimal
	Paid     decimal.Decimal
	PaidDate Date

	// MonthDebtMain is the month's own unpaid remainder, floored at
	// zero: public-facing debt never shows negative.
	MonthDebtMain    decimal.Decimal
	MonthDebtPenalty decimal.Decimal
	MonthDebtTotal   decimal.Decimal
}

// Totals is the account position as of a date.
type Totals struct {
	Principal   decimal.Decimal
	PenaltyDebt decimal.Decimal
	Total       decimal.Decimal
}

// PenaltyBreakdown maps a source month to the penalty amount that
// originated in it.
type PenaltyBreakdown map[MonthKey]decimal.Decimal

// PenaltyResult is the output of the accrual walk.
type PenaltyResult struct {
	PenaltyDebt   decimal.Decimal
	BySourceMonth PenaltyBreakdown
}
