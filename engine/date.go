/*
date.go - Canonical date handling for the billing engine

PURPOSE:
  All engine dates are day-granular and UTC. This file defines the Date
  type, the tolerant-but-strict parser, and the month arithmetic that the
  aggregator, penalty walk, and report builder all share.

PARSING:
  Ledgers arrive from two worlds: exports that use ISO (2025-01-31) and
  hand-entered records that use the localized form (31.01.2025). Both are
  accepted. Anything else fails with InvalidDateError - a silently
  defaulted date would corrupt a court filing, so there is no fallback.

DAY COUNT:
  DaysBetween uses plain calendar-day subtraction. The statutory penalty
  formula divides by a fixed 365 regardless of leap years; that constant
  lives in penalty.go where it is applied.

SEE ALSO:
  - period.go: Period and MonthKey
  - penalty.go: interval walk built on these dates
*/
package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granular point in time
// =============================================================================

// Date is a calendar day. The zero value means "not set" (e.g. a ledger
// row with no payment has no paid date).
type Date struct {
	t time.Time
}

const (
	layoutISO       = "2006-01-02"
	layoutLocalized = "02.01.2006"
)

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDateAny parses ISO (YYYY-MM-DD) and localized (DD.MM.YYYY) forms.
// Unparseable input fails; it is never coerced to a default date.
func ParseDateAny(s string) (Date, error) {
	for _, layout := range []string{layoutISO, layoutLocalized} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t: t.UTC()}, nil
		}
	}
	return Date{}, &InvalidDateError{Input: s}
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layoutISO)
}

// Localized formats the date in the DD.MM.YYYY form used on printed
// statements.
func (d Date) Localized() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layoutLocalized)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1).AddMonths(1).AddDays(-1)
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, 1).AddMonths(1).AddDays(-1)
}

// DaysBetween returns the number of calendar days from 'from' to 'to'.
// Negative when 'to' precedes 'from'.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MinDate and MaxDate pick the earlier/later of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
