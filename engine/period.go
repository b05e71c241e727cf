/*
period.go - Reporting periods and month keys

PURPOSE:
  MonthKey is how the engine addresses calendar months: the "YYYY-MM"
  string that keys penalty breakdowns and orders month buckets. Period is
  the month-aligned reporting window supplied by callers.

ORDERING:
  MonthKey compares correctly as a plain string for four-digit years,
  which keeps breakdown maps trivially sortable for display.
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH KEY - "YYYY-MM" address of a calendar month
// =============================================================================

type MonthKey string

func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// MonthKeyOf returns the key of the month containing the date.
func MonthKeyOf(d Date) MonthKey {
	return NewMonthKey(d.Year(), d.Month())
}

// Date returns the first day of the keyed month.
func (k MonthKey) Date() Date {
	var year, month int
	if _, err := fmt.Sscanf(string(k), "%4d-%2d", &year, &month); err != nil {
		return Date{}
	}
	return NewDate(year, time.Month(month), 1)
}

func (k MonthKey) Next() MonthKey {
	return MonthKeyOf(k.Date().AddMonths(1))
}

func (k MonthKey) IsZero() bool { return k == "" }

// Valid reports whether the key parses back to a real month.
func (k MonthKey) Valid() bool {
	return !k.Date().IsZero()
}

// =============================================================================
// PERIOD - Month-aligned reporting window
// =============================================================================

// Period is the reporting window for breakdowns. From/To are inclusive;
// month membership is what matters, so a row belongs to the period when
// its (year, month) falls between the From month and the To month.
type Period struct {
	From Date
	To   Date
}

// ContainsMonth reports whether the given month is inside the period.
func (p Period) ContainsMonth(year int, month time.Month) bool {
	k := monthIndex(year, month)
	return k >= monthIndex(p.From.Year(), p.From.Month()) &&
		k <= monthIndex(p.To.Year(), p.To.Month())
}

// ClipStart raises the period's lower bound to 'start' when the period
// begins earlier. Used to honor the responsibility window: months before
// it are never billed or penalized.
func (p Period) ClipStart(start Date) Period {
	if !start.IsZero() && p.From.Before(start) {
		return Period{From: start, To: p.To}
	}
	return p
}

func (p Period) String() string {
	return "[" + p.From.String() + ", " + p.To.String() + "]"
}

func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

func monthOf(m int) time.Month { return time.Month(m) }
