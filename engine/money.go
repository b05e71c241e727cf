/*
money.go - Monetary precision rules

PURPOSE:
  Monetary values are decimal.Decimal throughout. Intermediate accrual
  math keeps full decimal precision; only output boundaries round, so
  a ledger summed over years never drifts by binary-float error.

ROUNDING:
  Round2 is half-up to two places. Every amount that leaves the engine
  (court rows, totals, breakdown entries) passes through it, which makes
  totals reproducible across runs - an invariant the court output relies
  on.
*/
package engine

import "github.com/shopspring/decimal"

// daysPerYear is the statutory day-count convention. No leap-year
// adjustment: 365 even in leap years.
var daysPerYear = decimal.NewFromInt(365)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary amount half-up to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MustDecimal parses a decimal literal in tests and seed data.
// It is not for request input; malformed input there must surface
// an error, not a zero.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("engine: bad decimal literal " + s)
	}
	return d
}
