/*
aggregate.go - Ledger aggregation into month buckets

PURPOSE:
  Folds an unordered list of ledger rows into per-month accrual/payment
  totals while keeping every individual row. Multiple rows in a month are
  summed for the month totals but retained for display (payment dates,
  sources) - aggregation never collapses the audit trail.

VALIDATION:
  Rows with a month outside 1..12, a non-positive year, or a negative
  accrued/paid amount are rejected from aggregation and reported in the
  warnings list. The rest of the ledger computes normally.
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH BUCKET - One calendar month of the ledger
// =============================================================================

// MonthBucket holds one month's rows and their folded totals.
type MonthBucket struct {
	Key   MonthKey
	Year  int
	Month int

	Accrued decimal.Decimal
	Paid    decimal.Decimal

	// Rows in input order. Never merged.
	Rows []LedgerRow
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate folds rows into month buckets ordered by (year, month),
// filtered to months inside the period (inclusive). Malformed rows are
// skipped and reported as warnings.
func Aggregate(rows []LedgerRow, period Period) ([]MonthBucket, []RowWarning) {
	byKey := make(map[MonthKey]*MonthBucket)
	var warnings []RowWarning

	for i, row := range rows {
		if reason := validateRow(row); reason != "" {
			warnings = append(warnings, RowWarning{Index: i, Reason: reason})
			continue
		}
		if !period.ContainsMonth(row.Year, monthOf(row.Month)) {
			continue
		}

		key := row.Key()
		b, ok := byKey[key]
		if !ok {
			b = &MonthBucket{
				Key:     key,
				Year:    row.Year,
				Month:   row.Month,
				Accrued: decimal.Zero,
				Paid:    decimal.Zero,
			}
			byKey[key] = b
		}
		b.Accrued = b.Accrued.Add(row.Accrued)
		b.Paid = b.Paid.Add(row.Paid)
		b.Rows = append(b.Rows, row)
	}

	buckets := make([]MonthBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets, warnings
}

// validateRow returns a rejection reason, or "" when the row is sound.
func validateRow(row LedgerRow) string {
	if row.Year <= 0 {
		return fmt.Sprintf("year %d out of range", row.Year)
	}
	if row.Month < 1 || row.Month > 12 {
		return fmt.Sprintf("month %d out of range", row.Month)
	}
	if row.Accrued.IsNegative() {
		return "negative accrued amount"
	}
	if row.Paid.IsNegative() {
		return "negative paid amount"
	}
	if !row.PaymentPeriod.IsZero() && !row.PaymentPeriod.Valid() {
		return fmt.Sprintf("unparseable payment period %q", row.PaymentPeriod)
	}
	return ""
}
