/*
report.go - Court view and account totals

PURPOSE:
  Builds the per-month rows of the court report and the summary totals.
  Both are pure reads over the same inputs the penalty walk uses; nothing
  here is persisted.

ROW SHAPE:
  Each ledger row becomes one display row, preserving payment dates and
  sources. The month's main debt is the month's own rows folded
  (accrued minus paid, floored at zero) and resets every month; the
  penalty figure is looked up from the source-month breakdown and set
  only on the first row of a month so a rendered table cannot
  double-count it.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// COURT VIEW
// =============================================================================

// BuildCourtView renders the report rows for the period. The period's
// lower bound is clipped to the responsibility window; penalty is taken
// as of the end of the period's last month.
func BuildCourtView(in Input, period Period) ([]CourtViewRow, []RowWarning, error) {
	if period.To.Before(period.From) {
		return nil, nil, ErrInvalidPeriod
	}
	period = period.ClipStart(in.Window.StartDate)

	// Exclusive accrual bound: the first day after the period's last month.
	asOf := period.To.StartOfMonth().AddMonths(1)

	penalty, _, err := PenaltyAsOf(in, asOf)
	if err != nil {
		return nil, nil, err
	}
	buckets, warnings := Aggregate(in.Rows, period)

	var view []CourtViewRow
	for _, bucket := range buckets {
		runningAccrued := decimal.Zero
		runningPaid := decimal.Zero

		for i, row := range bucket.Rows {
			runningAccrued = runningAccrued.Add(row.Accrued)
			runningPaid = runningPaid.Add(row.Paid)

			main := runningAccrued.Sub(runningPaid)
			if main.IsNegative() {
				main = decimal.Zero
			}
			main = Round2(main)

			monthPenalty := decimal.Zero
			if i == 0 {
				if v, ok := penalty.BySourceMonth[bucket.Key]; ok {
					monthPenalty = v
				}
			}

			view = append(view, CourtViewRow{
				Year:             bucket.Year,
				Month:            bucket.Month,
				Accrued:          Round2(row.Accrued),
				Paid:             Round2(row.Paid),
				PaidDate:         row.PaidDate,
				MonthDebtMain:    main,
				MonthDebtPenalty: monthPenalty,
				MonthDebtTotal:   Round2(main.Add(monthPenalty)),
			})
		}
	}
	return view, warnings, nil
}

// =============================================================================
// TOTALS
// =============================================================================

// TotalsAsOf returns the account position as of a date: public principal
// (floored), penalty debt through the day before asOf, and their sum.
func TotalsAsOf(in Input, asOf Date) (Totals, []RowWarning, error) {
	penalty, warnings, err := PenaltyAsOf(in, asOf)
	if err != nil {
		return Totals{}, warnings, err
	}

	timeline, _ := NewPrincipalTimeline(in.Rows, in.Window, in.Options)
	principal := Round2(timeline.PrincipalAt(MonthKeyOf(asOf.AddDays(-1))))

	return Totals{
		Principal:   principal,
		PenaltyDebt: penalty.PenaltyDebt,
		Total:       Round2(principal.Add(penalty.PenaltyDebt)),
	}, warnings, nil
}

// PenaltyBreakdownAsOf exposes the source-month map on its own for
// callers that only render the breakdown.
func PenaltyBreakdownAsOf(in Input, asOf Date) (PenaltyBreakdown, []RowWarning, error) {
	result, warnings, err := PenaltyAsOf(in, asOf)
	if err != nil {
		return nil, warnings, err
	}
	return result.BySourceMonth, warnings, nil
}
