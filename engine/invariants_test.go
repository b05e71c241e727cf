/*
invariants_test.go - Engine-wide guarantees

PURPOSE:
  These tests pin the properties the court output depends on, across
  components rather than per function:

  1. Determinism  - identical inputs, identical outputs, every time
  2. Exclusion neutrality - exclusions touch penalty, never principal
  3. Non-retroactivity - a "pay for period" tag never moves a paid date
  4. Zero floor   - displayed main debt is never negative

READING THESE TESTS:
  Each has GIVEN/WHEN/THEN comments describing the scenario and the
  guarantee it locks in. They are intentionally verbose; they double as
  documentation of the engine's contract.
*/
package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/komuna/debt-engine/engine"
)

func scenarioInput() engine.Input {
	payment := paymentRow(2025, 4, "150", "18.04.2025")
	payment.PaymentPeriod = "2025-03"
	in := baseInput([]engine.LedgerRow{
		accrualRow(2025, 1, "120.50"),
		accrualRow(2025, 2, "120.50"),
		paymentRow(2025, 2, "100", "14.02.2025"),
		accrualRow(2025, 3, "130.75"),
		payment,
		accrualRow(2025, 4, "130.75"),
	})
	in.MoratoriumRates = []engine.RateScheduleEntry{
		boundedRateEntry("2025-03-10", "2025-03-25", "4"),
	}
	in.ExcludedPeriods = []engine.ExcludedPeriod{{
		From:   date(2025, time.February, 5),
		To:     date(2025, time.February, 20),
		Reason: "disputed meter reading",
	}}
	return in
}

func TestInvariant_Determinism(t *testing.T) {
	// GIVEN: A ledger exercising rates, moratorium, exclusion, and
	//        reattribution at once
	// WHEN: Computing the same outputs twice
	// THEN: Byte-identical results - they feed legal filings

	in := scenarioInput()
	asOf := date(2025, time.June, 1)
	period := engine.Period{From: date(2025, time.January, 1), To: date(2025, time.May, 31)}

	render := func() string {
		totals, _, err := engine.TotalsAsOf(in, asOf)
		if err != nil {
			t.Fatal(err)
		}
		view, _, err := engine.BuildCourtView(in, period)
		if err != nil {
			t.Fatal(err)
		}
		breakdown, _, err := engine.PenaltyBreakdownAsOf(in, asOf)
		if err != nil {
			t.Fatal(err)
		}
		return fmt.Sprintf("%v|%v|%v", totals, view, breakdown)
	}

	first := render()
	second := render()
	if first != second {
		t.Errorf("outputs differ across identical runs:\n%s\n%s", first, second)
	}
}

func TestInvariant_ExclusionNeutrality(t *testing.T) {
	// GIVEN: The same ledger with and without an excluded period
	// WHEN: Building the court view both ways
	// THEN: MonthDebtMain is identical row for row; only penalty moves

	withExclusion := scenarioInput()
	withoutExclusion := scenarioInput()
	withoutExclusion.ExcludedPeriods = nil

	period := engine.Period{From: date(2025, time.January, 1), To: date(2025, time.May, 31)}

	a, _, err := engine.BuildCourtView(withExclusion, period)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := engine.BuildCourtView(withoutExclusion, period)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("row counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].MonthDebtMain.Equal(b[i].MonthDebtMain) {
			t.Errorf("row %d: exclusion changed main debt %s -> %s",
				i, b[i].MonthDebtMain, a[i].MonthDebtMain)
		}
	}
	// And the exclusion did reduce February's penalty.
	if !a[1].MonthDebtPenalty.LessThan(b[1].MonthDebtPenalty) {
		t.Errorf("exclusion should lower February penalty: %s vs %s",
			a[1].MonthDebtPenalty, b[1].MonthDebtPenalty)
	}
}

func TestInvariant_PaymentPeriodNeverMovesPaidDate(t *testing.T) {
	// GIVEN: A payment row with and without a "pay for period" tag
	// WHEN: Rendering the court view
	// THEN: The displayed paid date is identical in both runs

	build := func(tagged bool) []engine.CourtViewRow {
		payment := paymentRow(2025, 3, "100", "05.03.2025")
		if tagged {
			payment.PaymentPeriod = "2025-01"
		}
		in := baseInput([]engine.LedgerRow{
			accrualRow(2025, 1, "100"),
			accrualRow(2025, 2, "100"),
			payment,
		})
		view, _, err := engine.BuildCourtView(in, engine.Period{
			From: date(2025, time.January, 1),
			To:   date(2025, time.March, 31),
		})
		if err != nil {
			t.Fatal(err)
		}
		return view
	}

	tagged := build(true)
	plain := build(false)
	for i := range tagged {
		if tagged[i].PaidDate != plain[i].PaidDate {
			t.Errorf("row %d: tag moved paid date %s -> %s",
				i, plain[i].PaidDate, tagged[i].PaidDate)
		}
	}
}

func TestInvariant_MainDebtNeverNegative(t *testing.T) {
	// GIVEN: An aggressively overpaying ledger computed with
	//        AllowNegativePrincipal (the penalty engine's internal mode)
	// WHEN: Rendering every view row
	// THEN: No displayed main debt is negative

	in := baseInput([]engine.LedgerRow{
		accrualRow(2025, 1, "50"),
		paymentRow(2025, 1, "500", "10.01.2025"),
		accrualRow(2025, 2, "50"),
		paymentRow(2025, 2, "300", "10.02.2025"),
		accrualRow(2025, 3, "50"),
	})

	view, _, err := engine.BuildCourtView(in, engine.Period{
		From: date(2025, time.January, 1),
		To:   date(2025, time.March, 31),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range view {
		if row.MonthDebtMain.IsNegative() {
			t.Errorf("row %d: negative displayed debt %s", i, row.MonthDebtMain)
		}
		if row.MonthDebtTotal.IsNegative() {
			t.Errorf("row %d: negative total %s", i, row.MonthDebtTotal)
		}
	}
}
