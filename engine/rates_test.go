package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/komuna/debt-engine/engine"
)

func rateEntry(from string, rate string) engine.RateScheduleEntry {
	d, err := engine.ParseDateAny(from)
	if err != nil {
		panic(err)
	}
	return engine.RateScheduleEntry{EffectiveFrom: d, AnnualRatePercent: dec(rate)}
}

func boundedRateEntry(from, to string, rate string) engine.RateScheduleEntry {
	e := rateEntry(from, rate)
	t, err := engine.ParseDateAny(to)
	if err != nil {
		panic(err)
	}
	e.EffectiveTo = t
	return e
}

// =============================================================================
// NORMAL TABLE RESOLUTION
// =============================================================================

func TestRateOn_LatestEntryAtOrBeforeDate(t *testing.T) {
	r := engine.NewRateResolver([]engine.RateScheduleEntry{
		rateEntry("2024-01-01", "9.5"),
		rateEntry("2025-01-01", "11"),
		rateEntry("2025-06-16", "13"),
	}, nil)

	cases := []struct {
		day  engine.Date
		want string
	}{
		{date(2024, time.June, 1), "9.5"},
		{date(2025, time.January, 1), "11"},   // boundary day takes the new rate
		{date(2025, time.June, 15), "11"},     // day before a mid-month change
		{date(2025, time.June, 16), "13"},     // the change day itself
		{date(2030, time.January, 1), "13"},   // last known rate holds
	}
	for _, c := range cases {
		got, err := r.RateOn(c.day)
		if err != nil {
			t.Fatalf("RateOn(%s): %v", c.day, err)
		}
		assertMoney(t, got, c.want, "rate on "+c.day.String())
	}
}

func TestRateOn_BeforeEarliestEntry_NoApplicableRate(t *testing.T) {
	// Configuration error, surfaced - never silently 0%.
	r := engine.NewRateResolver([]engine.RateScheduleEntry{
		rateEntry("2025-01-01", "11"),
	}, nil)

	_, err := r.RateOn(date(2024, time.December, 31))
	if !errors.Is(err, engine.ErrNoApplicableRate) {
		t.Fatalf("expected ErrNoApplicableRate, got %v", err)
	}
	var detail *engine.NoApplicableRateError
	if !errors.As(err, &detail) || detail.Date.String() != "2024-12-31" {
		t.Errorf("error should carry the uncovered date: %v", err)
	}
}

// =============================================================================
// MORATORIUM OVERRIDE
// =============================================================================

func TestRateOn_MoratoriumOverridesWhileActive(t *testing.T) {
	// GIVEN: Normal 11% all year; moratorium 5% through April only
	// WHEN: Resolving across the moratorium edges
	// THEN: 5% inside, 11% on both sides

	r := engine.NewRateResolver(
		[]engine.RateScheduleEntry{rateEntry("2025-01-01", "11")},
		[]engine.RateScheduleEntry{boundedRateEntry("2025-04-01", "2025-04-30", "5")},
	)

	for _, c := range []struct {
		day  engine.Date
		want string
	}{
		{date(2025, time.March, 31), "11"},
		{date(2025, time.April, 1), "5"},
		{date(2025, time.April, 30), "5"},
		{date(2025, time.May, 1), "11"},
	} {
		got, err := r.RateOn(c.day)
		if err != nil {
			t.Fatalf("RateOn(%s): %v", c.day, err)
		}
		assertMoney(t, got, c.want, "rate on "+c.day.String())
	}
}

func TestRateOn_OpenEndedMoratorium(t *testing.T) {
	r := engine.NewRateResolver(
		[]engine.RateScheduleEntry{rateEntry("2025-01-01", "11")},
		[]engine.RateScheduleEntry{rateEntry("2025-04-01", "5")},
	)
	got, err := r.RateOn(date(2026, time.February, 1))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, got, "5", "open moratorium keeps overriding")
}

func TestChangeDatesIn_IncludesMoratoriumLapse(t *testing.T) {
	r := engine.NewRateResolver(
		[]engine.RateScheduleEntry{rateEntry("2025-01-01", "11")},
		[]engine.RateScheduleEntry{boundedRateEntry("2025-04-01", "2025-04-30", "5")},
	)

	changes := r.ChangeDatesIn(date(2025, time.March, 1), date(2025, time.June, 1))

	want := map[string]bool{"2025-04-01": false, "2025-05-01": false}
	for _, d := range changes {
		if _, ok := want[d.String()]; ok {
			want[d.String()] = true
		}
	}
	for day, seen := range want {
		if !seen {
			t.Errorf("change date %s missing from %v", day, changes)
		}
	}
}
