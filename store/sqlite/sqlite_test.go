package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAccountRoundTrip(t *testing.T) {
	// GIVEN a saved account
	s := newTestStore(t)
	ctx := context.Background()

	acc := store.Account{
		ID:            "100500",
		Name:          "Ivanov I.I.",
		Address:       "Lenina 1, apt 2",
		CalcStartDate: engine.NewDate(2025, time.January, 1),
		CreatedAt:     engine.NewDate(2025, time.June, 15),
	}
	require.NoError(t, s.SaveAccount(ctx, acc))

	// WHEN reading it back
	got, err := s.GetAccount(ctx, "100500")

	// THEN every field survives, dates included
	require.NoError(t, err)
	assert.Equal(t, acc, got)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestSaveAccountUpsertKeepsCreatedAt(t *testing.T) {
	// GIVEN an existing account
	s := newTestStore(t)
	ctx := context.Background()

	acc := store.Account{
		ID:        "1",
		Name:      "Old Name",
		CreatedAt: engine.NewDate(2025, time.January, 1),
	}
	require.NoError(t, s.SaveAccount(ctx, acc))

	// WHEN saving the same ID with new details
	acc.Name = "New Name"
	acc.Address = "Updated street"
	acc.CreatedAt = engine.NewDate(2025, time.August, 1)
	require.NoError(t, s.SaveAccount(ctx, acc))

	// THEN details update but the original creation date stays
	got, err := s.GetAccount(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "Updated street", got.Address)
	assert.Equal(t, "2025-01-01", got.CreatedAt.String())
}

func TestListAccountsSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"30", "10", "20"} {
		require.NoError(t, s.SaveAccount(ctx, store.Account{ID: id, Name: "acc " + id}))
	}

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "10", accounts[0].ID)
	assert.Equal(t, "20", accounts[1].ID)
	assert.Equal(t, "30", accounts[2].ID)
}

func TestLedgerRoundTripPreservesOrderAndAmounts(t *testing.T) {
	// GIVEN an account with a two-row ledger, rows NOT in month order
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAccount(ctx, store.Account{ID: "1", Name: "x"}))

	ledger := []engine.LedgerRow{
		{
			Year: 2025, Month: 2,
			Accrued:  decimal.RequireFromString("210.55"),
			Paid:     decimal.RequireFromString("100"),
			PaidDate: engine.NewDate(2025, time.March, 10),
			Source:   "bank",
		},
		{
			Year: 2025, Month: 1,
			Accrued:       decimal.RequireFromString("200"),
			Paid:          decimal.Zero,
			PaymentPeriod: engine.MonthKey("2025-01"),
		},
	}
	require.NoError(t, s.ReplaceLedger(ctx, "1", ledger))

	// WHEN reading the ledger back
	got, err := s.Ledger(ctx, "1")

	// THEN entry order, exact decimals, dates, and tags all survive
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Accrued.Equal(decimal.RequireFromString("210.55")))
	assert.Equal(t, "2025-03-10", got[0].PaidDate.String())
	assert.Equal(t, "bank", got[0].Source)
	assert.Equal(t, 1, got[1].Month)
	assert.True(t, got[1].Paid.Equal(decimal.Zero))
	assert.True(t, got[1].PaidDate.IsZero())
	assert.Equal(t, engine.MonthKey("2025-01"), got[1].PaymentPeriod)
}

func TestReplaceLedgerIsWholesale(t *testing.T) {
	// GIVEN a three-row ledger
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAccount(ctx, store.Account{ID: "1", Name: "x"}))

	first := []engine.LedgerRow{
		{Year: 2025, Month: 1, Accrued: decimal.NewFromInt(100), Paid: decimal.Zero},
		{Year: 2025, Month: 2, Accrued: decimal.NewFromInt(100), Paid: decimal.Zero},
		{Year: 2025, Month: 3, Accrued: decimal.NewFromInt(100), Paid: decimal.Zero},
	}
	require.NoError(t, s.ReplaceLedger(ctx, "1", first))

	// WHEN replacing with a single corrected row
	second := []engine.LedgerRow{
		{Year: 2025, Month: 1, Accrued: decimal.NewFromInt(150), Paid: decimal.Zero},
	}
	require.NoError(t, s.ReplaceLedger(ctx, "1", second))

	// THEN only the new document remains
	got, err := s.Ledger(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Accrued.Equal(decimal.NewFromInt(150)))
}

func TestLedgerUnknownAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Ledger(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	err = s.ReplaceLedger(ctx, "ghost", nil)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestRateTablesAreSeparatePerKind(t *testing.T) {
	// GIVEN a normal table and a moratorium table
	s := newTestStore(t)
	ctx := context.Background()

	normal := []engine.RateScheduleEntry{
		{
			EffectiveFrom:     engine.NewDate(2025, time.January, 1),
			AnnualRatePercent: decimal.RequireFromString("11"),
		},
		{
			EffectiveFrom:     engine.NewDate(2025, time.July, 1),
			AnnualRatePercent: decimal.RequireFromString("16.5"),
		},
	}
	moratorium := []engine.RateScheduleEntry{
		{
			EffectiveFrom:     engine.NewDate(2025, time.March, 1),
			EffectiveTo:       engine.NewDate(2025, time.March, 31),
			AnnualRatePercent: decimal.RequireFromString("9.5"),
		},
	}
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableNormal, normal))
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableMoratorium, moratorium))

	// WHEN reading each kind back
	gotNormal, err := s.RateTable(ctx, store.RateTableNormal)
	require.NoError(t, err)
	gotMoratorium, err := s.RateTable(ctx, store.RateTableMoratorium)
	require.NoError(t, err)

	// THEN the tables stay independent and complete
	require.Len(t, gotNormal, 2)
	require.Len(t, gotMoratorium, 1)
	assert.True(t, gotNormal[1].AnnualRatePercent.Equal(decimal.RequireFromString("16.5")))
	assert.True(t, gotNormal[0].EffectiveTo.IsZero())
	assert.Equal(t, "2025-03-31", gotMoratorium[0].EffectiveTo.String())
}

func TestReplaceRateTableClearsOnlyItsKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := func(rate string) []engine.RateScheduleEntry {
		return []engine.RateScheduleEntry{{
			EffectiveFrom:     engine.NewDate(2025, time.January, 1),
			AnnualRatePercent: decimal.RequireFromString(rate),
		}}
	}
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableNormal, entry("11")))
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableMoratorium, entry("9.5")))

	// Emptying the moratorium table leaves the normal table alone
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableMoratorium, nil))

	gotNormal, err := s.RateTable(ctx, store.RateTableNormal)
	require.NoError(t, err)
	gotMoratorium, err := s.RateTable(ctx, store.RateTableMoratorium)
	require.NoError(t, err)
	assert.Len(t, gotNormal, 1)
	assert.Empty(t, gotMoratorium)
}

func TestExcludedPeriodsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAccount(ctx, store.Account{ID: "1", Name: "x"}))

	periods := []engine.ExcludedPeriod{
		{
			From:   engine.NewDate(2025, time.January, 10),
			To:     engine.NewDate(2025, time.January, 19),
			Reason: "disputed recalculation",
		},
	}
	require.NoError(t, s.ReplaceExcludedPeriods(ctx, "1", periods))

	got, err := s.ExcludedPeriods(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-10", got[0].From.String())
	assert.Equal(t, "2025-01-19", got[0].To.String())
	assert.Equal(t, "disputed recalculation", got[0].Reason)
}

func TestStoredLedgerFeedsEngine(t *testing.T) {
	// GIVEN ledger and rates persisted through the store
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAccount(ctx, store.Account{
		ID:            "1",
		Name:          "x",
		CalcStartDate: engine.NewDate(2025, time.January, 1),
	}))

	ledger := []engine.LedgerRow{
		{Year: 2025, Month: 1, Accrued: decimal.NewFromInt(200), Paid: decimal.Zero},
		{Year: 2025, Month: 2, Accrued: decimal.NewFromInt(210), Paid: decimal.NewFromInt(210),
			PaidDate: engine.NewDate(2025, time.February, 5)},
	}
	require.NoError(t, s.ReplaceLedger(ctx, "1", ledger))
	require.NoError(t, s.ReplaceRateTable(ctx, store.RateTableNormal, []engine.RateScheduleEntry{{
		EffectiveFrom:     engine.NewDate(2025, time.January, 1),
		AnnualRatePercent: decimal.RequireFromString("11"),
	}}))

	// WHEN loading everything back and running a calculation
	acc, err := s.GetAccount(ctx, "1")
	require.NoError(t, err)
	rows, err := s.Ledger(ctx, "1")
	require.NoError(t, err)
	rates, err := s.RateTable(ctx, store.RateTableNormal)
	require.NoError(t, err)

	in := engine.Input{
		Rows:        rows,
		NormalRates: rates,
		Window:      engine.ResponsibilityWindow{StartDate: acc.CalcStartDate},
		Options:     engine.Options{ApplyAdvanceOffset: true, AllowNegativePrincipal: true},
	}
	totals, warnings, err := engine.TotalsAsOf(in, engine.NewDate(2025, time.March, 1))

	// THEN the engine computes from stored data exactly as from literals
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "200", totals.Principal.String())
	assert.Equal(t, "3.56", totals.PenaltyDebt.String())
}
