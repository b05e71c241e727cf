package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

func TestUnknownAccount(t *testing.T) {
	m := New()
	ctx := context.Background()

	_, err := m.GetAccount(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	_, err = m.Ledger(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	err = m.ReplaceExcludedPeriods(ctx, "ghost", nil)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestLedgerIsCopiedOnReadAndWrite(t *testing.T) {
	// GIVEN a stored ledger
	m := New()
	ctx := context.Background()
	require.NoError(t, m.SaveAccount(ctx, store.Account{ID: "1", Name: "x"}))

	rows := []engine.LedgerRow{
		{Year: 2025, Month: 1, Accrued: decimal.NewFromInt(100), Paid: decimal.Zero},
	}
	require.NoError(t, m.ReplaceLedger(ctx, "1", rows))

	// WHEN the caller mutates its own slices afterwards
	rows[0].Year = 1999
	got, err := m.Ledger(ctx, "1")
	require.NoError(t, err)
	got[0].Year = 1999

	// THEN the stored data is unaffected
	again, err := m.Ledger(ctx, "1")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2025, again[0].Year)
}

func TestListAccountsSortedByID(t *testing.T) {
	m := New()
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, m.SaveAccount(ctx, store.Account{ID: id, Name: id}))
	}

	accounts, err := m.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "a", accounts[0].ID)
	assert.Equal(t, "c", accounts[2].ID)
}

func TestRateTablesIndependentPerKind(t *testing.T) {
	m := New()
	ctx := context.Background()

	normal := []engine.RateScheduleEntry{{
		EffectiveFrom:     engine.NewDate(2025, 1, 1),
		AnnualRatePercent: decimal.RequireFromString("11"),
	}}
	require.NoError(t, m.ReplaceRateTable(ctx, store.RateTableNormal, normal))
	require.NoError(t, m.ReplaceRateTable(ctx, store.RateTableMoratorium, nil))

	gotNormal, err := m.RateTable(ctx, store.RateTableNormal)
	require.NoError(t, err)
	gotMoratorium, err := m.RateTable(ctx, store.RateTableMoratorium)
	require.NoError(t, err)
	assert.Len(t, gotNormal, 1)
	assert.Empty(t, gotMoratorium)
}
