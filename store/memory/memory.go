// Package memory provides an in-memory Store implementation for tests
// and demos.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	accounts map[string]store.Account
	ledgers  map[string][]engine.LedgerRow
	rates    map[store.RateTableKind][]engine.RateScheduleEntry
	excluded map[string][]engine.ExcludedPeriod
}

func New() *Memory {
	return &Memory{
		accounts: make(map[string]store.Account),
		ledgers:  make(map[string][]engine.LedgerRow),
		rates:    make(map[store.RateTableKind][]engine.RateScheduleEntry),
		excluded: make(map[string][]engine.ExcludedPeriod),
	}
}

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

func (m *Memory) SaveAccount(_ context.Context, account store.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (store.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return store.Account{}, store.ErrAccountNotFound
	}
	return account, nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]store.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

func (m *Memory) ReplaceLedger(_ context.Context, accountID string, rows []engine.LedgerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return store.ErrAccountNotFound
	}
	m.ledgers[accountID] = append([]engine.LedgerRow(nil), rows...)
	return nil
}

func (m *Memory) Ledger(_ context.Context, accountID string) ([]engine.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.accounts[accountID]; !ok {
		return nil, store.ErrAccountNotFound
	}
	return append([]engine.LedgerRow(nil), m.ledgers[accountID]...), nil
}

// -----------------------------------------------------------------------------
// Rate tables
// -----------------------------------------------------------------------------

func (m *Memory) ReplaceRateTable(_ context.Context, kind store.RateTableKind, entries []engine.RateScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[kind] = append([]engine.RateScheduleEntry(nil), entries...)
	return nil
}

func (m *Memory) RateTable(_ context.Context, kind store.RateTableKind) ([]engine.RateScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.RateScheduleEntry(nil), m.rates[kind]...), nil
}

// -----------------------------------------------------------------------------
// Excluded periods
// -----------------------------------------------------------------------------

func (m *Memory) ReplaceExcludedPeriods(_ context.Context, accountID string, periods []engine.ExcludedPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return store.ErrAccountNotFound
	}
	m.excluded[accountID] = append([]engine.ExcludedPeriod(nil), periods...)
	return nil
}

func (m *Memory) ExcludedPeriods(_ context.Context, accountID string) ([]engine.ExcludedPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.accounts[accountID]; !ok {
		return nil, store.ErrAccountNotFound
	}
	return append([]engine.ExcludedPeriod(nil), m.excluded[accountID]...), nil
}
