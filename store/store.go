/*
Package store defines persistence for the billing application around the
engine: accounts, their monthly ledgers, the organization-wide rate
tables, and per-account excluded periods.

PURPOSE:
  The engine itself is pure and never touches storage; this package is
  the surrounding application's side of the boundary. The API layer
  loads plain data from a Store and hands it to the engine; nothing the
  engine derives is ever written back.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and demos
  - store/sqlite: production SQLite (WAL, auto-migrated schema)

REPLACE SEMANTICS:
  Ledgers, rate tables, and exclusion lists are replaced wholesale and
  atomically. The ledger is entered and corrected as a document (the
  account card is the source of truth), so partial-row patching would
  only invite drift between the card and what was computed from it.
*/
package store

import (
	"context"
	"errors"

	"github.com/komuna/debt-engine/engine"
)

// ErrAccountNotFound is returned for reads of an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// =============================================================================
// ACCOUNT - One personal account (the billing subject)
// =============================================================================

type Account struct {
	// ID is the personal account number the ledger is keyed by.
	ID      string
	Name    string
	Address string

	// CalcStartDate anchors the responsibility window: billing and
	// penalty never reach before it.
	CalcStartDate engine.Date

	CreatedAt engine.Date
}

// =============================================================================
// RATE TABLE KINDS
// =============================================================================

type RateTableKind string

const (
	RateTableNormal     RateTableKind = "normal"
	RateTableMoratorium RateTableKind = "moratorium"
)

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	// Accounts
	SaveAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)

	// Ledger rows, kept in entry order per account.
	ReplaceLedger(ctx context.Context, accountID string, rows []engine.LedgerRow) error
	Ledger(ctx context.Context, accountID string) ([]engine.LedgerRow, error)

	// Rate tables are organization-wide, one per kind.
	ReplaceRateTable(ctx context.Context, kind RateTableKind, entries []engine.RateScheduleEntry) error
	RateTable(ctx context.Context, kind RateTableKind) ([]engine.RateScheduleEntry, error)

	// Excluded periods, per account.
	ReplaceExcludedPeriods(ctx context.Context, accountID string, periods []engine.ExcludedPeriod) error
	ExcludedPeriods(ctx context.Context, accountID string) ([]engine.ExcludedPeriod, error)
}
