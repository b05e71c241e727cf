/*
Package sqlite provides the SQLite-backed Store implementation.

PURPOSE:
  Production persistence for accounts, ledgers, rate tables, and
  excluded periods. The same patterns apply to PostgreSQL; only minor
  SQL dialect differences.

STORAGE FORMAT:
  Dates are ISO text ("" for unset), monetary amounts decimal text -
  never floats, so nothing is lost round-tripping through the database.
  Ledger rows keep an explicit position column: row order within a month
  is display order on the account card and on court reports.

REPLACE SEMANTICS:
  ReplaceLedger / ReplaceRateTable / ReplaceExcludedPeriods run as
  delete-and-insert inside one transaction: the stored document is
  either the old version or the new one, never a mix.

WAL MODE:
  Opened with WAL (Write-Ahead Logging) so readers don't block while a
  replacement write is in flight.

USAGE:
  st, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go:  interface definition
  - store/memory:    in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		calc_start_date TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS ledger_rows (
		account_id TEXT NOT NULL REFERENCES accounts(id),
		position INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		accrued TEXT NOT NULL,
		paid TEXT NOT NULL,
		paid_date TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		payment_period TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (account_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_rows_account_month
		ON ledger_rows(account_id, year, month);

	CREATE TABLE IF NOT EXISTS rate_entries (
		table_kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT NOT NULL DEFAULT '',
		annual_rate TEXT NOT NULL,
		PRIMARY KEY (table_kind, position)
	);

	CREATE TABLE IF NOT EXISTS excluded_periods (
		account_id TEXT NOT NULL REFERENCES accounts(id),
		position INTEGER NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (account_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) SaveAccount(ctx context.Context, account store.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, address, calc_start_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			calc_start_date = excluded.calc_start_date`,
		account.ID, account.Name, account.Address,
		account.CalcStartDate.String(), account.CreatedAt.String())
	return err
}

func (s *Store) GetAccount(ctx context.Context, id string) (store.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, calc_start_date, created_at
		FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]store.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, calc_start_date, created_at
		FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (store.Account, error) {
	var a store.Account
	var calcStart, createdAt string
	err := sc.Scan(&a.ID, &a.Name, &a.Address, &calcStart, &createdAt)
	if err == sql.ErrNoRows {
		return store.Account{}, store.ErrAccountNotFound
	}
	if err != nil {
		return store.Account{}, err
	}
	if a.CalcStartDate, err = parseStoredDate(calcStart); err != nil {
		return store.Account{}, err
	}
	if a.CreatedAt, err = parseStoredDate(createdAt); err != nil {
		return store.Account{}, err
	}
	return a, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) ReplaceLedger(ctx context.Context, accountID string, ledgerRows []engine.LedgerRow) error {
	return s.replaceForAccount(ctx, accountID, "ledger_rows", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO ledger_rows
				(account_id, position, year, month, accrued, paid, paid_date, source, payment_period)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range ledgerRows {
			_, err := stmt.ExecContext(ctx, accountID, i, r.Year, r.Month,
				r.Accrued.String(), r.Paid.String(), r.PaidDate.String(),
				r.Source, string(r.PaymentPeriod))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Ledger(ctx context.Context, accountID string) ([]engine.LedgerRow, error) {
	if err := s.accountExists(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, accrued, paid, paid_date, source, payment_period
		FROM ledger_rows WHERE account_id = ? ORDER BY position`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.LedgerRow
	for rows.Next() {
		var r engine.LedgerRow
		var accrued, paid, paidDate, period string
		if err := rows.Scan(&r.Year, &r.Month, &accrued, &paid, &paidDate, &r.Source, &period); err != nil {
			return nil, err
		}
		if r.Accrued, err = decimal.NewFromString(accrued); err != nil {
			return nil, fmt.Errorf("ledger row accrued: %w", err)
		}
		if r.Paid, err = decimal.NewFromString(paid); err != nil {
			return nil, fmt.Errorf("ledger row paid: %w", err)
		}
		if r.PaidDate, err = parseStoredDate(paidDate); err != nil {
			return nil, err
		}
		r.PaymentPeriod = engine.MonthKey(period)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// RATE TABLES
// =============================================================================

func (s *Store) ReplaceRateTable(ctx context.Context, kind store.RateTableKind, entries []engine.RateScheduleEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_entries WHERE table_kind = ?`, string(kind)); err != nil {
		return err
	}
	for i, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rate_entries (table_kind, position, effective_from, effective_to, annual_rate)
			VALUES (?, ?, ?, ?, ?)`,
			string(kind), i, e.EffectiveFrom.String(), e.EffectiveTo.String(),
			e.AnnualRatePercent.String())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) RateTable(ctx context.Context, kind store.RateTableKind) ([]engine.RateScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT effective_from, effective_to, annual_rate
		FROM rate_entries WHERE table_kind = ? ORDER BY position`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.RateScheduleEntry
	for rows.Next() {
		var e engine.RateScheduleEntry
		var from, to, rate string
		if err := rows.Scan(&from, &to, &rate); err != nil {
			return nil, err
		}
		if e.EffectiveFrom, err = parseStoredDate(from); err != nil {
			return nil, err
		}
		if e.EffectiveTo, err = parseStoredDate(to); err != nil {
			return nil, err
		}
		if e.AnnualRatePercent, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("rate entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// EXCLUDED PERIODS
// =============================================================================

func (s *Store) ReplaceExcludedPeriods(ctx context.Context, accountID string, periods []engine.ExcludedPeriod) error {
	return s.replaceForAccount(ctx, accountID, "excluded_periods", func(tx *sql.Tx) error {
		for i, p := range periods {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO excluded_periods (account_id, position, from_date, to_date, reason)
				VALUES (?, ?, ?, ?, ?)`,
				accountID, i, p.From.String(), p.To.String(), p.Reason)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ExcludedPeriods(ctx context.Context, accountID string) ([]engine.ExcludedPeriod, error) {
	if err := s.accountExists(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_date, to_date, reason
		FROM excluded_periods WHERE account_id = ? ORDER BY position`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ExcludedPeriod
	for rows.Next() {
		var p engine.ExcludedPeriod
		var from, to string
		if err := rows.Scan(&from, &to, &p.Reason); err != nil {
			return nil, err
		}
		if p.From, err = parseStoredDate(from); err != nil {
			return nil, err
		}
		if p.To, err = parseStoredDate(to); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// replaceForAccount runs a delete-and-insert replacement for one
// account's rows in a single transaction.
func (s *Store) replaceForAccount(ctx context.Context, accountID, table string, insert func(*sql.Tx) error) error {
	if err := s.accountExists(ctx, accountID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE account_id = ?`, accountID); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) accountExists(ctx context.Context, accountID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, accountID).Scan(&one)
	if err == sql.ErrNoRows {
		return store.ErrAccountNotFound
	}
	return err
}

// parseStoredDate reads an ISO date column; empty means unset.
func parseStoredDate(s string) (engine.Date, error) {
	if s == "" {
		return engine.Date{}, nil
	}
	return engine.ParseDateAny(s)
}
