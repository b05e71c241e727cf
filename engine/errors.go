/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All engine error types in one place. Callers (the HTTP layer, import
  jobs) branch on these with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Input errors    - unparseable dates, malformed rows
  2. Configuration   - rate tables that cannot cover the computation
  3. Shape errors    - inverted periods and windows

PROPAGATION POLICY:
  The engine surfaces everything as explicit typed failures. The only
  local recovery is skipping individually malformed ledger rows, which
  are reported as warnings alongside the result - one bad historical row
  must not block computing debt for the rest of the ledger.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for an unparseable date anywhere in the
	// inputs. Never coerced to a default: silent defaulting would corrupt
	// legal calculations.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoApplicableRate means rate resolution was requested for a date
	// earlier than the earliest normal-table entry. This is a
	// configuration error and is surfaced rather than treated as 0%.
	ErrNoApplicableRate = errors.New("no applicable rate")

	// ErrMalformedLedgerRow marks a row with negative or non-finite
	// amounts. Such rows are skipped and reported, not silently included.
	ErrMalformedLedgerRow = errors.New("malformed ledger row")

	// ErrInvalidPeriod is returned when a period or responsibility window
	// ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError reports the offending input verbatim.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: want YYYY-MM-DD or DD.MM.YYYY", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// NoApplicableRateError reports the date the tables could not cover.
type NoApplicableRateError struct {
	Date Date
}

func (e *NoApplicableRateError) Error() string {
	return fmt.Sprintf("no rate entry effective on or before %s", e.Date)
}

func (e *NoApplicableRateError) Unwrap() error { return ErrNoApplicableRate }

// RowWarning describes a ledger row that was rejected from aggregation.
// Warnings ride alongside results; they are not errors because the rest
// of the ledger still computes.
type RowWarning struct {
	Index  int // position in the input slice
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d skipped: %s", w.Index, w.Reason)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrMalformedLedgerRow) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsConfigError reports whether the error is a deployment configuration
// problem rather than bad request data.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoApplicableRate)
}
