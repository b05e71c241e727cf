/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS AND DATES:
  Monetary amounts cross the wire as strings ("1234.56"), never floats:
  the figures end up on court paperwork and must round-trip exactly.
  Dates are strings too; both the ISO form (2025-01-31) and the
  localized form (31.01.2025) are accepted on input, ISO on output.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers; the toEngine/fromEngine converters are where parsing errors
  surface.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The domain types these mirror
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents a personal account in API responses.
type AccountDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	CalcStartDate string `json:"calc_start_date,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// SaveAccountRequest creates or updates a personal account.
type SaveAccountRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	CalcStartDate string `json:"calc_start_date"`
}

// LedgerRowDTO is one account-card row: a month's accrual and whatever
// payment is recorded against that row.
type LedgerRowDTO struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	Accrued       string `json:"accrued"`
	Paid          string `json:"paid"`
	PaidDate      string `json:"paid_date,omitempty"`
	Source        string `json:"source,omitempty"`
	PaymentPeriod string `json:"payment_period,omitempty"`
}

// ReplaceLedgerRequest replaces an account's ledger wholesale.
type ReplaceLedgerRequest struct {
	Rows []LedgerRowDTO `json:"rows"`
}

// RateEntryDTO is one row of a rate schedule.
type RateEntryDTO struct {
	EffectiveFrom     string `json:"effective_from"`
	EffectiveTo       string `json:"effective_to,omitempty"`
	AnnualRatePercent string `json:"annual_rate_percent"`
}

// ReplaceRateTableRequest replaces one rate table wholesale.
type ReplaceRateTableRequest struct {
	Entries []RateEntryDTO `json:"entries"`
}

// ExcludedPeriodDTO is a date range carved out of penalty accrual.
type ExcludedPeriodDTO struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// ReplaceExcludedPeriodsRequest replaces an account's exclusion list.
type ReplaceExcludedPeriodsRequest struct {
	Periods []ExcludedPeriodDTO `json:"periods"`
}

// CalcOptionsDTO mirrors engine.Options; both flags default to the
// values applications normally run with.
type CalcOptionsDTO struct {
	ApplyAdvanceOffset     *bool `json:"apply_advance_offset,omitempty"`
	AllowNegativePrincipal *bool `json:"allow_negative_principal,omitempty"`
}

// CourtViewRowDTO is one row of the court-ready report.
type CourtViewRowDTO struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Accrued     string `json:"accrued"`
	Paid        string `json:"paid"`
	PaidDate    string `json:"paid_date,omitempty"`
	DebtMain    string `json:"debt_main"`
	DebtPenalty string `json:"debt_penalty"`
	DebtTotal   string `json:"debt_total"`
}

// CourtViewResponse wraps the report rows with the totals line and any
// per-row ledger warnings.
type CourtViewResponse struct {
	AccountID string            `json:"account_id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Rows      []CourtViewRowDTO `json:"rows"`
	Totals    TotalsDTO         `json:"totals"`
	Warnings  []RowWarningDTO   `json:"warnings,omitempty"`
}

// TotalsDTO is the three-figure summary line.
type TotalsDTO struct {
	Principal   string `json:"principal"`
	PenaltyDebt string `json:"penalty_debt"`
	Total       string `json:"total"`
}

// TotalsResponse wraps TotalsDTO with request context.
type TotalsResponse struct {
	AccountID string          `json:"account_id"`
	AsOf      string          `json:"as_of"`
	Totals    TotalsDTO       `json:"totals"`
	Warnings  []RowWarningDTO `json:"warnings,omitempty"`
}

// PenaltyBreakdownResponse maps source month to its penalty share.
type PenaltyBreakdownResponse struct {
	AccountID string            `json:"account_id"`
	AsOf      string            `json:"as_of"`
	ByMonth   map[string]string `json:"by_month"`
	Total     string            `json:"total"`
	Warnings  []RowWarningDTO   `json:"warnings,omitempty"`
}

// RowWarningDTO reports a malformed ledger row that was skipped.
type RowWarningDTO struct {
	RowIndex int    `json:"row_index"`
	Reason   string `json:"reason"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func accountDTO(a store.Account) AccountDTO {
	return AccountDTO{
		ID:            a.ID,
		Name:          a.Name,
		Address:       a.Address,
		CalcStartDate: a.CalcStartDate.String(),
		CreatedAt:     a.CreatedAt.String(),
	}
}

func (d LedgerRowDTO) toEngine() (engine.LedgerRow, error) {
	row := engine.LedgerRow{
		Year:   d.Year,
		Month:  d.Month,
		Source: d.Source,
	}

	var err error
	if row.Accrued, err = parseAmount(d.Accrued, "accrued"); err != nil {
		return engine.LedgerRow{}, err
	}
	if row.Paid, err = parseAmount(d.Paid, "paid"); err != nil {
		return engine.LedgerRow{}, err
	}
	if row.PaidDate, err = parseOptionalDate(d.PaidDate, "paid_date"); err != nil {
		return engine.LedgerRow{}, err
	}
	if d.PaymentPeriod != "" {
		key := engine.MonthKey(d.PaymentPeriod)
		if !key.Valid() {
			return engine.LedgerRow{}, fmt.Errorf("payment_period %q: want YYYY-MM", d.PaymentPeriod)
		}
		row.PaymentPeriod = key
	}
	return row, nil
}

func ledgerRowDTO(r engine.LedgerRow) LedgerRowDTO {
	return LedgerRowDTO{
		Year:          r.Year,
		Month:         r.Month,
		Accrued:       r.Accrued.String(),
		Paid:          r.Paid.String(),
		PaidDate:      r.PaidDate.String(),
		Source:        r.Source,
		PaymentPeriod: string(r.PaymentPeriod),
	}
}

func (d RateEntryDTO) toEngine() (engine.RateScheduleEntry, error) {
	var e engine.RateScheduleEntry
	var err error
	if e.EffectiveFrom, err = engine.ParseDateAny(d.EffectiveFrom); err != nil {
		return engine.RateScheduleEntry{}, fmt.Errorf("effective_from: %w", err)
	}
	if e.EffectiveTo, err = parseOptionalDate(d.EffectiveTo, "effective_to"); err != nil {
		return engine.RateScheduleEntry{}, err
	}
	if e.AnnualRatePercent, err = decimal.NewFromString(d.AnnualRatePercent); err != nil {
		return engine.RateScheduleEntry{}, fmt.Errorf("annual_rate_percent %q: %w", d.AnnualRatePercent, err)
	}
	return e, nil
}

func rateEntryDTO(e engine.RateScheduleEntry) RateEntryDTO {
	return RateEntryDTO{
		EffectiveFrom:     e.EffectiveFrom.String(),
		EffectiveTo:       e.EffectiveTo.String(),
		AnnualRatePercent: e.AnnualRatePercent.String(),
	}
}

func (d ExcludedPeriodDTO) toEngine() (engine.ExcludedPeriod, error) {
	var p engine.ExcludedPeriod
	var err error
	if p.From, err = engine.ParseDateAny(d.From); err != nil {
		return engine.ExcludedPeriod{}, fmt.Errorf("from: %w", err)
	}
	if p.To, err = engine.ParseDateAny(d.To); err != nil {
		return engine.ExcludedPeriod{}, fmt.Errorf("to: %w", err)
	}
	p.Reason = d.Reason
	return p, nil
}

func excludedPeriodDTO(p engine.ExcludedPeriod) ExcludedPeriodDTO {
	return ExcludedPeriodDTO{
		From:   p.From.String(),
		To:     p.To.String(),
		Reason: p.Reason,
	}
}

func (d CalcOptionsDTO) toEngine() engine.Options {
	opts := engine.Options{
		ApplyAdvanceOffset:     true,
		AllowNegativePrincipal: false,
	}
	if d.ApplyAdvanceOffset != nil {
		opts.ApplyAdvanceOffset = *d.ApplyAdvanceOffset
	}
	if d.AllowNegativePrincipal != nil {
		opts.AllowNegativePrincipal = *d.AllowNegativePrincipal
	}
	return opts
}

func courtViewRowDTO(r engine.CourtViewRow) CourtViewRowDTO {
	return CourtViewRowDTO{
		Year:        r.Year,
		Month:       r.Month,
		Accrued:     r.Accrued.String(),
		Paid:        r.Paid.String(),
		PaidDate:    r.PaidDate.String(),
		DebtMain:    r.MonthDebtMain.String(),
		DebtPenalty: r.MonthDebtPenalty.String(),
		DebtTotal:   r.MonthDebtTotal.String(),
	}
}

func totalsDTO(t engine.Totals) TotalsDTO {
	return TotalsDTO{
		Principal:   t.Principal.String(),
		PenaltyDebt: t.PenaltyDebt.String(),
		Total:       t.Total.String(),
	}
}

func warningDTOs(warnings []engine.RowWarning) []RowWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]RowWarningDTO, len(warnings))
	for i, w := range warnings {
		out[i] = RowWarningDTO{RowIndex: w.Index, Reason: w.Reason}
	}
	return out
}

// parseAmount reads a required decimal field; empty means zero.
func parseAmount(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d, nil
}

// parseOptionalDate reads a date field that may be absent.
func parseOptionalDate(s, field string) (engine.Date, error) {
	if s == "" {
		return engine.Date{}, nil
	}
	d, err := engine.ParseDateAny(s)
	if err != nil {
		return engine.Date{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
