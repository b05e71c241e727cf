/*
handlers.go - HTTP API handlers for the billing application

PURPOSE:
  Exposes accounts, ledgers, rate tables, exclusions, and the computed
  views via REST. Handles HTTP request/response, JSON serialization, and
  delegates all arithmetic to the engine.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                     List all accounts
    POST   /api/accounts                     Create or update an account
    GET    /api/accounts/{id}                Get account details

  Ledger:
    GET    /api/accounts/{id}/ledger         Get the account card rows
    PUT    /api/accounts/{id}/ledger         Replace the account card

  Exclusions:
    GET    /api/accounts/{id}/exclusions     Get excluded periods
    PUT    /api/accounts/{id}/exclusions     Replace excluded periods

  Rates:
    GET    /api/rates/{kind}                 Get a rate table (normal|moratorium)
    PUT    /api/rates/{kind}                 Replace a rate table

  Computed views (query params: as_of / from,to in ISO or DD.MM.YYYY):
    GET    /api/accounts/{id}/totals         Principal + penalty as of a date
    GET    /api/accounts/{id}/penalty        Penalty breakdown by source month
    GET    /api/accounts/{id}/court-view     Court-ready report for a period

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Load plain data from the store, hand it to the engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid dates or amounts
  - 404: Unknown account
  - 422: Rate configuration cannot cover the requested range
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store store.Store
}

// NewHandler creates a new handler over the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{Store: st}
}

// todayFn stamps new accounts; tests pin it.
var todayFn = func() engine.Date {
	now := time.Now().UTC()
	return engine.NewDate(now.Year(), now.Month(), now.Day())
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = accountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveAccount creates or updates an account.
func (h *Handler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	var req SaveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	calcStart, err := parseOptionalDate(req.CalcStartDate, "calc_start_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calc_start_date", err)
		return
	}

	acc := store.Account{
		ID:            req.ID,
		Name:          req.Name,
		Address:       req.Address,
		CalcStartDate: calcStart,
		CreatedAt:     todayFn(),
	}
	if err := h.Store.SaveAccount(r.Context(), acc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(acc))
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(acc))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedger returns the account card rows in entry order.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.Ledger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get ledger", err)
		return
	}

	dtos := make([]LedgerRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ledgerRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReplaceLedger replaces the whole account card.
func (h *Handler) ReplaceLedger(w http.ResponseWriter, r *http.Request) {
	var req ReplaceLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rows := make([]engine.LedgerRow, len(req.Rows))
	for i, d := range req.Rows {
		row, err := d.toEngine()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ledger row", err)
			return
		}
		rows[i] = row
	}

	if err := h.Store.ReplaceLedger(r.Context(), chi.URLParam(r, "id"), rows); err != nil {
		writeStoreError(w, "Failed to replace ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": len(rows)})
}

// =============================================================================
// EXCLUSION HANDLERS
// =============================================================================

// GetExclusions returns the account's excluded periods.
func (h *Handler) GetExclusions(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ExcludedPeriods(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get excluded periods", err)
		return
	}

	dtos := make([]ExcludedPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = excludedPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReplaceExclusions replaces the account's exclusion list.
func (h *Handler) ReplaceExclusions(w http.ResponseWriter, r *http.Request) {
	var req ReplaceExcludedPeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	periods := make([]engine.ExcludedPeriod, len(req.Periods))
	for i, d := range req.Periods {
		p, err := d.toEngine()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid excluded period", err)
			return
		}
		if p.To.Before(p.From) {
			writeError(w, http.StatusBadRequest, "Invalid excluded period", engine.ErrInvalidPeriod)
			return
		}
		periods[i] = p
	}

	if err := h.Store.ReplaceExcludedPeriods(r.Context(), chi.URLParam(r, "id"), periods); err != nil {
		writeStoreError(w, "Failed to replace excluded periods", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"periods": len(periods)})
}

// =============================================================================
// RATE TABLE HANDLERS
// =============================================================================

// GetRateTable returns one rate table by kind.
func (h *Handler) GetRateTable(w http.ResponseWriter, r *http.Request) {
	kind, ok := rateTableKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown rate table kind", nil)
		return
	}

	entries, err := h.Store.RateTable(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rate table", err)
		return
	}

	dtos := make([]RateEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = rateEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReplaceRateTable replaces one rate table by kind.
func (h *Handler) ReplaceRateTable(w http.ResponseWriter, r *http.Request) {
	kind, ok := rateTableKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown rate table kind", nil)
		return
	}

	var req ReplaceRateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]engine.RateScheduleEntry, len(req.Entries))
	for i, d := range req.Entries {
		e, err := d.toEngine()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid rate entry", err)
			return
		}
		entries[i] = e
	}

	if err := h.Store.ReplaceRateTable(r.Context(), kind, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replace rate table", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": len(entries)})
}

func rateTableKind(s string) (store.RateTableKind, bool) {
	switch store.RateTableKind(s) {
	case store.RateTableNormal:
		return store.RateTableNormal, true
	case store.RateTableMoratorium:
		return store.RateTableMoratorium, true
	}
	return "", false
}

// =============================================================================
// COMPUTED VIEWS
// =============================================================================

// GetTotals returns principal + penalty as of a date.
// GET /api/accounts/{id}/totals?as_of=2025-03-01
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	asOf, err := engine.ParseDateAny(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}

	in, err := h.loadInput(r.Context(), chi.URLParam(r, "id"), optionsFromQuery(r))
	if err != nil {
		writeStoreError(w, "Failed to load account data", err)
		return
	}

	totals, warnings, err := engine.TotalsAsOf(in, asOf)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsResponse{
		AccountID: chi.URLParam(r, "id"),
		AsOf:      asOf.String(),
		Totals:    totalsDTO(totals),
		Warnings:  warningDTOs(warnings),
	})
}

// GetPenaltyBreakdown returns the penalty split by source month.
// GET /api/accounts/{id}/penalty?as_of=2025-03-01
func (h *Handler) GetPenaltyBreakdown(w http.ResponseWriter, r *http.Request) {
	asOf, err := engine.ParseDateAny(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}

	in, err := h.loadInput(r.Context(), chi.URLParam(r, "id"), optionsFromQuery(r))
	if err != nil {
		writeStoreError(w, "Failed to load account data", err)
		return
	}

	result, warnings, err := engine.PenaltyAsOf(in, asOf)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	byMonth := make(map[string]string, len(result.BySourceMonth))
	for key, amount := range result.BySourceMonth {
		byMonth[string(key)] = amount.String()
	}
	writeJSON(w, http.StatusOK, PenaltyBreakdownResponse{
		AccountID: chi.URLParam(r, "id"),
		AsOf:      asOf.String(),
		ByMonth:   byMonth,
		Total:     result.PenaltyDebt.String(),
		Warnings:  warningDTOs(warnings),
	})
}

// GetCourtView returns the court-ready report for a period.
// GET /api/accounts/{id}/court-view?from=2025-01-01&to=2025-06-30
func (h *Handler) GetCourtView(w http.ResponseWriter, r *http.Request) {
	from, err := engine.ParseDateAny(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := engine.ParseDateAny(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}

	in, err := h.loadInput(r.Context(), chi.URLParam(r, "id"), optionsFromQuery(r))
	if err != nil {
		writeStoreError(w, "Failed to load account data", err)
		return
	}

	period := engine.Period{From: from, To: to}
	rows, warnings, err := engine.BuildCourtView(in, period)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// The totals line uses the same exclusive bound as the report body.
	totals, _, err := engine.TotalsAsOf(in, to.StartOfMonth().AddMonths(1))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]CourtViewRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = courtViewRowDTO(row)
	}
	writeJSON(w, http.StatusOK, CourtViewResponse{
		AccountID: chi.URLParam(r, "id"),
		From:      from.String(),
		To:        to.String(),
		Rows:      dtos,
		Totals:    totalsDTO(totals),
		Warnings:  warningDTOs(warnings),
	})
}

// loadInput assembles the full engine input for one account.
func (h *Handler) loadInput(ctx context.Context, accountID string, opts engine.Options) (engine.Input, error) {
	acc, err := h.Store.GetAccount(ctx, accountID)
	if err != nil {
		return engine.Input{}, err
	}
	rows, err := h.Store.Ledger(ctx, accountID)
	if err != nil {
		return engine.Input{}, err
	}
	excluded, err := h.Store.ExcludedPeriods(ctx, accountID)
	if err != nil {
		return engine.Input{}, err
	}
	normal, err := h.Store.RateTable(ctx, store.RateTableNormal)
	if err != nil {
		return engine.Input{}, err
	}
	moratorium, err := h.Store.RateTable(ctx, store.RateTableMoratorium)
	if err != nil {
		return engine.Input{}, err
	}

	return engine.Input{
		Rows:            rows,
		ExcludedPeriods: excluded,
		NormalRates:     normal,
		MoratoriumRates: moratorium,
		Window:          engine.ResponsibilityWindow{StartDate: acc.CalcStartDate},
		Options:         opts,
	}, nil
}

// optionsFromQuery reads the calculation flags; both default on-policy.
func optionsFromQuery(r *http.Request) engine.Options {
	opts := engine.Options{ApplyAdvanceOffset: true}
	if v := r.URL.Query().Get("advance_offset"); v == "false" {
		opts.ApplyAdvanceOffset = false
	}
	if v := r.URL.Query().Get("allow_negative"); v == "true" {
		opts.AllowNegativePrincipal = true
	}
	return opts
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if err == store.ErrAccountNotFound {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}

// writeEngineError maps engine failures onto HTTP statuses: client input
// problems are 400, rate configuration gaps 422.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid calculation input", err)
	case engine.IsConfigError(err):
		writeError(w, http.StatusUnprocessableEntity, "Rate configuration cannot cover the requested range", err)
	default:
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
	}
}
