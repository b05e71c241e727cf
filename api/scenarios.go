/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates an account, its
	ledger, rate tables, and (where relevant) excluded periods that
	demonstrate a specific calculation feature.

AVAILABLE SCENARIOS:

	simple-debt:       One unpaid month, penalty running on it
	partial-payments:  Irregular payments, some attributed to past months
	moratorium:        Penalty under a temporary reduced-rate override
	disputed-period:   Excluded period carving days out of accrual

HOW SCENARIOS WORK:
 1. Create the demo account
 2. Replace its ledger wholesale
 3. Install the rate tables
 4. Optionally install excluded periods

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "moratorium"}

NOTE:

	Scenarios overwrite the demo account's data. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: the endpoints the loaded data is then read through
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/komuna/debt-engine/engine"
	"github.com/komuna/debt-engine/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "simple-debt",
		Name:        "Simple Debt",
		Description: "One unpaid month, penalty running on it month after month",
	},
	{
		ID:          "partial-payments",
		Name:        "Partial Payments",
		Description: "Irregular payments, one attributed to a past billing month",
	},
	{
		ID:          "moratorium",
		Name:        "Moratorium",
		Description: "Temporary reduced-rate override interrupting normal accrual",
	},
	{
		ID:          "disputed-period",
		Name:        "Disputed Period",
		Description: "Excluded period carving days out of penalty accrual",
	},
}

// demoAccountID is shared by all scenarios so reloading swaps data in
// place.
const demoAccountID = "demo"

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario populates the store with one scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "simple-debt":
		err = h.loadSimpleDebtScenario(ctx)
	case "partial-payments":
		err = h.loadPartialPaymentsScenario(ctx)
	case "moratorium":
		err = h.loadMoratoriumScenario(ctx)
	case "disputed-period":
		err = h.loadDisputedPeriodScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"scenario_id": req.ScenarioID,
		"account_id":  demoAccountID,
	})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadSimpleDebtScenario(ctx context.Context) error {
	if err := h.seedDemoAccount(ctx, "Demo: Simple Debt"); err != nil {
		return err
	}
	if err := h.seedDefaultRates(ctx); err != nil {
		return err
	}
	rows := []engine.LedgerRow{
		billed(2025, 1, "1850.40"),
		billed(2025, 2, "1850.40"),
		paidInFull(2025, 3, "1850.40", engine.NewDate(2025, 3, 12)),
	}
	if err := h.Store.ReplaceLedger(ctx, demoAccountID, rows); err != nil {
		return err
	}
	return h.Store.ReplaceExcludedPeriods(ctx, demoAccountID, nil)
}

func (h *Handler) loadPartialPaymentsScenario(ctx context.Context) error {
	if err := h.seedDemoAccount(ctx, "Demo: Partial Payments"); err != nil {
		return err
	}
	if err := h.seedDefaultRates(ctx); err != nil {
		return err
	}
	// The April payment is attributed to February on the payer's order.
	april := billed(2025, 4, "2100")
	april.Paid = decimal.RequireFromString("1500")
	april.PaidDate = engine.NewDate(2025, 4, 20)
	april.Source = "bank"
	april.PaymentPeriod = engine.MonthKey("2025-02")

	rows := []engine.LedgerRow{
		billed(2025, 1, "2100"),
		billed(2025, 2, "2100"),
		paidInFull(2025, 3, "2100", engine.NewDate(2025, 3, 5)),
		april,
	}
	if err := h.Store.ReplaceLedger(ctx, demoAccountID, rows); err != nil {
		return err
	}
	return h.Store.ReplaceExcludedPeriods(ctx, demoAccountID, nil)
}

func (h *Handler) loadMoratoriumScenario(ctx context.Context) error {
	if err := h.seedDemoAccount(ctx, "Demo: Moratorium"); err != nil {
		return err
	}
	if err := h.seedDefaultRates(ctx); err != nil {
		return err
	}
	moratorium := []engine.RateScheduleEntry{{
		EffectiveFrom:     engine.NewDate(2025, 3, 1),
		EffectiveTo:       engine.NewDate(2025, 4, 30),
		AnnualRatePercent: decimal.RequireFromString("4.75"),
	}}
	if err := h.Store.ReplaceRateTable(ctx, store.RateTableMoratorium, moratorium); err != nil {
		return err
	}
	rows := []engine.LedgerRow{
		billed(2025, 1, "1850.40"),
		billed(2025, 2, "1850.40"),
		billed(2025, 3, "1850.40"),
		billed(2025, 4, "1850.40"),
	}
	if err := h.Store.ReplaceLedger(ctx, demoAccountID, rows); err != nil {
		return err
	}
	return h.Store.ReplaceExcludedPeriods(ctx, demoAccountID, nil)
}

func (h *Handler) loadDisputedPeriodScenario(ctx context.Context) error {
	if err := h.loadSimpleDebtScenario(ctx); err != nil {
		return err
	}
	return h.Store.ReplaceExcludedPeriods(ctx, demoAccountID, []engine.ExcludedPeriod{{
		From:   engine.NewDate(2025, 2, 10),
		To:     engine.NewDate(2025, 2, 24),
		Reason: "recalculation under dispute",
	}})
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedDemoAccount(ctx context.Context, name string) error {
	return h.Store.SaveAccount(ctx, store.Account{
		ID:            demoAccountID,
		Name:          name,
		Address:       "Sadovaya 17, apt 5",
		CalcStartDate: engine.NewDate(2025, 1, 1),
		CreatedAt:     todayFn(),
	})
}

func (h *Handler) seedDefaultRates(ctx context.Context) error {
	normal := []engine.RateScheduleEntry{
		{
			EffectiveFrom:     engine.NewDate(2025, 1, 1),
			AnnualRatePercent: decimal.RequireFromString("9.5"),
		},
		{
			EffectiveFrom:     engine.NewDate(2025, 6, 1),
			AnnualRatePercent: decimal.RequireFromString("11"),
		},
	}
	if err := h.Store.ReplaceRateTable(ctx, store.RateTableNormal, normal); err != nil {
		return err
	}
	return h.Store.ReplaceRateTable(ctx, store.RateTableMoratorium, nil)
}

func billed(year, month int, accrued string) engine.LedgerRow {
	return engine.LedgerRow{
		Year:    year,
		Month:   month,
		Accrued: decimal.RequireFromString(accrued),
		Paid:    decimal.Zero,
	}
}

func paidInFull(year, month int, amount string, on engine.Date) engine.LedgerRow {
	return engine.LedgerRow{
		Year:     year,
		Month:    month,
		Accrued:  decimal.RequireFromString(amount),
		Paid:     decimal.RequireFromString(amount),
		PaidDate: on,
		Source:   "bank",
	}
}
