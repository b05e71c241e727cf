/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/accounts/*   Accounts, ledgers, exclusions, computed views
  /api/rates/*      Organization-wide rate tables
  /api/scenarios/*  Demo scenarios
  /api/health       Liveness probe

SECURITY NOTE:
  No authentication middleware. The application runs inside the office
  network; endpoints are not exposed publicly.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.SaveAccount)
			r.Get("/{id}", h.GetAccount)

			r.Get("/{id}/ledger", h.GetLedger)
			r.Put("/{id}/ledger", h.ReplaceLedger)

			r.Get("/{id}/exclusions", h.GetExclusions)
			r.Put("/{id}/exclusions", h.ReplaceExclusions)

			r.Get("/{id}/totals", h.GetTotals)
			r.Get("/{id}/penalty", h.GetPenaltyBreakdown)
			r.Get("/{id}/court-view", h.GetCourtView)
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/{kind}", h.GetRateTable)
			r.Put("/{kind}", h.ReplaceRateTable)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
