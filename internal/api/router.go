package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(h *Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/api/v1", func(r chi.Router) {
		// SIM cards.
		r.Get("/sims", h.ListSims)
		r.Post("/sims/import", h.ImportSims)
		r.Get("/sims/{id}", h.GetSim)
		r.Post("/sims/{id}/recharge", h.RechargeSim)
		r.Get("/sims/{id}/transactions", h.ListSimTransactions)

		// Settings.
		r.Get("/settings", h.GetSettings)
		r.Post("/settings/batch", h.BatchUpdateSettings)
		r.Post("/settings/test-email", h.TestEmail)
		r.Post("/settings/test-wechat", h.TestWechat)
		r.Get("/settings/test-email-connection", h.TestEmailConnection)

		// On-demand runs.
		r.Post("/billing/run", h.RunBilling)
		r.Post("/watchdog/sweep", h.RunSweep)
	})

	return r
}
