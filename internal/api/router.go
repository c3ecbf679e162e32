package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastprodman/ledger/internal/services/ledger"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc *ledger.Service, logger *slog.Logger) http.Handler {
	h := NewHandler(svc, logger)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/users", h.OpenUserAccountHandler)

	r.Group(func(r chi.Router) {
		r.Use(h.requireActor)

		r.Get("/users", h.ListUserAccountsHandler)
		r.Get("/users/{owner}", h.GetUserAccountHandler)
		r.Get("/users/{owner}/history", h.GetUserHistoryHandler)

		r.Get("/sub-accounts", h.ListSubAccountsHandler)
		r.Post("/sub-accounts", h.OpenSubAccountHandler)
		r.Patch("/sub-accounts/{code}", h.SetSubAccountEnabledHandler)
		r.Get("/sub-accounts/{code}/history", h.GetSubAccountHistoryHandler)

		r.Post("/deposits", h.DepositHandler)
		r.Post("/transfers", h.TransferHandler)
	})

	return r
}
