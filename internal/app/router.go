package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/foundry-erp/foundry-erp/internal/analytics"
	"github.com/foundry-erp/foundry-erp/internal/invoices"
	"github.com/foundry-erp/foundry-erp/internal/ledger"
	"github.com/foundry-erp/foundry-erp/internal/parties"
	"github.com/foundry-erp/foundry-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	PartiesHandler   *parties.Handler
	InvoicesHandler  *invoices.Handler
	LedgerHandler    *ledger.Handler
	AnalyticsHandler *analytics.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Foundry defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		if params.PartiesHandler != nil {
			api.Route("/parties", params.PartiesHandler.MountRoutes)
		}
		if params.InvoicesHandler != nil {
			api.Route("/invoices", params.InvoicesHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			api.Route("/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			api.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
