package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/voyageos/voyageos/internal/auth"
	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/dashboard"
	"github.com/voyageos/voyageos/internal/masterdata/clients"
	"github.com/voyageos/voyageos/internal/masterdata/locations"
	"github.com/voyageos/voyageos/internal/masterdata/services"
	"github.com/voyageos/voyageos/internal/masterdata/vendors"
	"github.com/voyageos/voyageos/internal/observability"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/sales/quotations"
	"github.com/voyageos/voyageos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthHandler       *auth.Handler
	AuthMiddleware    *auth.Middleware
	LocationsHandler  *locations.Handler
	ClientsHandler    *clients.Handler
	VendorsHandler    *vendors.Handler
	ServicesHandler   *services.Handler
	QuotationsHandler *quotations.Handler
	InvoicesHandler   *invoices.Handler
	DashboardHandler  *dashboard.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with VoyageOS defaults. Login, health,
// metrics and the customer document downloads are public; every other route
// requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "VoyageOS API running", "version": Version})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}
	if params.QuotationsHandler != nil {
		params.QuotationsHandler.MountDocumentRoutes(r)
	}
	if params.InvoicesHandler != nil {
		params.InvoicesHandler.MountDocumentRoutes(r)
	}

	r.Group(func(r chi.Router) {
		if params.AuthMiddleware != nil {
			r.Use(params.AuthMiddleware.RequireToken)
		}
		if params.LocationsHandler != nil {
			params.LocationsHandler.MountRoutes(r)
		}
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r)
		}
		if params.VendorsHandler != nil {
			params.VendorsHandler.MountRoutes(r)
		}
		if params.ServicesHandler != nil {
			params.ServicesHandler.MountRoutes(r)
		}
		if params.QuotationsHandler != nil {
			params.QuotationsHandler.MountRoutes(r)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			params.JobHandler.MountRoutes(r)
		}
	})

	return r
}
