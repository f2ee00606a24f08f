package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pulse-analytics/api/controllers"
	analyticscontrollers "github.com/angelmondragon/pulse-analytics/api/controllers/analytics"
	"github.com/angelmondragon/pulse-analytics/api/middleware"
	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/pkg/config"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

// NewRouter mounts the health, metrics and analytics routes. readiness names
// the dependencies pinged by /health/ready; gatherer may be nil when metrics
// are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", analyticscontrollers.ListTables(analyticsService))
			r.Get("/{table}/periods", analyticscontrollers.TablePeriods(analyticsService, logg))
		})
		r.Post("/query", analyticscontrollers.Query(analyticsService, logg))
		r.Route("/dashboards", func(r chi.Router) {
			r.Get("/transactions", analyticscontrollers.TransactionsDashboard(analyticsService, logg))
			r.Get("/users", analyticscontrollers.UsersDashboard(analyticsService, logg))
			r.Get("/geo", analyticscontrollers.GeoDashboard(analyticsService, logg))
		})
		r.Route("/facts", func(r chi.Router) {
			r.Get("/", analyticscontrollers.ListFacts(analyticsService))
			r.Get("/{fact}", analyticscontrollers.FactDetail(analyticsService, logg))
		})
	})

	return r
}
