package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dti-affinity/internal/interfaces/http/handlers"
	"github.com/turtacn/dti-affinity/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil entries are skipped.
type RouterConfig struct {
	PredictHandler *handlers.PredictHandler
	HealthHandler  *handlers.HealthHandler

	CORS    *config.CORSConfig
	Logging *middleware.LoggingConfig

	Logger  logging.Logger
	Metrics *prometheus.AffinityMetrics

	// MetricsHandler serves /metrics, usually MetricsCollector.Handler().
	MetricsHandler http.Handler
}

// NewRouter constructs the route tree. Global middleware runs in the order
// RequestID, RealIP, Recoverer, CORS, request logging, metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		lc := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			lc = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger.Named("http"), lc))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if h := cfg.HealthHandler; h != nil {
		r.Get("/healthz", h.Liveness)
		r.Get("/readyz", h.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if h := cfg.PredictHandler; h != nil {
		r.Post("/predict", h.Predict)
		r.Route("/api/v1", func(api chi.Router) {
			api.Post("/predict", h.Predict)
			api.Post("/encode", h.Encode)
		})
	}
	return r
}
