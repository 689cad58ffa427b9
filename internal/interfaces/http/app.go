package http

import (
	"context"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dti-affinity/internal/interfaces/http/handlers"
	"github.com/turtacn/dti-affinity/internal/interfaces/http/middleware"
)

// App is a bootstrapped prediction service behind an HTTP server.
type App struct {
	Service   prediction.Service
	Collector prometheus.MetricsCollector
	Server    *Server

	logger logging.Logger
}

// NewApp loads the service context and builds the route tree. It fails before
// any listener is opened when the estimator cannot be loaded.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, version string, opts ...prediction.Option) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	collector := prometheus.NewNoopCollector()
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger.Named("metrics"))
		if err != nil {
			return nil, err
		}
		collector = c
	}
	metrics := prometheus.NewAffinityMetrics(collector)

	svc, err := prediction.Bootstrap(ctx, cfg, logger, metrics, opts...)
	if err != nil {
		return nil, err
	}

	lc := middleware.DefaultLoggingConfig()
	lc.SlowThreshold = cfg.Server.SlowRequestThreshold
	router := NewRouter(RouterConfig{
		PredictHandler: handlers.NewPredictHandler(svc, logger, cfg.Server.MaxBodyBytes),
		HealthHandler:  handlers.NewHealthHandler(version, svc),
		CORS:           &cfg.CORS,
		Logging:        &lc,
		Logger:         logger,
		Metrics:        metrics,
		MetricsHandler: collector.Handler(),
	})

	return &App{
		Service:   svc,
		Collector: collector,
		Server:    NewServer(cfg.Server, router, logger),
		logger:    logger,
	}, nil
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr())
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Server.Shutdown(context.Background())
	})
	return g.Wait()
}
