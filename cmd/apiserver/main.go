// Command apiserver serves the affinity prediction API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/dti-affinity/internal/interfaces/http"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting affinity API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()))

	app, err := httpserver.NewApp(ctx, cfg, logger, version)
	if err != nil {
		logger.Error("startup failed", logging.Err(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadConfig reads path when it exists and falls back to defaults plus
// AFFINITY_* environment variables otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
