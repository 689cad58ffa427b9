package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/dti-affinity/internal/interfaces/http"
)

type serveOptions struct {
	host string
	port int
}

// NewServeCmd starts the HTTP API.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction API over HTTP",
		Long: "Load the estimator and the reference table, then serve /predict,\n" +
			"/api/v1/predict, /api/v1/encode, health checks and /metrics until\n" +
			"interrupted. Startup fails before listening if the estimator cannot load.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cliCtx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "listen host; overrides server.host")
	cmd.Flags().IntVar(&opts.port, "port", 0, "listen port; overrides server.port")
	return cmd
}

func runServe(ctx context.Context, cliCtx *CLIContext, opts *serveOptions) error {
	cfg := cliCtx.Config
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := httpapi.NewApp(ctx, cfg, cliCtx.Logger, Version)
	if err != nil {
		return err
	}
	cliCtx.Logger.Info("affinity server starting",
		logging.String("addr", cfg.Server.Addr()),
		logging.String("version", Version))
	return app.Run(ctx)
}
