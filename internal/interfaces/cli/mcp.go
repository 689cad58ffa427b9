package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/interfaces/mcp"
)

// NewMCPCmd serves the prediction tools to an MCP client over stdio.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve predict_affinity and canonicalize_smiles as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := bootstrapLocal(ctx, cliCtx)
			if err != nil {
				return err
			}
			return mcp.ServeStdio(ctx, svc, Version, cliCtx.Logger.Named("mcp"))
		},
	}
}
