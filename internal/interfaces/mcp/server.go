package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "dti-affinity"

// NewServer registers every tool on a new MCP server.
func NewServer(svc prediction.Service, version string, logger logging.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	tools := NewTools(svc, logger)
	mcp.AddTool(server, MetadataPredictAffinity, tools.PredictAffinity)
	mcp.AddTool(server, MetadataCanonicalizeSMILES, CanonicalizeSMILES)
	return server
}

// ServeStdio runs the server over stdin/stdout until ctx is done or the
// client disconnects. Logs must go to stderr while this runs.
func ServeStdio(ctx context.Context, svc prediction.Service, version string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger.Info("MCP server starting on stdio", logging.String("version", version))
	return NewServer(svc, version, logger).Run(ctx, &mcp.StdioTransport{})
}
