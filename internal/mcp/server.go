package mcp

import (
	"context"
	"log/slog"

	"github.com/iammorganparry/circle/internal/client"
	"github.com/iammorganparry/circle/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "circle"
	serverVersion = "0.1.0"
)

// API is the subset of the portal client the tools delegate to.
type API interface {
	Directory(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryResponse, error)
	Schedule(ctx context.Context, cohortID string) ([]models.Session, error)
	Logs(ctx context.Context, cohortID string, week int) ([]models.SessionLog, error)
	Report(ctx context.Context, scope string) (*models.CohortReport, error)
	GrantSummary(ctx context.Context, scope string, quotes []string) (*models.NarrativeResponse, error)
	Guidance(ctx context.Context, week int, question string) (*models.NarrativeResponse, error)
}

var _ API = (*client.Client)(nil)

// Server is an MCP stdio server that delegates every tool to the HTTP API.
type Server struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
}

// NewServer registers the circle tools against api. The caller is expected to
// hand in a client carrying facilitator identity.
func NewServer(api API, logger *slog.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, api, logger)
	return &Server{mcpServer: mcpServer, logger: logger}
}

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *Server) serve(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("mcp server starting", "name", serverName, "version", serverVersion)
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
