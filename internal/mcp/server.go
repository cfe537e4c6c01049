package mcp

import (
	"context"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"ticket-dash/internal/config"
)

// Version is reported to MCP clients during initialization.
const Version = "0.3.0"

// Server exposes the ticket analysis pipeline as MCP tools over stdio.
type Server struct {
	cfg *config.AppConfig
	now func() time.Time
	mcp *sdk.Server
}

// NewServer creates a new MCP server and registers its tools.
func NewServer(cfg *config.AppConfig) *Server {
	s := &Server{
		cfg: cfg,
		now: time.Now,
		mcp: sdk.NewServer(&sdk.Implementation{Name: "ticket-dash", Version: Version}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", Version).Msg("MCP server listening on stdio")
	if err := s.mcp.Run(ctx, &sdk.StdioTransport{}); err != nil {
		return err
	}
	log.Info().Msg("MCP client disconnected")
	return nil
}

// resolvePath makes relative export paths relative to the configured data path.
func (s *Server) resolvePath(path string) string {
	if filepath.IsAbs(path) || s.cfg == nil || s.cfg.DataPath == "" {
		return path
	}
	return filepath.Join(s.cfg.DataPath, path)
}
