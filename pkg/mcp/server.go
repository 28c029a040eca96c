// Package mcp exposes the ingestion pipeline as MCP tools.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

// Server wraps the MCP server and the services its tools call.
type Server struct {
	mcpServer *server.MCPServer
	ingest    services.IngestService
	commit    services.CommitService
	discovery services.DiscoveryService
	upserts   services.UpsertEngine
	blobs     services.BlobStore
	logger    *zap.Logger
}

// NewServer creates the MCP tool server and registers the tools.
func NewServer(
	ingest services.IngestService,
	commit services.CommitService,
	discovery services.DiscoveryService,
	upserts services.UpsertEngine,
	blobs services.BlobStore,
	logger *zap.Logger,
) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"directory-engine",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		ingest:    ingest,
		commit:    commit,
		discovery: discovery,
		upserts:   upserts,
		blobs:     blobs,
		logger:    logger.Named("mcp"),
	}
	s.registerTools()
	return s
}

// RegisterRoutes mounts the streamable HTTP transport.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer))
}
