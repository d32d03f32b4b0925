// Package mcp exposes the site content to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/udevstartup/sitecms/internal/content"
)

// Version is set via ldflags at build time.
var Version = "dev"

// DocumentSource provides the current content document.
type DocumentSource interface {
	Document(ctx context.Context) (*content.Document, error)
}

// Server wraps an MCP server that exposes read-only content tools.
type Server struct {
	source DocumentSource
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server reading from source.
func NewServer(source DocumentSource) *Server {
	s := &Server{source: source}

	s.mcp = server.NewMCPServer(
		"sitecms",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(getContentTool, s.handleGetContent)
	s.mcp.AddTool(getSectionTool, s.handleGetSection)
	s.mcp.AddTool(listProductsTool, s.handleListProducts)
	s.mcp.AddTool(checkPublishableTool, s.handleCheckPublishable)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
