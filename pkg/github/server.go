package github

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/ronit-raj9/portfolio-server/pkg/translations"
)

// NewServer creates an MCP server exposing the portfolio tools.
func NewServer(version string, aggregator *Aggregator, t translations.TranslationHelperFunc) *server.MCPServer {
	s := server.NewMCPServer(
		"portfolio-server",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging())

	s.AddTool(GetPortfolioStats(aggregator, t))
	return s
}

// ToBoolPtr converts a bool to a *bool pointer.
func ToBoolPtr(b bool) *bool {
	return &b
}
