// Package ghmcp provides a public API wrapper for the portfolio MCP server.
// This package exposes the necessary types and functions from the internal
// implementation for use by external Go modules.
//
// Usage example:
//
//	config := ghmcp.StdioServerConfig{
//	    Version:  "1.0.0",
//	    Token:    os.Getenv("GITHUB_TOKEN"),
//	    Username: "Ronit-Raj9",
//	}
//
//	if err := ghmcp.RunStdioServer(config); err != nil {
//	    log.Fatal(err)
//	}
package ghmcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/ronit-raj9/portfolio-server/internal/ghmcp"
	"github.com/ronit-raj9/portfolio-server/pkg/github"
)

// StdioServerConfig contains configuration for running the portfolio MCP
// server in stdio mode. This is a re-export of the internal type.
type StdioServerConfig = ghmcp.StdioServerConfig

// MCPServerConfig contains configuration for creating a new MCP Server instance.
// This is a re-export of the internal type.
type MCPServerConfig = ghmcp.MCPServerConfig

// AggregatorConfig describes how the aggregator reaches GitHub.
type AggregatorConfig = ghmcp.AggregatorConfig

// RunStdioServer runs the portfolio MCP server using stdio for communication.
// This function wraps the internal implementation and is not concurrent safe.
func RunStdioServer(cfg StdioServerConfig) error {
	return ghmcp.RunStdioServer(cfg)
}

// NewMCPServer creates a new MCP Server instance with the given configuration.
// This function wraps the internal implementation.
func NewMCPServer(cfg MCPServerConfig) (*server.MCPServer, error) {
	return ghmcp.NewMCPServer(cfg)
}

// NewAggregator creates an aggregator talking to the configured GitHub host.
func NewAggregator(cfg AggregatorConfig) (*github.Aggregator, error) {
	return ghmcp.NewAggregator(cfg)
}
