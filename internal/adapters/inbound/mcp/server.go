package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
)

// NewRailcheckMCPServer creates a new MCP server with all railcheck tools and
// resources registered. The projectPath is the root directory of the
// repository to validate. Logs go to logger, never to the stdio transport.
func NewRailcheckMCPServer(projectPath string, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"railcheck",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, logger)
	registerResources(s, projectPath, logger)

	return s
}
