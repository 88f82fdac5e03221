package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewA11yKraftMCPServer creates a new MCP server with all a11ykraft tools and
// resources registered. The projectPath is the root directory of the site
// to audit.
func NewA11yKraftMCPServer(projectPath string, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"a11ykraft",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, logger)
	registerResources(s, projectPath, logger)

	return s
}
