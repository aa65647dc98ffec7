// ABOUTME: Main entry point for the canvas MCP server with stdio transport
// ABOUTME: Builds the canvas service and registers all MCP tools
package main

import (
	"log"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/semantic-canvas/internal/app"
	"github.com/harper/semantic-canvas/internal/mcp"
)

var version = "dev"

func main() {
	a, err := app.New(app.Options{Version: version})
	if err != nil {
		log.Fatalf("Failed to initialize canvas: %v", err)
	}
	defer func() { _ = a.Close() }()

	server := mcpserver.NewMCPServer(
		"Semantic Canvas",
		version,
		mcpserver.WithToolCapabilities(true),
	)
	mcp.RegisterTools(server, a.Service, a.Logger)

	a.Logger.Info("mcp server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		a.Logger.Error("server error", "error", err)
	}
}
