// ABOUTME: MCP tool definitions and registration for the semantic canvas server
// ABOUTME: Defines JSON schemas for the eight canvas tools exposed to agents
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/semantic-canvas/internal/canvas"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, svc *canvas.Service, logger *slog.Logger) *Handlers {
	handlers := NewHandlers(svc, logger)

	// 1. add_block - Place a new block on the canvas
	server.AddTool(mcp.Tool{
		Name:        "add_block",
		Description: "Add a block to the canvas. Generates an embedding and returns connection suggestions for semantically similar blocks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Block content (max 10000 characters)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"text", "markdown", "code", "image", "drawing"},
					"description": "Content type (default: text)",
					"default":     "text",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Programming language for code blocks",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tags describing the block",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Horizontal position (default: 0)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Vertical position (default: 0)",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Block width (default: 200)",
					"default":     200,
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Block height (default: 100)",
					"default":     100,
				},
			},
			Required: []string{"content"},
		},
	}, handlers.AddBlock)

	// 2. list_blocks - List every block on the canvas
	server.AddTool(mcp.Tool{
		Name:        "list_blocks",
		Description: "List all blocks on the canvas, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListBlocks)

	// 3. connect_blocks - Link two blocks
	server.AddTool(mcp.Tool{
		Name:        "connect_blocks",
		Description: "Create a connection between two existing blocks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"from_block": map[string]interface{}{
					"type":        "string",
					"description": "Source block ID",
				},
				"to_block": map[string]interface{}{
					"type":        "string",
					"description": "Target block ID",
				},
			},
			Required: []string{"from_block", "to_block"},
		},
	}, handlers.ConnectBlocks)

	// 4. find_similar - Rank blocks similar to a stored block
	server.AddTool(mcp.Tool{
		Name:        "find_similar",
		Description: "Find blocks semantically similar to an existing block using its stored embedding.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "Block to compare against",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 5)",
					"default":     5,
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity between 0 and 1 (default: 0.7)",
					"default":     0.7,
				},
			},
			Required: []string{"block_id"},
		},
	}, handlers.FindSimilar)

	// 5. search_blocks - Free-text semantic search
	server.AddTool(mcp.Tool{
		Name:        "search_blocks",
		Description: "Search canvas blocks by meaning rather than keywords.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10)",
					"default":     10,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchBlocks)

	// 6. auto_suggest - Connection suggestions for one block
	server.AddTool(mcp.Tool{
		Name:        "auto_suggest",
		Description: "Suggest connections for an existing block based on semantic similarity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "Block to suggest connections for",
				},
			},
			Required: []string{"block_id"},
		},
	}, handlers.AutoSuggest)

	// 7. analyze_canvas - Whole-canvas analysis
	server.AddTool(mcp.Tool{
		Name:        "analyze_canvas",
		Description: "Analyze the whole canvas and suggest missing connections and relocations for related but distant blocks.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.AnalyzeCanvas)

	// 8. clear_embedding_cache - Drop cached vectors
	server.AddTool(mcp.Tool{
		Name:        "clear_embedding_cache",
		Description: "Clear the in-memory embedding cache. Stored block embeddings are not affected.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ClearEmbeddingCache)

	return handlers
}
