// ABOUTME: MCP tool handler implementations for the semantic canvas server
// ABOUTME: Each handler calls the canvas service and returns a JSON text result
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	svc    *canvas.Service
	logger *slog.Logger
}

// NewHandlers creates handlers without registering them
func NewHandlers(svc *canvas.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

// AddBlock handles the add_block tool
func (h *Handlers) AddBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	block := models.Block{
		Type:     models.ContentType(request.GetString("type", string(models.TypeText))),
		Content:  content,
		Language: request.GetString("language", ""),
		Tags:     request.GetStringSlice("tags", []string{}),
		X:        float64(request.GetInt("x", 0)),
		Y:        float64(request.GetInt("y", 0)),
		Width:    float64(request.GetInt("width", 200)),
		Height:   float64(request.GetInt("height", 100)),
	}

	result, err := h.svc.CreateBlock(ctx, block)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add block: %v", err)), nil
	}
	h.logger.Info("block added via mcp", "block_id", result.Block.ID, "suggestions", len(result.Suggestions))

	return jsonResult(result)
}

// ListBlocks handles the list_blocks tool
func (h *Handlers) ListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks, err := h.svc.ListBlocks()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list blocks: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// ConnectBlocks handles the connect_blocks tool
func (h *Handlers) ConnectBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from_block")
	if err != nil {
		return mcp.NewToolResultError("from_block argument is required and must be a string"), nil
	}
	to, err := request.RequireString("to_block")
	if err != nil {
		return mcp.NewToolResultError("to_block argument is required and must be a string"), nil
	}

	conn, err := h.svc.CreateConnection(models.Connection{FromBlock: from, ToBlock: to})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect blocks: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{"connection": conn})
}

// FindSimilar handles the find_similar tool
func (h *Handlers) FindSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 0)
	threshold := request.GetFloat("threshold", 0)

	similar, err := h.svc.FindSimilar(ctx, blockID, limit, threshold)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("find similar failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{"similar": similar})
}

// SearchBlocks handles the search_blocks tool
func (h *Handlers) SearchBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 0)

	results, err := h.svc.SearchText(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{"results": results})
}

// AutoSuggest handles the auto_suggest tool
func (h *Handlers) AutoSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}

	suggestions, err := h.svc.AutoSuggest(ctx, blockID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("auto-suggest failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{"suggestions": suggestions})
}

// AnalyzeCanvas handles the analyze_canvas tool
func (h *Handlers) AnalyzeCanvas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	analysis, err := h.svc.AnalyzeCanvas(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("canvas analysis failed: %v", err)), nil
	}

	return jsonResult(analysis)
}

// ClearEmbeddingCache handles the clear_embedding_cache tool
func (h *Handlers) ClearEmbeddingCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.svc.ClearCache()
	return jsonResult(map[string]interface{}{"success": true})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
