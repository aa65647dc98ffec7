// ABOUTME: Tests for MCP tool handlers and registration
// ABOUTME: Calls handlers directly with CallToolRequest values over an in-memory canvas

package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/storage/sqlite"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	provider := embedding.ProviderFunc(func(_ context.Context, text string) ([]float64, error) {
		if strings.Contains(text, "golang") {
			return []float64{1, 0.05, 0}, nil
		}
		return []float64{0, 1, 0.05}, nil
	})
	logger := logging.Discard()
	adapter := embedding.NewAdapter(provider, embedding.NewCache(10, time.Hour, nil), embedding.WithLogger(logger))
	engine := core.NewEngine(adapter, core.DefaultPolicy(), core.WithEngineLogger(logger))
	svc := canvas.NewService(store, engine, canvas.WithLogger(logger), canvas.WithRetry(0, 0))
	return NewHandlers(svc, logger)
}

type toolFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, fn toolFunc, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestAddBlockAndList(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.AddBlock, map[string]any{
		"content": "golang channels",
		"tags":    []any{"go"},
		"x":       float64(10),
	})
	if isErr {
		t.Fatalf("add_block error: %s", text)
	}
	var added struct {
		Block struct {
			ID     string   `json:"id"`
			Type   string   `json:"type"`
			Tags   []string `json:"tags"`
			X      float64  `json:"x"`
			Width  float64  `json:"width"`
			Height float64  `json:"height"`
		} `json:"block"`
	}
	if err := json.Unmarshal([]byte(text), &added); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if added.Block.ID == "" || added.Block.Type != "text" {
		t.Errorf("block = %+v, want generated id and text type", added.Block)
	}
	if added.Block.X != 10 || added.Block.Width != 200 || added.Block.Height != 100 {
		t.Errorf("geometry = %+v, want x=10 and default size", added.Block)
	}
	if len(added.Block.Tags) != 1 || added.Block.Tags[0] != "go" {
		t.Errorf("tags = %v, want [go]", added.Block.Tags)
	}

	text, _ = call(t, h.ListBlocks, nil)
	if !strings.Contains(text, `"count":1`) {
		t.Errorf("list_blocks = %s, want count 1", text)
	}
}

func TestAddBlockErrors(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing content", map[string]any{}, "content argument is required"},
		{"bad type", map[string]any{"content": "x", "type": "video"}, "failed to add block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, h.AddBlock, tt.args)
			if !isErr {
				t.Fatalf("expected tool error, got %s", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("error = %q, want to contain %q", text, tt.want)
			}
		})
	}
}

func TestConnectAndAnalyze(t *testing.T) {
	h := newTestHandlers(t)
	call(t, h.AddBlock, map[string]any{"content": "golang channels"})
	call(t, h.AddBlock, map[string]any{"content": "golang goroutines", "x": float64(900), "y": float64(900)})
	call(t, h.AddBlock, map[string]any{"content": "pasta"})

	text, _ := call(t, h.ListBlocks, nil)
	var list struct {
		Blocks []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ids := map[string]string{}
	for _, b := range list.Blocks {
		ids[b.Content] = b.ID
	}

	text, _ = call(t, h.AnalyzeCanvas, nil)
	if !strings.Contains(text, `"type":"connect"`) || !strings.Contains(text, `"type":"relocate"`) {
		t.Errorf("analyze_canvas = %s, want connect and relocate", text)
	}

	text, isErr := call(t, h.ConnectBlocks, map[string]any{
		"from_block": ids["golang channels"],
		"to_block":   ids["golang goroutines"],
	})
	if isErr {
		t.Fatalf("connect_blocks error: %s", text)
	}

	_, isErr = call(t, h.ConnectBlocks, map[string]any{
		"from_block": ids["golang channels"],
		"to_block":   ids["golang goroutines"],
	})
	if !isErr {
		t.Error("duplicate connect_blocks should fail")
	}

	text, _ = call(t, h.AnalyzeCanvas, nil)
	if strings.Contains(text, `"type":"connect"`) {
		t.Errorf("analyze_canvas after connecting = %s, want no connect suggestion", text)
	}

	text, _ = call(t, h.FindSimilar, map[string]any{"block_id": ids["golang channels"]})
	if !strings.Contains(text, ids["golang goroutines"]) || strings.Contains(text, ids["pasta"]) {
		t.Errorf("find_similar = %s", text)
	}

	text, _ = call(t, h.AutoSuggest, map[string]any{"block_id": ids["pasta"]})
	if text != `{"suggestions":[]}` {
		t.Errorf("auto_suggest for unrelated block = %s, want empty", text)
	}

	text, _ = call(t, h.SearchBlocks, map[string]any{"query": "golang"})
	var search struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(text), &search); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(search.Results) != 2 {
		t.Errorf("search results = %d, want 2", len(search.Results))
	}
}

func TestToolErrors(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name string
		fn   toolFunc
		args map[string]any
	}{
		{"find_similar missing id", h.FindSimilar, map[string]any{}},
		{"find_similar unknown block", h.FindSimilar, map[string]any{"block_id": "nope"}},
		{"search empty query", h.SearchBlocks, map[string]any{"query": "  "}},
		{"auto_suggest unknown block", h.AutoSuggest, map[string]any{"block_id": "nope"}},
		{"connect missing target", h.ConnectBlocks, map[string]any{"from_block": "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if text, isErr := call(t, tt.fn, tt.args); !isErr {
				t.Errorf("expected tool error, got %s", text)
			}
		})
	}
}

func TestClearEmbeddingCache(t *testing.T) {
	h := newTestHandlers(t)
	call(t, h.AddBlock, map[string]any{"content": "golang"})

	text, isErr := call(t, h.ClearEmbeddingCache, nil)
	if isErr || text != `{"success":true}` {
		t.Errorf("clear_embedding_cache = %s (error %v)", text, isErr)
	}
}

func TestRegisterTools(t *testing.T) {
	h := newTestHandlers(t)
	server := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	RegisterTools(server, h.svc, logging.Discard())

	resp := server.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	for _, name := range []string{
		"add_block", "list_blocks", "connect_blocks", "find_similar",
		"search_blocks", "auto_suggest", "analyze_canvas", "clear_embedding_cache",
	} {
		if !strings.Contains(string(raw), `"name":"`+name+`"`) {
			t.Errorf("tools/list missing %s", name)
		}
	}
}
