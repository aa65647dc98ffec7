// ABOUTME: Tests for the canvas service write path and analysis queries
// ABOUTME: Uses in-memory SQLite and a keyword-driven fake embedding provider
package canvas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/models"
	"github.com/harper/semantic-canvas/internal/storage/sqlite"
	"github.com/harper/semantic-canvas/internal/util"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("provider status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

// keywordProvider maps topics in the text onto orthogonal axes
type keywordProvider struct {
	calls atomic.Int32
	fail  func(text string, call int32) error
}

func (p *keywordProvider) Embed(_ context.Context, text string) ([]float64, error) {
	n := p.calls.Add(1)
	if p.fail != nil {
		if err := p.fail(text, n); err != nil {
			return nil, err
		}
	}
	switch {
	case strings.Contains(text, "golang"):
		return []float64{1, 0.05, 0}, nil
	case strings.Contains(text, "cooking"):
		return []float64{0, 1, 0.05}, nil
	default:
		return []float64{0.05, 0, 1}, nil
	}
}

func newTestService(t *testing.T, provider embedding.Provider) *Service {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := logging.Discard()
	adapter := embedding.NewAdapter(provider, embedding.NewCache(100, time.Hour, nil), embedding.WithLogger(logger))
	engine := core.NewEngine(adapter, core.DefaultPolicy(), core.WithEngineLogger(logger))

	svc := NewService(store, engine, WithLogger(logger), WithRetry(2, time.Millisecond))
	svc.sleep = func(context.Context, time.Duration) error { return nil }
	return svc
}

func block(id, content string, x, y float64) models.Block {
	return models.Block{
		ID:      id,
		Type:    models.TypeText,
		Content: content,
		X:       x,
		Y:       y,
		Width:   200,
		Height:  100,
	}
}

func TestCreateBlock_EmbedsAndSuggests(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	first, err := svc.CreateBlock(ctx, block("a", "golang channels", 0, 0))
	if err != nil {
		t.Fatalf("CreateBlock(a) error = %v", err)
	}
	if first.SuggestionsUnavailable {
		t.Error("first block should have an embedding")
	}
	if len(first.Suggestions) != 0 {
		t.Errorf("first block suggestions = %d, want 0", len(first.Suggestions))
	}

	second, err := svc.CreateBlock(ctx, block("b", "golang goroutines", 50, 50))
	if err != nil {
		t.Fatalf("CreateBlock(b) error = %v", err)
	}
	if len(second.Suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(second.Suggestions))
	}
	action, ok := second.Suggestions[0].Action.(models.Connect)
	if !ok {
		t.Fatalf("action = %T, want Connect", second.Suggestions[0].Action)
	}
	if action.BlockID != "b" || action.TargetID != "a" {
		t.Errorf("connect = %+v, want b -> a", action)
	}
	if !strings.HasPrefix(second.Suggestions[0].ID, "auto-") {
		t.Errorf("suggestion id = %q, want auto- prefix", second.Suggestions[0].ID)
	}
	if second.Block.Embedding != nil {
		t.Error("returned block must not carry its embedding")
	}

	stored, err := svc.Store().GetBlock("b")
	if err != nil || stored == nil {
		t.Fatalf("GetBlock(b) = %v, %v", stored, err)
	}
	if !stored.HasEmbedding() {
		t.Error("stored block should have an embedding")
	}
}

func TestCreateBlock_GeneratesID(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})

	res, err := svc.CreateBlock(context.Background(), block("", "golang", 0, 0))
	if err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if !strings.HasPrefix(res.Block.ID, "b-") {
		t.Errorf("ID = %q, want b- prefix", res.Block.ID)
	}
	if res.Block.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
}

func TestCreateBlock_Validation(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})

	tests := []struct {
		name  string
		block models.Block
	}{
		{"missing content", block("a", "", 0, 0)},
		{"bad type", models.Block{ID: "a", Type: "video", Content: "x"}},
		{"content too long", block("a", strings.Repeat("x", models.MaxContentLength+1), 0, 0)},
		{"language too long", models.Block{ID: "a", Type: models.TypeCode, Content: "x", Language: strings.Repeat("l", 51)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBlock(context.Background(), tt.block)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateBlock_Duplicate(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); !errors.Is(err, ErrBlockExists) {
		t.Errorf("error = %v, want ErrBlockExists", err)
	}
}

func TestCreateBlock_ProviderFailureDegrades(t *testing.T) {
	provider := &keywordProvider{fail: func(string, int32) error { return errors.New("upstream exploded") }}
	svc := newTestService(t, provider)

	res, err := svc.CreateBlock(context.Background(), block("a", "golang", 0, 0))
	if err != nil {
		t.Fatalf("CreateBlock() error = %v, want degraded success", err)
	}
	if !res.SuggestionsUnavailable {
		t.Error("expected SuggestionsUnavailable")
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("suggestions = %d, want 0", len(res.Suggestions))
	}
	if got := provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1 (generic errors are not retried)", got)
	}

	stored, _ := svc.Store().GetBlock("a")
	if stored == nil {
		t.Fatal("block should be saved without an embedding")
	}
	if stored.HasEmbedding() {
		t.Error("stored block should have no embedding")
	}
}

func TestCreateBlock_RetriesRateLimit(t *testing.T) {
	provider := &keywordProvider{fail: func(_ string, call int32) error {
		if call <= 2 {
			return statusErr(429)
		}
		return nil
	}}
	svc := newTestService(t, provider)

	res, err := svc.CreateBlock(context.Background(), block("a", "golang", 0, 0))
	if err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if res.SuggestionsUnavailable {
		t.Error("expected the third attempt to succeed")
	}
	if got := provider.calls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 3", got)
	}
}

func TestCreateBlock_RateLimitExhausted(t *testing.T) {
	provider := &keywordProvider{fail: func(string, int32) error { return statusErr(429) }}
	svc := newTestService(t, provider)

	res, err := svc.CreateBlock(context.Background(), block("a", "golang", 0, 0))
	if err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if !res.SuggestionsUnavailable {
		t.Error("expected SuggestionsUnavailable after retries are exhausted")
	}
	if got := provider.calls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 1 + 2 retries", got)
	}
}

func TestCreateBlock_AuthFailureNotRetried(t *testing.T) {
	provider := &keywordProvider{fail: func(string, int32) error { return statusErr(401) }}
	svc := newTestService(t, provider)

	if _, err := svc.CreateBlock(context.Background(), block("a", "golang", 0, 0)); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if got := provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestUpdateBlock(t *testing.T) {
	provider := &keywordProvider{}
	svc := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); err != nil {
		t.Fatalf("CreateBlock(a) error = %v", err)
	}
	if _, err := svc.CreateBlock(ctx, block("b", "cooking pasta", 0, 0)); err != nil {
		t.Fatalf("CreateBlock(b) error = %v", err)
	}
	callsAfterCreate := provider.calls.Load()

	// Moving a block does not touch its embedding
	x := 900.0
	res, err := svc.UpdateBlock(ctx, "b", BlockPatch{X: &x})
	if err != nil {
		t.Fatalf("UpdateBlock(move) error = %v", err)
	}
	if res.Block.X != 900 {
		t.Errorf("X = %v, want 900", res.Block.X)
	}
	if provider.calls.Load() != callsAfterCreate {
		t.Error("position-only update should not call the provider")
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("position-only update suggestions = %d, want 0", len(res.Suggestions))
	}

	// Changing content re-embeds and suggests against the new vector
	content := "golang generics"
	res, err = svc.UpdateBlock(ctx, "b", BlockPatch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateBlock(content) error = %v", err)
	}
	if provider.calls.Load() != callsAfterCreate+1 {
		t.Errorf("provider calls = %d, want %d", provider.calls.Load(), callsAfterCreate+1)
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(res.Suggestions))
	}
	if res.Suggestions[0].Action.(models.Connect).TargetID != "a" {
		t.Errorf("target = %v, want a", res.Suggestions[0].Action)
	}

	if _, err := svc.UpdateBlock(ctx, "missing", BlockPatch{X: &x}); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}

	empty := ""
	if _, err := svc.UpdateBlock(ctx, "b", BlockPatch{Content: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateBlock_FailedRegenerationDropsStaleVector(t *testing.T) {
	provider := &keywordProvider{fail: func(text string, _ int32) error {
		if strings.Contains(text, "broken") {
			return errors.New("boom")
		}
		return nil
	}}
	svc := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	content := "broken text"
	res, err := svc.UpdateBlock(ctx, "a", BlockPatch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateBlock() error = %v", err)
	}
	if !res.SuggestionsUnavailable {
		t.Error("expected SuggestionsUnavailable")
	}
	stored, _ := svc.Store().GetBlock("a")
	if stored.HasEmbedding() {
		t.Error("stale embedding should be cleared")
	}
}

func TestDeleteBlock(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if err := svc.DeleteBlock("a"); err != nil {
		t.Fatalf("DeleteBlock() error = %v", err)
	}
	if _, err := svc.GetBlock("a"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("GetBlock after delete error = %v, want ErrBlockNotFound", err)
	}
	if err := svc.DeleteBlock("a"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("second DeleteBlock error = %v, want ErrBlockNotFound", err)
	}
}

func TestConnections(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()
	for _, b := range []models.Block{block("a", "golang", 0, 0), block("b", "cooking", 0, 0)} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	conn, err := svc.CreateConnection(models.Connection{FromBlock: "a", ToBlock: "b"})
	if err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}
	if !strings.HasPrefix(conn.ID, "c-") {
		t.Errorf("ID = %q, want c- prefix", conn.ID)
	}

	tests := []struct {
		name string
		conn models.Connection
		want error
	}{
		{"duplicate", models.Connection{FromBlock: "a", ToBlock: "b"}, ErrConnectionExists},
		{"self link", models.Connection{FromBlock: "a", ToBlock: "a"}, ErrValidation},
		{"missing endpoint", models.Connection{FromBlock: "a"}, ErrValidation},
		{"unknown block", models.Connection{FromBlock: "a", ToBlock: "ghost"}, ErrBlockNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateConnection(tt.conn); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	// The reverse direction is a distinct connection
	if _, err := svc.CreateConnection(models.Connection{FromBlock: "b", ToBlock: "a"}); err != nil {
		t.Errorf("reverse CreateConnection() error = %v", err)
	}

	byA, err := svc.ListConnectionsByBlock("a")
	if err != nil || len(byA) != 2 {
		t.Errorf("ListConnectionsByBlock(a) = %d, %v; want 2", len(byA), err)
	}

	if _, err := svc.GetConnection(conn.ID); err != nil {
		t.Errorf("GetConnection() error = %v", err)
	}
	if err := svc.DeleteConnection(conn.ID); err != nil {
		t.Errorf("DeleteConnection() error = %v", err)
	}
	if _, err := svc.GetConnection(conn.ID); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("GetConnection after delete error = %v, want ErrConnectionNotFound", err)
	}
	if err := svc.DeleteConnection(conn.ID); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("second DeleteConnection error = %v, want ErrConnectionNotFound", err)
	}
}

func TestFindSimilar(t *testing.T) {
	provider := &keywordProvider{fail: func(text string, _ int32) error {
		if strings.Contains(text, "broken") {
			return errors.New("boom")
		}
		return nil
	}}
	svc := newTestService(t, provider)
	ctx := context.Background()

	for _, b := range []models.Block{
		block("a", "golang one", 0, 0),
		block("b", "golang two", 0, 0),
		block("c", "cooking", 0, 0),
		block("d", "broken", 0, 0),
	} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	similar, err := svc.FindSimilar(ctx, "a", 0, 0)
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(similar) != 1 || similar[0].Block.ID != "b" {
		t.Fatalf("FindSimilar(a) = %+v, want only b", similar)
	}
	if similar[0].Similarity != 1 {
		t.Errorf("similarity = %v, want 1", similar[0].Similarity)
	}

	if _, err := svc.FindSimilar(ctx, "d", 5, 0.7); !errors.Is(err, ErrNoEmbedding) {
		t.Errorf("error = %v, want ErrNoEmbedding", err)
	}
	if _, err := svc.FindSimilar(ctx, "zzz", 5, 0.7); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}
}

func TestSearchText(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	for _, b := range []models.Block{block("a", "golang", 0, 0), block("c", "cooking", 0, 0)} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	results, err := svc.SearchText(ctx, "golang tips", 0)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(results) != 1 || results[0].Block.ID != "a" {
		t.Errorf("SearchText() = %+v, want only a", results)
	}

	if _, err := svc.SearchText(ctx, "   ", 0); !errors.Is(err, embedding.ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
}

func TestAutoSuggest(t *testing.T) {
	provider := &keywordProvider{fail: func(text string, _ int32) error {
		if strings.Contains(text, "broken") {
			return errors.New("boom")
		}
		return nil
	}}
	svc := newTestService(t, provider)
	ctx := context.Background()

	for _, b := range []models.Block{block("a", "golang", 0, 0), block("b", "golang again", 0, 0), block("d", "broken", 0, 0)} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	suggestions, err := svc.AutoSuggest(ctx, "a")
	if err != nil {
		t.Fatalf("AutoSuggest() error = %v", err)
	}
	if len(suggestions) != 1 {
		t.Errorf("suggestions = %d, want 1", len(suggestions))
	}

	none, err := svc.AutoSuggest(ctx, "d")
	if err != nil {
		t.Fatalf("AutoSuggest(no embedding) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("AutoSuggest(no embedding) = %v, want empty list", none)
	}

	if _, err := svc.AutoSuggest(ctx, "zzz"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}
}

func TestAnalyzeCanvas(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	for _, b := range []models.Block{
		block("a", "golang one", 0, 0),
		block("b", "golang two", 1000, 0),
		block("c", "cooking", 0, 0),
	} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	analysis, err := svc.AnalyzeCanvas(ctx)
	if err != nil {
		t.Fatalf("AnalyzeCanvas() error = %v", err)
	}
	if analysis.Relationships != 1 {
		t.Errorf("relationships = %d, want 1", analysis.Relationships)
	}
	kinds := map[models.SuggestionKind]int{}
	for _, s := range analysis.Suggestions {
		kinds[s.Kind()]++
	}
	if kinds[models.KindConnect] != 1 || kinds[models.KindRelocate] != 1 {
		t.Errorf("kinds = %v, want one connect and one relocate", kinds)
	}

	// Once connected, only the relocate suggestion remains
	if _, err := svc.CreateConnection(models.Connection{FromBlock: "b", ToBlock: "a"}); err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}
	analysis, err = svc.AnalyzeCanvas(ctx)
	if err != nil {
		t.Fatalf("AnalyzeCanvas() error = %v", err)
	}
	if len(analysis.Suggestions) != 1 || analysis.Suggestions[0].Kind() != models.KindRelocate {
		t.Errorf("suggestions = %+v, want a single relocate", analysis.Suggestions)
	}
}

func TestRegenerate(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	provider := &keywordProvider{fail: func(string, int32) error {
		if down.Load() {
			return errors.New("provider down")
		}
		return nil
	}}
	svc := newTestService(t, provider)
	ctx := context.Background()

	for _, b := range []models.Block{block("a", "golang", 0, 0), block("b", "golang too", 0, 0)} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	if _, err := svc.RegenerateEmbedding(ctx, "a"); err == nil {
		t.Error("RegenerateEmbedding should surface provider errors")
	}

	down.Store(false)
	res, err := svc.RegenerateEmbedding(ctx, "a")
	if err != nil {
		t.Fatalf("RegenerateEmbedding() error = %v", err)
	}
	if res.Block.ID != "a" {
		t.Errorf("block id = %s, want a", res.Block.ID)
	}

	report, err := svc.RegenerateAll(ctx, false)
	if err != nil {
		t.Fatalf("RegenerateAll() error = %v", err)
	}
	if report.Total != 2 || report.Skipped != 1 || report.Regenerated != 1 || report.Failed != 0 {
		t.Errorf("report = %+v, want total 2, skipped 1, regenerated 1", report)
	}

	report, err = svc.RegenerateAll(ctx, true)
	if err != nil {
		t.Fatalf("RegenerateAll(force) error = %v", err)
	}
	if report.Regenerated != 2 {
		t.Errorf("forced regenerated = %d, want 2", report.Regenerated)
	}

	if _, err := svc.RegenerateEmbedding(ctx, "zzz"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	provider := &keywordProvider{fail: func(string, int32) error { return statusErr(429) }}
	svc := newTestService(t, provider)
	svc.sleep = util.Wait
	svc.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	b := block("a", "golang", 0, 0)
	if _, err := svc.embedWithRetry(ctx, &b); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRegenerateAll_RetriesRateLimitedSlots(t *testing.T) {
	var limited atomic.Bool
	limited.Store(true)
	provider := &keywordProvider{fail: func(text string, _ int32) error {
		if limited.Load() {
			return statusErr(429)
		}
		return nil
	}}
	svc := newTestService(t, provider)
	ctx := context.Background()

	for _, b := range []models.Block{block("a", "golang", 0, 0), block("b", "cooking", 0, 0)} {
		res, err := svc.CreateBlock(ctx, b)
		if err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
		if !res.SuggestionsUnavailable {
			t.Fatalf("block %s should have been saved without a vector", b.ID)
		}
	}

	// The batch hits the rate limit once, then the provider recovers
	provider.fail = func(string, int32) error {
		if limited.CompareAndSwap(true, false) {
			return statusErr(429)
		}
		return nil
	}
	report, err := svc.RegenerateAll(ctx, false)
	if err != nil {
		t.Fatalf("RegenerateAll() error = %v", err)
	}
	if report.Regenerated != 2 || report.Failed != 0 {
		t.Errorf("report = %+v, want both blocks regenerated", report)
	}
	for _, id := range []string{"a", "b"} {
		b, err := svc.GetBlock(id)
		if err != nil {
			t.Fatal(err)
		}
		if !b.HasEmbedding() {
			t.Errorf("block %s should have a vector after regeneration", id)
		}
	}
}

func TestRegenerateAll_CountsFailures(t *testing.T) {
	provider := &keywordProvider{fail: func(string, int32) error { return statusErr(401) }}
	svc := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, block("a", "golang", 0, 0)); err != nil {
		t.Fatal(err)
	}
	before := provider.calls.Load()

	report, err := svc.RegenerateAll(ctx, false)
	if err != nil {
		t.Fatalf("RegenerateAll() error = %v", err)
	}
	if report.Failed != 1 || report.Regenerated != 0 {
		t.Errorf("report = %+v, want one failure", report)
	}
	if calls := provider.calls.Load() - before; calls != 1 {
		t.Errorf("provider calls = %d, want 1 (auth failures are not retried)", calls)
	}
}

func TestRelationships(t *testing.T) {
	svc := newTestService(t, &keywordProvider{})
	ctx := context.Background()

	for _, b := range []models.Block{
		block("a", "golang one", 0, 0),
		block("b", "golang two", 0, 0),
		block("c", "cooking", 0, 0),
	} {
		if _, err := svc.CreateBlock(ctx, b); err != nil {
			t.Fatalf("CreateBlock(%s) error = %v", b.ID, err)
		}
	}

	rels, err := svc.Relationships(ctx)
	if err != nil {
		t.Fatalf("Relationships() error = %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1: %+v", len(rels), rels)
	}
	if models.PairKey(rels[0].Block1ID, rels[0].Block2ID) != models.PairKey("a", "b") {
		t.Errorf("relationship = %+v, want a/b", rels[0])
	}
}
