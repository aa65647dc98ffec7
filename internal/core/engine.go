// ABOUTME: Semantic suggestion engine facade used by the canvas service, HTTP and MCP layers
// ABOUTME: Exposes computeEmbedding, findSimilar, searchText, autoSuggest, analyzeCanvas, clearCache
package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/metrics"
	"github.com/harper/semantic-canvas/internal/models"
)

// Engine wires the embedding adapter to the similarity and suggestion
// pipeline. Blocks and connections are read-only snapshots supplied per call;
// the embedding cache is the only shared mutable state.
type Engine struct {
	adapter   *embedding.Adapter
	generator *Generator
	policy    Policy
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithEngineMetrics sets the metrics recorder
func WithEngineMetrics(r metrics.Recorder) EngineOption {
	return func(e *Engine) { e.metrics = metrics.OrNoop(r) }
}

// NewEngine creates an engine. adapter may be nil when only stored vectors
// are used; embedding calls then fail with ErrProvider.
func NewEngine(adapter *embedding.Adapter, policy Policy, opts ...EngineOption) *Engine {
	e := &Engine{
		adapter:   adapter,
		generator: NewGenerator(policy),
		policy:    policy,
		logger:    slog.Default(),
		metrics:   metrics.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// ComputeEmbedding returns the vector for text via the cache-backed adapter
func (e *Engine) ComputeEmbedding(ctx context.Context, text string) ([]float64, error) {
	if e.adapter == nil {
		return nil, &embedding.Error{Kind: embedding.ErrProvider, Message: "no embedding provider configured"}
	}
	return e.adapter.Embed(ctx, text)
}

// EmbedBlock returns the vector for the block's derived text
func (e *Engine) EmbedBlock(ctx context.Context, b *models.Block) ([]float64, error) {
	return e.ComputeEmbedding(ctx, embedding.DerivedText(b))
}

// EmbedBlocks embeds each block's derived text in one batch. Result slots
// line up with blocks; a failed slot is nil and its error is joined into err.
func (e *Engine) EmbedBlocks(ctx context.Context, blocks []*models.Block) ([][]float64, error) {
	if e.adapter == nil {
		return make([][]float64, len(blocks)), &embedding.Error{Kind: embedding.ErrProvider, Message: "no embedding provider configured"}
	}
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = embedding.DerivedText(b)
	}
	return e.adapter.EmbedBatch(ctx, texts)
}

// FindSimilar ranks embedded blocks against vector. Non-positive limit uses
// the policy default; threshold is used as given.
func (e *Engine) FindSimilar(vector []float64, blocks []models.Block, excludeID string, limit int, threshold float64) ([]models.SimilarBlock, error) {
	if limit <= 0 {
		limit = e.policy.FindSimilarLimit
	}

	embedded, candidates := candidatesFrom(blocks)
	matches, err := Rank(vector, candidates, RankOptions{
		ExcludeID: excludeID,
		Limit:     limit,
		Threshold: threshold,
	})
	if err != nil {
		return nil, err
	}

	results := make([]models.SimilarBlock, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.SimilarBlock{
			Block:      embedded[m.Index()].Summary(),
			Similarity: m.Similarity,
		})
	}

	e.logger.Info("found similar blocks", "count", len(results), "threshold", threshold, "exclude_block_id", excludeID)
	return results, nil
}

// SearchText embeds query and ranks blocks with the broad search threshold
func (e *Engine) SearchText(ctx context.Context, query string, blocks []models.Block, limit int) ([]models.SimilarBlock, error) {
	if limit <= 0 {
		limit = e.policy.SearchLimit
	}
	vector, err := e.ComputeEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.FindSimilar(vector, blocks, "", limit, e.policy.SearchThreshold)
}

// AutoSuggest proposes up to AutoSuggestLimit connect suggestions for blockID
func (e *Engine) AutoSuggest(blockID string, vector []float64, blocks []models.Block) ([]models.Suggestion, error) {
	start := time.Now()
	suggestions, err := e.generator.AutoSuggest(blockID, vector, blocks)
	if err != nil {
		return nil, err
	}
	e.metrics.Analysis("auto_suggest", metrics.Since(start), len(suggestions))
	return suggestions, nil
}

// AutoSuggestForBlock embeds the block and proposes connections. Embedding
// failures degrade to an empty list; the failure is returned alongside so
// callers can report that suggestions were unavailable.
func (e *Engine) AutoSuggestForBlock(ctx context.Context, b *models.Block, blocks []models.Block) ([]models.Suggestion, []float64, error) {
	vector, err := e.EmbedBlock(ctx, b)
	if err != nil {
		e.logger.Warn("failed to generate embedding for block", "block_id", b.ID, "error", err)
		return []models.Suggestion{}, nil, err
	}
	suggestions, err := e.AutoSuggest(b.ID, vector, blocks)
	if err != nil {
		return nil, vector, err
	}
	return suggestions, vector, nil
}

// AnalyzeCanvas scans the canvas and returns at most MaxSuggestions suggestions
func (e *Engine) AnalyzeCanvas(blocks []models.Block, connections []models.Connection) (*models.Analysis, error) {
	start := time.Now()
	e.logger.Info("starting full canvas analysis")

	analysis, err := e.generator.AnalyzeCanvas(blocks, connections)
	if err != nil {
		e.logger.Error("canvas analysis failed", "error", err)
		return nil, err
	}

	e.metrics.Analysis("canvas", metrics.Since(start), len(analysis.Suggestions))
	e.logger.Info("canvas analysis complete",
		"total_blocks", len(blocks),
		"total_connections", len(connections),
		"relationships", analysis.Relationships,
		"suggestions", len(analysis.Suggestions))
	return analysis, nil
}

// ScanRelationships exposes the raw pairwise scan at the policy threshold
func (e *Engine) ScanRelationships(blocks []models.Block) ([]models.Relationship, error) {
	return ScanAll(blocks, e.policy.ScanThreshold)
}

// ClearCache drops every cached vector
func (e *Engine) ClearCache() {
	if e.adapter == nil {
		return
	}
	e.adapter.Cache().Clear()
	e.logger.Info("embedding cache cleared")
}

// IsEmbeddingFailure reports whether err came from embedding generation
// rather than from ranking or storage.
func IsEmbeddingFailure(err error) bool {
	var embErr *embedding.Error
	return errors.As(err, &embErr)
}
