// ABOUTME: Canvas service: block and connection writes plus semantic analysis reads
// ABOUTME: Generates embeddings on write, degrading to no vector when the provider fails
package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/models"
	"github.com/harper/semantic-canvas/internal/storage"
	"github.com/harper/semantic-canvas/internal/util"
)

var (
	ErrBlockNotFound      = errors.New("block not found")
	ErrBlockExists        = errors.New("block already exists")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrNoEmbedding        = errors.New("block has no embedding")
	ErrValidation         = errors.New("validation failed")
)

// BlockResult is a saved block with the connection suggestions computed for it
type BlockResult struct {
	Block       models.Block        `json:"block"`
	Suggestions []models.Suggestion `json:"suggestions"`
	// SuggestionsUnavailable is set when the embedding could not be generated
	SuggestionsUnavailable bool `json:"suggestions_unavailable,omitempty"`
}

// BlockPatch holds the fields to change on update; nil fields are left alone
type BlockPatch struct {
	Type     *models.ContentType `json:"type,omitempty"`
	Content  *string             `json:"content,omitempty"`
	Language *string             `json:"language,omitempty"`
	Tags     *[]string           `json:"tags,omitempty"`
	X        *float64            `json:"x,omitempty"`
	Y        *float64            `json:"y,omitempty"`
	Width    *float64            `json:"width,omitempty"`
	Height   *float64            `json:"height,omitempty"`
}

// RegenerateReport summarizes a bulk embedding pass
type RegenerateReport struct {
	Total       int `json:"total"`
	Regenerated int `json:"regenerated"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Service owns the canvas write path and answers analysis queries against
// the current store contents.
type Service struct {
	store      storage.Store
	engine     *core.Engine
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRetry sets how often a rate-limited embedding call is retried and the
// base delay for exponential backoff.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.retryDelay = baseDelay
	}
}

// NewService creates a canvas service
func NewService(store storage.Store, engine *core.Engine, opts ...Option) *Service {
	s := &Service{
		store:      store,
		engine:     engine,
		logger:     slog.Default(),
		maxRetries: 2,
		retryDelay: time.Second,
		sleep:      util.Wait,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the semantic engine
func (s *Service) Engine() *core.Engine {
	return s.engine
}

// Store returns the backing store
func (s *Service) Store() storage.Store {
	return s.store
}

// CreateBlock validates and saves a new block. An id is generated when empty.
func (s *Service) CreateBlock(ctx context.Context, b models.Block) (*BlockResult, error) {
	if b.ID == "" {
		b.ID = "b-" + uuid.NewString()
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	b.Embedding = nil

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	existing, err := s.store.GetBlock(b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockExists, b.ID)
	}

	s.logger.Info("creating block", "block_id", b.ID, "type", b.Type)

	result := &BlockResult{Suggestions: []models.Suggestion{}}
	vector, err := s.embedWithRetry(ctx, &b)
	if err != nil {
		s.logger.Warn("failed to generate embedding for block", "block_id", b.ID, "error", err)
		result.SuggestionsUnavailable = true
	} else {
		b.Embedding = vector
	}

	if err := s.store.SaveBlock(&b); err != nil {
		return nil, err
	}

	if vector != nil {
		result.Suggestions, result.SuggestionsUnavailable = s.suggestFor(b.ID, vector)
	}

	result.Block = b.Summary()
	return result, nil
}

// UpdateBlock applies patch to an existing block. The embedding is
// regenerated only when content, language, tags or type changed; if that
// fails the stale vector is dropped.
func (s *Service) UpdateBlock(ctx context.Context, id string, patch BlockPatch) (*BlockResult, error) {
	existing, err := s.store.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	updated := *existing
	patch.apply(&updated)
	updated.UpdatedAt = s.now()

	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	result := &BlockResult{Suggestions: []models.Suggestion{}}
	if updated.ContentChanged(existing) {
		s.logger.Info("content changed, regenerating embedding", "block_id", id)
		vector, err := s.embedWithRetry(ctx, &updated)
		if err != nil {
			s.logger.Warn("failed to regenerate embedding", "block_id", id, "error", err)
			updated.Embedding = nil
			result.SuggestionsUnavailable = true
		} else {
			updated.Embedding = vector
		}
	}

	if err := s.store.SaveBlock(&updated); err != nil {
		return nil, err
	}

	if updated.ContentChanged(existing) && updated.HasEmbedding() {
		result.Suggestions, result.SuggestionsUnavailable = s.suggestFor(id, updated.Embedding)
	}

	result.Block = updated.Summary()
	return result, nil
}

func (p BlockPatch) apply(b *models.Block) {
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	if p.Tags != nil {
		b.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
}

// DeleteBlock removes a block and its connections
func (s *Service) DeleteBlock(id string) error {
	deleted, err := s.store.DeleteBlock(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	s.logger.Info("block deleted", "block_id", id)
	return nil
}

// GetBlock returns a block without its vector
func (s *Service) GetBlock(id string) (*models.Block, error) {
	b, err := s.store.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	summary := b.Summary()
	return &summary, nil
}

// ListBlocks returns every block without vectors, newest first
func (s *Service) ListBlocks() ([]models.Block, error) {
	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	out := make([]models.Block, 0, len(blocks))
	for i := range blocks {
		out = append(out, blocks[i].Summary())
	}
	return out, nil
}

// CreateConnection links two existing blocks. The same directed pair may
// only be stored once.
func (s *Service) CreateConnection(c models.Connection) (*models.Connection, error) {
	if c.ID == "" {
		c.ID = "c-" + uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	for _, id := range []string{c.FromBlock, c.ToBlock} {
		b, err := s.store.GetBlock(id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
		}
	}

	exists, err := s.store.ConnectionExists(c.FromBlock, c.ToBlock)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s -> %s", ErrConnectionExists, c.FromBlock, c.ToBlock)
	}

	c.CreatedAt = s.now()
	s.logger.Info("creating connection", "connection_id", c.ID, "from", c.FromBlock, "to", c.ToBlock)
	if err := s.store.CreateConnection(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConnection returns a connection by id
func (s *Service) GetConnection(id string) (*models.Connection, error) {
	c, err := s.store.GetConnection(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	return c, nil
}

// ListConnections returns every connection, newest first
func (s *Service) ListConnections() ([]models.Connection, error) {
	conns, err := s.store.ListConnections()
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []models.Connection{}
	}
	return conns, nil
}

// ListConnectionsByBlock returns connections touching blockID
func (s *Service) ListConnectionsByBlock(blockID string) ([]models.Connection, error) {
	conns, err := s.store.ListConnectionsByBlock(blockID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []models.Connection{}
	}
	return conns, nil
}

// DeleteConnection removes a connection by id
func (s *Service) DeleteConnection(id string) error {
	deleted, err := s.store.DeleteConnection(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	s.logger.Info("connection deleted", "connection_id", id)
	return nil
}

// AnalyzeCanvas runs the whole-canvas analysis over the current store contents
func (s *Service) AnalyzeCanvas(ctx context.Context) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	conns, err := s.store.ListConnections()
	if err != nil {
		return nil, err
	}
	return s.engine.AnalyzeCanvas(blocks, conns)
}

// Relationships returns every pair of embedded blocks at or above the scan
// threshold, most similar first
func (s *Service) Relationships(ctx context.Context) ([]models.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	return s.engine.ScanRelationships(blocks)
}

// FindSimilar ranks blocks against the stored vector of block id. A
// non-positive limit or threshold falls back to the policy defaults.
func (s *Service) FindSimilar(ctx context.Context, id string, limit int, threshold float64) ([]models.SimilarBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := s.store.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if !b.HasEmbedding() {
		return nil, fmt.Errorf("%w: %s", ErrNoEmbedding, id)
	}
	if threshold <= 0 {
		threshold = s.engine.Policy().DirectThreshold
	}

	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	return s.engine.FindSimilar(b.Embedding, blocks, id, limit, threshold)
}

// SearchText embeds query and ranks blocks with the broad search threshold
func (s *Service) SearchText(ctx context.Context, query string, limit int) ([]models.SimilarBlock, error) {
	if strings.TrimSpace(query) == "" {
		return nil, embedding.ErrEmptyInput
	}
	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	return s.engine.SearchText(ctx, query, blocks, limit)
}

// AutoSuggest proposes connections for an existing block from its stored
// vector. A block without a vector gets no suggestions.
func (s *Service) AutoSuggest(ctx context.Context, id string) ([]models.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := s.store.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if !b.HasEmbedding() {
		return []models.Suggestion{}, nil
	}

	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}
	return s.engine.AutoSuggest(id, b.Embedding, blocks)
}

// RegenerateEmbedding recomputes and stores the vector for one block.
// Unlike the write path, a provider failure is returned to the caller.
func (s *Service) RegenerateEmbedding(ctx context.Context, id string) (*BlockResult, error) {
	b, err := s.store.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	vector, err := s.embedWithRetry(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetEmbedding(id, vector); err != nil {
		return nil, err
	}
	b.Embedding = vector

	result := &BlockResult{Block: b.Summary()}
	result.Suggestions, result.SuggestionsUnavailable = s.suggestFor(id, vector)
	return result, nil
}

// RegenerateAll embeds every block lacking a vector, or every block when
// force is set. Pending blocks go to the provider as one batch; when the
// batch was rate limited, its failed slots are retried one at a time with
// backoff. Individual failures are counted and logged; cancellation stops
// the pass.
func (s *Service) RegenerateAll(ctx context.Context, force bool) (*RegenerateReport, error) {
	blocks, err := s.store.ListBlocks()
	if err != nil {
		return nil, err
	}

	report := &RegenerateReport{Total: len(blocks)}
	var pending []*models.Block
	for i := range blocks {
		if blocks[i].HasEmbedding() && !force {
			report.Skipped++
			continue
		}
		pending = append(pending, &blocks[i])
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	vectors, batchErr := s.engine.EmbedBlocks(ctx, pending)
	retry := embedding.IsRetryable(batchErr)
	for i, b := range pending {
		vector := vectors[i]
		if vector == nil && retry {
			vector, err = s.embedWithRetry(ctx, b)
			if err != nil {
				batchErr = err
			}
		}
		if vector == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			s.logger.Warn("failed to regenerate embedding", "block_id", b.ID, "error", batchErr)
			report.Failed++
			continue
		}
		if err := s.store.SetEmbedding(b.ID, vector); err != nil {
			return report, err
		}
		report.Regenerated++
	}

	s.logger.Info("embedding regeneration complete",
		"total", report.Total,
		"regenerated", report.Regenerated,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}

// ClearCache drops every cached embedding
func (s *Service) ClearCache() {
	s.engine.ClearCache()
}

func (s *Service) suggestFor(id string, vector []float64) ([]models.Suggestion, bool) {
	blocks, err := s.store.ListBlocks()
	if err != nil {
		s.logger.Warn("failed to load blocks for suggestions", "block_id", id, "error", err)
		return []models.Suggestion{}, true
	}
	suggestions, err := s.engine.AutoSuggest(id, vector, blocks)
	if err != nil {
		s.logger.Warn("failed to generate suggestions", "block_id", id, "error", err)
		return []models.Suggestion{}, true
	}
	s.logger.Info("generated embedding and suggestions", "block_id", id, "suggestions", len(suggestions))
	return suggestions, false
}

// embedWithRetry retries only rate-limited failures, with exponential
// backoff and jitter.
func (s *Service) embedWithRetry(ctx context.Context, b *models.Block) ([]float64, error) {
	for attempt := 0; ; attempt++ {
		vector, err := s.engine.EmbedBlock(ctx, b)
		if err == nil {
			return vector, nil
		}
		if !embedding.IsRetryable(err) || attempt >= s.maxRetries {
			return nil, err
		}

		delay := util.NewBackoff(s.retryDelay).Delay(attempt + 1)
		s.logger.Warn("embedding rate limited, retrying",
			"block_id", b.ID,
			"attempt", attempt+1,
			"max_retries", s.maxRetries,
			"delay", delay)
		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
