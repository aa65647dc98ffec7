// ABOUTME: Embedding provider adapter with content-addressed caching
// ABOUTME: One provider call per distinct fingerprint, no internal retries
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/harper/semantic-canvas/internal/metrics"
	"github.com/harper/semantic-canvas/internal/models"
)

// Provider is the external text-to-vector function. Implementations must be
// safe for concurrent use and should honour ctx cancellation.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ProviderFunc adapts a plain function to Provider
type ProviderFunc func(ctx context.Context, text string) ([]float64, error)

func (f ProviderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// Adapter wraps a Provider with input checks, caching and error normalization
type Adapter struct {
	provider  Provider
	cache     *Cache
	timeout   time.Duration
	dimension int
	inflight  singleflight.Group
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithTimeout bounds every provider call; zero leaves only the caller's deadline
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// WithDimension rejects provider vectors whose length differs from d
func WithDimension(d int) AdapterOption {
	return func(a *Adapter) { a.dimension = d }
}

// WithLogger sets the adapter logger
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(r metrics.Recorder) AdapterOption {
	return func(a *Adapter) { a.metrics = metrics.OrNoop(r) }
}

// NewAdapter creates an adapter over provider using cache for lookups
func NewAdapter(provider Provider, cache *Cache, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		provider: provider,
		cache:    cache,
		logger:   slog.Default(),
		metrics:  metrics.Noop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = NewCache(DefaultCacheSize, DefaultCacheTTL, a.metrics)
	}
	return a
}

// Cache returns the adapter's cache
func (a *Adapter) Cache() *Cache {
	return a.cache
}

// Embed returns the vector for text, calling the provider only on a cache miss.
// Concurrent misses for the same text share a single provider call.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Kind: ErrEmptyInput}
	}

	fp := Fingerprint(text)
	if v, ok := a.cache.Get(fp); ok {
		a.metrics.CacheLookup(true)
		a.logger.Debug("embedding cache hit", "hash", shortFingerprint(fp))
		return v, nil
	}
	a.metrics.CacheLookup(false)

	ch := a.inflight.DoChan(fp, func() (any, error) {
		return a.fetch(ctx, fp, text)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]float64)), nil
	case <-ctx.Done():
		return nil, classify(ctx.Err())
	}
}

// EmbedBlock embeds the block's derived text
func (a *Adapter) EmbedBlock(ctx context.Context, b *models.Block) ([]float64, error) {
	return a.Embed(ctx, DerivedText(b))
}

// EmbedBatch embeds texts one at a time. A failed slot is nil in the result
// and its error is joined into the returned error.
func (a *Adapter) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var errs []error
	for i, text := range texts {
		v, err := a.Embed(ctx, text)
		if err != nil {
			a.logger.Warn("failed to generate embedding in batch", "index", i, "error", err)
			errs = append(errs, fmt.Errorf("text %d: %w", i, err))
			continue
		}
		out[i] = v
	}
	return out, errors.Join(errs...)
}

func (a *Adapter) fetch(ctx context.Context, fp, text string) ([]float64, error) {
	// A concurrent caller may have filled the cache while we waited to lead.
	if v, ok := a.cache.Get(fp); ok {
		return v, nil
	}

	// The call is shared by every caller waiting on fp, so one caller's
	// cancellation must not fail the others. Each caller still stops waiting
	// when its own ctx ends; the call itself is bounded by the timeout.
	callCtx := context.WithoutCancel(ctx)
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	a.logger.Info("generating embedding via provider", "hash", shortFingerprint(fp))
	vector, err := a.provider.Embed(callCtx, text)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err != nil {
		classified := classify(err)
		a.metrics.ProviderCall(outcome(classified), metrics.Since(start))
		a.logger.Error("failed to generate embedding",
			"hash", shortFingerprint(fp),
			"error", classified,
			"text", truncate(text, 100))
		return nil, classified
	}

	if len(vector) == 0 {
		a.metrics.ProviderCall("error", metrics.Since(start))
		return nil, &Error{Kind: ErrProvider, Message: "no embedding returned"}
	}
	if a.dimension > 0 && len(vector) != a.dimension {
		a.metrics.ProviderCall("error", metrics.Since(start))
		return nil, &Error{Kind: ErrProvider, Message: fmt.Sprintf("expected %d dimensions, got %d", a.dimension, len(vector))}
	}

	a.metrics.ProviderCall("ok", metrics.Since(start))
	a.cache.Put(fp, vector)
	a.logger.Info("embedding generated", "dimensions", len(vector), "hash", shortFingerprint(fp))
	return vector, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrAuthFailure):
		return "auth"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
