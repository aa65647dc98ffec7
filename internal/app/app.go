// ABOUTME: Wires configuration, logging, storage, embeddings and the canvas service
// ABOUTME: Shared by the canvas CLI, the HTTP server and the stdio MCP server
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/charm"
	"github.com/harper/semantic-canvas/internal/config"
	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/llm"
	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/metrics"
	"github.com/harper/semantic-canvas/internal/storage"
)

// Options control how the application is assembled
type Options struct {
	Version  string
	LogLevel string // overrides CANVAS_LOG_LEVEL when set
	LogOut   io.Writer
	// Provider replaces the OpenAI client; used by tests and benchmarks
	Provider embedding.Provider
}

// App holds the assembled components
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Prometheus
	Store   storage.Store
	Service *canvas.Service
}

// New loads configuration and builds the service graph
func New(opts Options) (*App, error) {
	// Missing .env is fine in production
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	out := opts.LogOut
	if out == nil {
		out = os.Stderr
	}
	logger := logging.Init(out, level, cfg.LogFormat, opts.Version)

	store, err := storage.Open(storage.Options{
		Backend: cfg.Store,
		DBPath:  cfg.DBPath,
		Charm: &charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider := opts.Provider
	if provider == nil {
		provider, err = newProvider(cfg, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	prom := metrics.NewPrometheus()
	adapter := embedding.NewAdapter(provider,
		embedding.NewCache(cfg.CacheSize, cfg.CacheTTL, prom),
		embedding.WithTimeout(cfg.Timeout),
		embedding.WithDimension(cfg.VectorDimension),
		embedding.WithLogger(logger),
		embedding.WithMetrics(prom),
	)
	engine := core.NewEngine(adapter, cfg.Policy,
		core.WithEngineLogger(logger),
		core.WithEngineMetrics(prom),
	)
	svc := canvas.NewService(store, engine,
		canvas.WithLogger(logger),
		canvas.WithRetry(cfg.MaxRetries, cfg.RetryDelay),
	)

	logger.Debug("canvas initialized",
		"store", cfg.Store,
		"embedding_model", cfg.EmbeddingModel,
		"direct_threshold", cfg.Policy.DirectThreshold,
		"scan_threshold", cfg.Policy.ScanThreshold)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: prom,
		Store:   store,
		Service: svc,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

// newProvider returns the OpenAI embedding client, or a provider that fails
// every call with an auth error when no key is configured so that plain
// storage commands still work.
func newProvider(cfg *config.Config, logger *slog.Logger) (embedding.Provider, error) {
	if !cfg.HasOpenAIKey() {
		logger.Warn("OPENAI_API_KEY not set; embeddings will not be generated")
		return embedding.ProviderFunc(func(context.Context, string) ([]float64, error) {
			return nil, &embedding.Error{Kind: embedding.ErrAuthFailure, Message: "OPENAI_API_KEY not set"}
		}), nil
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return client, nil
}
