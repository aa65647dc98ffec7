// ABOUTME: Centralized configuration for the semantic canvas server and CLI
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harper/semantic-canvas/internal/core"
)

// Config holds all configuration for the canvas
type Config struct {
	// Storage settings
	Store  string
	DBPath string

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey       string
	OpenAIBaseURL   string
	EmbeddingModel  string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	VectorDimension int

	// Embedding cache
	CacheSize int
	CacheTTL  time.Duration

	// HTTP settings
	HTTPAddr  string
	RateLimit float64
	RateBurst int

	// Logging
	LogLevel  string
	LogFormat string

	// Suggestion policy
	Policy core.Policy
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	defaults := core.DefaultPolicy()

	cfg := &Config{
		Store:           strings.ToLower(getEnv("CANVAS_STORE", "sqlite")),
		DBPath:          os.Getenv("CANVAS_DB_PATH"),
		CharmHost:       getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:     getEnv("CHARM_DB", "semantic-canvas"),
		AutoSync:        getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		EmbeddingModel:  getEnv("CANVAS_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("CANVAS_EMBED_MAX_RETRIES", 2),
		RetryDelay:      getEnvDuration("CANVAS_EMBED_RETRY_DELAY", time.Second),
		VectorDimension: getEnvInt("CANVAS_VECTOR_DIMENSION", 1536),
		CacheSize:       getEnvInt("CANVAS_CACHE_SIZE", 1000),
		CacheTTL:        getEnvDuration("CANVAS_CACHE_TTL", time.Hour),
		HTTPAddr:        getEnv("CANVAS_HTTP_ADDR", ":8080"),
		RateLimit:       getEnvFloat("CANVAS_RATE_LIMIT", 5),
		RateBurst:       getEnvInt("CANVAS_RATE_BURST", 10),
		LogLevel:        getEnv("CANVAS_LOG_LEVEL", "info"),
		LogFormat:       getEnv("CANVAS_LOG_FORMAT", "text"),
		Policy: core.Policy{
			DirectThreshold:       getEnvFloat("CANVAS_DIRECT_THRESHOLD", defaults.DirectThreshold),
			SearchThreshold:       getEnvFloat("CANVAS_SEARCH_THRESHOLD", defaults.SearchThreshold),
			ScanThreshold:         getEnvFloat("CANVAS_SCAN_THRESHOLD", defaults.ScanThreshold),
			AutoSuggestLimit:      getEnvInt("CANVAS_AUTO_SUGGEST_LIMIT", defaults.AutoSuggestLimit),
			FindSimilarLimit:      getEnvInt("CANVAS_FIND_SIMILAR_LIMIT", defaults.FindSimilarLimit),
			SearchLimit:           getEnvInt("CANVAS_SEARCH_LIMIT", defaults.SearchLimit),
			ConnectCandidates:     getEnvInt("CANVAS_CONNECT_CANDIDATES", defaults.ConnectCandidates),
			RelocateCandidates:    getEnvInt("CANVAS_RELOCATE_CANDIDATES", defaults.RelocateCandidates),
			RelocateDistance:      getEnvFloat("CANVAS_RELOCATE_DISTANCE", defaults.RelocateDistance),
			RelocateMinSimilarity: getEnvFloat("CANVAS_RELOCATE_MIN_SIMILARITY", defaults.RelocateMinSimilarity),
			RelocateDiscount:      getEnvFloat("CANVAS_RELOCATE_DISCOUNT", defaults.RelocateDiscount),
			MaxSuggestions:        getEnvInt("CANVAS_MAX_SUGGESTIONS", defaults.MaxSuggestions),
			EnableGroups:          getEnvBool("CANVAS_ENABLE_GROUPS", defaults.EnableGroups),
			GroupThreshold:        getEnvFloat("CANVAS_GROUP_THRESHOLD", defaults.GroupThreshold),
			GroupMinSize:          getEnvInt("CANVAS_GROUP_MIN_SIZE", defaults.GroupMinSize),
		},
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Store != "sqlite" && c.Store != "charm" {
		return fmt.Errorf("CANVAS_STORE must be sqlite or charm, got %q", c.Store)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("CANVAS_EMBED_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CANVAS_CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CANVAS_CACHE_TTL must be positive, got %v", c.CacheTTL)
	}
	if c.VectorDimension < 0 {
		return fmt.Errorf("CANVAS_VECTOR_DIMENSION must not be negative, got %d", c.VectorDimension)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("CANVAS_RATE_LIMIT and CANVAS_RATE_BURST must be positive, got %v/%d", c.RateLimit, c.RateBurst)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid suggestion policy: %w", err)
	}
	return nil
}

// HasOpenAIKey reports whether an API key is configured
func (c *Config) HasOpenAIKey() bool {
	return strings.TrimSpace(c.OpenAIKey) != ""
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
