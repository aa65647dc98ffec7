// ABOUTME: Tests for application wiring
// ABOUTME: Builds the full service graph against a temp sqlite file

package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/harper/semantic-canvas/internal/config"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/models"
)

func TestNew_WiresService(t *testing.T) {
	t.Setenv("CANVAS_DB_PATH", filepath.Join(t.TempDir(), "canvas.db"))
	t.Setenv("CANVAS_STORE", "sqlite")
	t.Setenv("CANVAS_VECTOR_DIMENSION", "2")

	provider := embedding.ProviderFunc(func(context.Context, string) ([]float64, error) {
		return []float64{1, 0}, nil
	})
	a, err := New(Options{Version: "test", LogOut: io.Discard, Provider: provider})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = a.Close() }()

	result, err := a.Service.CreateBlock(context.Background(), models.Block{
		Type:    models.TypeText,
		Content: "hello",
		Width:   200,
		Height:  100,
	})
	if err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if !result.Block.HasEmbedding() {
		t.Error("block should have an embedding")
	}

	if _, err := a.Metrics.Registry().Gather(); err != nil {
		t.Errorf("Gather() error = %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Setenv("CANVAS_STORE", "postgres")

	if _, err := New(Options{LogOut: io.Discard}); err == nil {
		t.Fatal("New() should fail for an unknown store")
	}
}

func TestNewProvider_WithoutKey(t *testing.T) {
	cfg := &config.Config{}
	provider, err := newProvider(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}

	_, err = provider.Embed(context.Background(), "text")
	if !errors.Is(err, embedding.ErrAuthFailure) {
		t.Errorf("Embed() error = %v, want ErrAuthFailure", err)
	}
}

func TestNewProvider_WithKey(t *testing.T) {
	cfg := &config.Config{OpenAIKey: "sk-test", EmbeddingModel: "text-embedding-3-small"}
	provider, err := newProvider(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}
	if provider == nil {
		t.Fatal("newProvider() returned nil provider")
	}
}
