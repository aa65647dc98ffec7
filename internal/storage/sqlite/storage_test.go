// ABOUTME: Tests for the unified SQLite Storage facade
// ABOUTME: Exercises the block and connection paths through one handle
package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/semantic-canvas/internal/models"
)

func TestNewStorageInMemory(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	blocks, err := store.ListBlocks()
	if err != nil {
		t.Fatalf("ListBlocks() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
}

func TestNewStorageWithPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "canvas.db")

	store, err := NewStorageWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if store.DB().Path() != dbPath {
		t.Errorf("Path() = %v, want %v", store.DB().Path(), dbPath)
	}
}

func TestStorageBlocksAndConnections(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	for _, id := range []string{"a", "b"} {
		if err := store.SaveBlock(newTestBlock(id)); err != nil {
			t.Fatalf("SaveBlock(%s) error = %v", id, err)
		}
	}
	if err := store.SetEmbedding("a", []float64{1, 0, 0}); err != nil {
		t.Fatalf("SetEmbedding() error = %v", err)
	}

	a, err := store.GetBlock("a")
	if err != nil || a == nil {
		t.Fatalf("GetBlock(a) = %v, %v", a, err)
	}
	if !a.HasEmbedding() {
		t.Error("block a should have an embedding")
	}

	conn := &models.Connection{ID: "c-1", FromBlock: "a", ToBlock: "b", CreatedAt: time.Now()}
	if err := store.CreateConnection(conn); err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}

	exists, err := store.ConnectionExists("a", "b")
	if err != nil || !exists {
		t.Errorf("ConnectionExists() = %v, %v; want true", exists, err)
	}

	byB, err := store.ListConnectionsByBlock("b")
	if err != nil || len(byB) != 1 {
		t.Errorf("ListConnectionsByBlock(b) = %v, %v; want one connection", byB, err)
	}

	got, err := store.GetConnection("c-1")
	if err != nil || got == nil {
		t.Fatalf("GetConnection() = %v, %v", got, err)
	}

	deleted, err := store.DeleteBlock("b")
	if err != nil || !deleted {
		t.Fatalf("DeleteBlock(b) = %v, %v", deleted, err)
	}

	conns, err := store.ListConnections()
	if err != nil {
		t.Fatalf("ListConnections() error = %v", err)
	}
	if len(conns) != 0 {
		t.Errorf("expected cascade delete to remove the connection, got %d", len(conns))
	}

	if deleted, _ := store.DeleteConnection("c-1"); deleted {
		t.Error("DeleteConnection should report false after cascade")
	}
}
