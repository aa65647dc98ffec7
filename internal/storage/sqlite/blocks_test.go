// ABOUTME: Tests for canvas block storage operations
// ABOUTME: Verifies CRUD, tag encoding and embedding blob round trips
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/semantic-canvas/internal/models"
)

func newTestBlock(id string) *models.Block {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Block{
		ID:        id,
		Type:      models.TypeCode,
		Content:   "func main() {}",
		Language:  "go",
		Tags:      []string{"go", "entrypoint"},
		X:         100,
		Y:         250,
		Width:     300,
		Height:    120,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBlockCRUD(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)

	// Test create block
	block := newTestBlock("b-1")
	if err := store.Save(block); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Test get block
	retrieved, err := store.Get(block.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if retrieved == nil {
		t.Fatal("Get() returned nil")
	}
	if retrieved.Type != models.TypeCode {
		t.Errorf("Type = %v, want code", retrieved.Type)
	}
	if retrieved.Language != "go" {
		t.Errorf("Language = %v, want go", retrieved.Language)
	}
	if len(retrieved.Tags) != 2 {
		t.Errorf("Tags length = %v, want 2", len(retrieved.Tags))
	}
	if retrieved.X != 100 || retrieved.Y != 250 {
		t.Errorf("Position = (%v, %v), want (100, 250)", retrieved.X, retrieved.Y)
	}
	if retrieved.HasEmbedding() {
		t.Error("new block should not have an embedding")
	}

	// Test update block
	retrieved.Content = "func main() { run() }"
	retrieved.UpdatedAt = time.Now()
	if err := store.Save(retrieved); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	updated, err := store.Get(block.ID)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if updated.Content != "func main() { run() }" {
		t.Errorf("Content = %v, want updated content", updated.Content)
	}

	// Test delete block
	deleted, err := store.Delete(block.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("Delete() should report true for an existing block")
	}

	gone, err := store.Get(block.ID)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if gone != nil {
		t.Error("Block should be nil after delete")
	}

	deleted, err = store.Delete(block.ID)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if deleted {
		t.Error("second Delete() should report false")
	}
}

func TestBlockEmbeddingRoundTrip(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	block := newTestBlock("b-emb")
	block.Embedding = []float64{0.25, -0.5, 1e-9, 3.14159}
	if err := store.Save(block); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get("b-emb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Embedding) != len(block.Embedding) {
		t.Fatalf("Embedding length = %d, want %d", len(got.Embedding), len(block.Embedding))
	}
	for i := range block.Embedding {
		if got.Embedding[i] != block.Embedding[i] {
			t.Errorf("Embedding[%d] = %v, want %v", i, got.Embedding[i], block.Embedding[i])
		}
	}

	// SetEmbedding replaces the vector
	if err := store.SetEmbedding("b-emb", []float64{1, 2}); err != nil {
		t.Fatalf("SetEmbedding() error = %v", err)
	}
	got, _ = store.Get("b-emb")
	if len(got.Embedding) != 2 {
		t.Errorf("Embedding length after SetEmbedding = %d, want 2", len(got.Embedding))
	}

	// nil clears it
	if err := store.SetEmbedding("b-emb", nil); err != nil {
		t.Fatalf("SetEmbedding(nil) error = %v", err)
	}
	got, _ = store.Get("b-emb")
	if got.HasEmbedding() {
		t.Error("expected embedding to be cleared")
	}
}

func TestBlockNilTagsStoredAsEmpty(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	block := newTestBlock("b-notags")
	block.Tags = nil
	block.Language = ""
	if err := store.Save(block); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := store.Get("b-notags")
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty slice", got.Tags)
	}
	if got.Language != "" {
		t.Errorf("Language = %q, want empty", got.Language)
	}
}

func TestBlockListAllOrder(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		b := newTestBlock(id)
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Save(b); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	blocks, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("ListAll() returned %d blocks, want 3", len(blocks))
	}
	if blocks[0].ID != "third" || blocks[2].ID != "first" {
		t.Errorf("order = [%s %s %s], want newest first", blocks[0].ID, blocks[1].ID, blocks[2].ID)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestVectorBlobConversion(t *testing.T) {
	tests := []struct {
		name   string
		vector []float64
	}{
		{"empty", []float64{}},
		{"single", []float64{42}},
		{"mixed", []float64{-1.5, 0, 2.25, 1e300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := vectorToBlob(tt.vector)
			if len(blob) != len(tt.vector)*8 {
				t.Fatalf("blob length = %d, want %d", len(blob), len(tt.vector)*8)
			}
			got := blobToVector(blob)
			if len(got) != len(tt.vector) {
				t.Fatalf("vector length = %d, want %d", len(got), len(tt.vector))
			}
			for i := range tt.vector {
				if got[i] != tt.vector[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.vector[i])
				}
			}
		})
	}
}
