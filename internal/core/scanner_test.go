// ABOUTME: Tests for the whole-canvas relationship scanner
// ABOUTME: Checks pair emission, skipped blocks, ordering and rounding

package core

import (
	"errors"
	"testing"

	"github.com/harper/semantic-canvas/internal/models"
)

func block(id string, x, y float64, vec []float64) models.Block {
	return models.Block{ID: id, Type: models.TypeText, Content: id, X: x, Y: y, Width: 200, Height: 100, Embedding: vec}
}

func TestScanAll(t *testing.T) {
	blocks := []models.Block{
		block("a", 0, 0, []float64{1, 0}),
		block("b", 0, 0, unit(0.9)),
		block("unembedded", 0, 0, nil),
		block("c", 0, 0, []float64{0, 1}),
	}

	rels, err := ScanAll(blocks, 0.4)
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("ScanAll() returned %d relationships, want 2: %+v", len(rels), rels)
	}

	if rels[0].Block1ID != "a" || rels[0].Block2ID != "b" || rels[0].Similarity != 0.9 {
		t.Errorf("first relationship = %+v, want a/b at 0.9", rels[0])
	}
	// sin(acos(0.9)) = 0.43589
	if rels[1].Block1ID != "b" || rels[1].Block2ID != "c" || rels[1].Similarity != 0.436 {
		t.Errorf("second relationship = %+v, want b/c at 0.436", rels[1])
	}
	for _, r := range rels {
		if r.Block1ID == "unembedded" || r.Block2ID == "unembedded" {
			t.Errorf("unembedded block should be skipped: %+v", r)
		}
		if r.Block1Type != models.TypeText || r.Block2Type != models.TypeText {
			t.Errorf("relationship types not carried: %+v", r)
		}
	}
}

func TestScanAll_EachPairOnce(t *testing.T) {
	vec := []float64{1, 1}
	blocks := []models.Block{block("a", 0, 0, vec), block("b", 0, 0, vec), block("c", 0, 0, vec), block("d", 0, 0, vec)}

	rels, err := ScanAll(blocks, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 6 {
		t.Fatalf("got %d relationships, want 6", len(rels))
	}
	// identical scores keep scan order
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "c"}, {"b", "d"}, {"c", "d"}}
	for i, w := range want {
		if rels[i].Block1ID != w[0] || rels[i].Block2ID != w[1] {
			t.Errorf("rels[%d] = %s/%s, want %s/%s", i, rels[i].Block1ID, rels[i].Block2ID, w[0], w[1])
		}
	}
}

func TestScanAll_EmptyAndMismatch(t *testing.T) {
	rels, err := ScanAll(nil, 0.5)
	if err != nil || len(rels) != 0 {
		t.Errorf("ScanAll(nil) = %v, %v; want empty", rels, err)
	}

	_, err = ScanAll([]models.Block{block("a", 0, 0, []float64{1}), block("b", 0, 0, []float64{1, 0})}, 0.5)
	if !errors.Is(err, ErrInvalidVector) {
		t.Errorf("ScanAll() error = %v, want ErrInvalidVector", err)
	}
}
