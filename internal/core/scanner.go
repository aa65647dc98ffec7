// ABOUTME: Whole-canvas relationship scanner over all embedded block pairs
// ABOUTME: Quadratic in embedded blocks; each unordered pair is emitted once as (i, j), i < j
package core

import (
	"fmt"
	"sort"

	"github.com/harper/semantic-canvas/internal/models"
)

// ScanAll compares every pair of embedded blocks and returns the pairs with
// similarity >= threshold, highest first. Blocks without an embedding are
// skipped. Ties keep scan order, so repeated scans of the same input agree.
func ScanAll(blocks []models.Block, threshold float64) ([]models.Relationship, error) {
	embedded := make([]*models.Block, 0, len(blocks))
	for i := range blocks {
		if blocks[i].HasEmbedding() {
			embedded = append(embedded, &blocks[i])
		}
	}

	var relationships []models.Relationship
	for i := 0; i < len(embedded); i++ {
		for j := i + 1; j < len(embedded); j++ {
			a, b := embedded[i], embedded[j]
			sim, err := Similarity(a.Embedding, b.Embedding)
			if err != nil {
				return nil, fmt.Errorf("blocks %s/%s: %w", a.ID, b.ID, err)
			}
			if sim < threshold {
				continue
			}
			relationships = append(relationships, models.Relationship{
				Block1ID:   a.ID,
				Block2ID:   b.ID,
				Similarity: sim,
				Block1Type: a.Type,
				Block2Type: b.Type,
			})
		}
	}

	sort.SliceStable(relationships, func(i, j int) bool {
		return relationships[i].Similarity > relationships[j].Similarity
	})

	for i := range relationships {
		relationships[i].Similarity = Round3(relationships[i].Similarity)
	}
	return relationships, nil
}
