// ABOUTME: Cosine similarity and threshold ranking over in-memory vectors
// ABOUTME: Stable descending order, limit applied after filtering, 3-decimal reporting
package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidVector signals a contract violation such as mismatched dimensions.
// Vectors are never truncated or padded to make them comparable.
var ErrInvalidVector = errors.New("invalid vector")

// Candidate is a vector with the identity it belongs to
type Candidate struct {
	ID     string
	Vector []float64
}

// Match is a ranked candidate
type Match struct {
	ID         string
	Similarity float64
	index      int
}

// Index returns the candidate's position in the ranked input
func (m Match) Index() int {
	return m.index
}

// Similarity returns 1 - cosineDistance(a, b). The result is not clamped; a
// negative value means the vectors point in opposing directions.
func Similarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrInvalidVector)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d != %d", ErrInvalidVector, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// RankOptions controls filtering and truncation in Rank
type RankOptions struct {
	// ExcludeID removes exactly that candidate from consideration
	ExcludeID string
	// Limit caps the filtered result; zero or less means no cap
	Limit int
	// Threshold is the inclusive minimum similarity
	Threshold float64
}

// Rank scores every candidate against query and returns those with
// similarity >= Threshold, highest first. Ties keep candidate order.
// Reported similarities are rounded to 3 decimals after filtering and sorting.
func Rank(query []float64, candidates []Candidate, opts RankOptions) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if opts.ExcludeID != "" && c.ID == opts.ExcludeID {
			continue
		}
		sim, err := Similarity(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
		}
		if sim >= opts.Threshold {
			matches = append(matches, Match{ID: c.ID, Similarity: sim, index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	for i := range matches {
		matches[i].Similarity = Round3(matches[i].Similarity)
	}
	return matches, nil
}

// Round3 rounds to 3 decimal places for display stability
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Percent returns v as a rounded whole percentage
func Percent(v float64) int {
	return int(math.Round(v * 100))
}
