// ABOUTME: Tunable thresholds and caps for the suggestion pipeline
// ABOUTME: Defaults were tuned by trial and stay configurable per deployment
package core

import "fmt"

// Policy holds every threshold, limit and gate used by the generator
type Policy struct {
	DirectThreshold float64 // find-similar and auto-suggest
	SearchThreshold float64 // free-text search
	ScanThreshold   float64 // whole-canvas relationship scan

	AutoSuggestLimit int
	FindSimilarLimit int
	SearchLimit      int

	ConnectCandidates     int     // top relationships considered for connect
	RelocateCandidates    int     // top relationships considered for relocate
	RelocateDistance      float64 // minimum spatial distance, exclusive
	RelocateMinSimilarity float64 // minimum similarity, exclusive
	RelocateDiscount      float64 // relocate confidence multiplier
	MaxSuggestions        int

	EnableGroups   bool
	GroupThreshold float64
	GroupMinSize   int
}

// DefaultPolicy returns the stock thresholds
func DefaultPolicy() Policy {
	return Policy{
		DirectThreshold:       0.7,
		SearchThreshold:       0.3,
		ScanThreshold:         0.5,
		AutoSuggestLimit:      3,
		FindSimilarLimit:      5,
		SearchLimit:           10,
		ConnectCandidates:     10,
		RelocateCandidates:    5,
		RelocateDistance:      500,
		RelocateMinSimilarity: 0.6,
		RelocateDiscount:      0.9,
		MaxSuggestions:        5,
		EnableGroups:          false,
		GroupThreshold:        0.8,
		GroupMinSize:          3,
	}
}

// Validate checks that thresholds are in range and limits are positive
func (p Policy) Validate() error {
	thresholds := map[string]float64{
		"direct threshold":        p.DirectThreshold,
		"search threshold":        p.SearchThreshold,
		"scan threshold":          p.ScanThreshold,
		"relocate min similarity": p.RelocateMinSimilarity,
		"relocate discount":       p.RelocateDiscount,
		"group threshold":         p.GroupThreshold,
	}
	for name, v := range thresholds {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be 0-1, got %f", name, v)
		}
	}

	limits := map[string]int{
		"auto-suggest limit":  p.AutoSuggestLimit,
		"find-similar limit":  p.FindSimilarLimit,
		"search limit":        p.SearchLimit,
		"connect candidates":  p.ConnectCandidates,
		"relocate candidates": p.RelocateCandidates,
		"max suggestions":     p.MaxSuggestions,
	}
	for name, v := range limits {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}

	if p.RelocateDistance < 0 {
		return fmt.Errorf("relocate distance must not be negative, got %f", p.RelocateDistance)
	}
	if p.EnableGroups && p.GroupMinSize < 2 {
		return fmt.Errorf("group min size must be at least 2, got %d", p.GroupMinSize)
	}
	return nil
}
