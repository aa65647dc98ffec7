// ABOUTME: Similarity results produced by the suggestion engine
// ABOUTME: Defines Relationship, SimilarBlock and the canvas Analysis response
package models

// Relationship is an unordered pair of blocks whose embeddings are similar.
// Block1ID precedes Block2ID in the scanned block order.
type Relationship struct {
	Block1ID   string      `json:"block1Id"`
	Block2ID   string      `json:"block2Id"`
	Similarity float64     `json:"similarity"`
	Block1Type ContentType `json:"block1Type"`
	Block2Type ContentType `json:"block2Type"`
}

// SimilarBlock is a ranked candidate returned by similarity lookups
type SimilarBlock struct {
	Block      Block   `json:"block"`
	Similarity float64 `json:"similarity"`
}

// Analysis is the result of a whole-canvas pass
type Analysis struct {
	Suggestions   []Suggestion `json:"suggestions"`
	Thoughts      []string     `json:"thoughts"`
	Relationships int          `json:"relationships"`
}

// Summary returns the narrative line describing the analysis
func (a *Analysis) Summary() string {
	if len(a.Thoughts) == 0 {
		return ""
	}
	return a.Thoughts[0]
}
