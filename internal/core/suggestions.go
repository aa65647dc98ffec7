// ABOUTME: Suggestion generator merging content similarity with canvas layout
// ABOUTME: Per-block auto-suggest and whole-canvas connect/relocate/group analysis
package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/harper/semantic-canvas/internal/models"
)

// Generator turns similarity results into ranked suggestions. It holds no
// mutable state and is safe for concurrent use.
type Generator struct {
	policy Policy
}

// NewGenerator creates a generator using policy
func NewGenerator(policy Policy) *Generator {
	return &Generator{policy: policy}
}

// Policy returns the generator's policy
func (g *Generator) Policy() Policy {
	return g.policy
}

// AutoSuggest proposes connections from sourceID to its nearest neighbours
// among blocks, using the direct-lookup threshold and auto-suggest limit.
func (g *Generator) AutoSuggest(sourceID string, vector []float64, blocks []models.Block) ([]models.Suggestion, error) {
	if len(vector) == 0 {
		return []models.Suggestion{}, nil
	}

	embedded, candidates := candidatesFrom(blocks)
	matches, err := Rank(vector, candidates, RankOptions{
		ExcludeID: sourceID,
		Limit:     g.policy.AutoSuggestLimit,
		Threshold: g.policy.DirectThreshold,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.Suggestion, 0, len(matches))
	for _, m := range matches {
		target := embedded[m.Index()]
		suggestions = append(suggestions, models.NewConnect(
			newSuggestionID("auto"),
			sourceID,
			target.ID,
			autoSuggestReasoning(target, m.Similarity),
			m.Similarity,
		))
	}
	return suggestions, nil
}

// AnalyzeCanvas scans all block pairs and proposes missing connections and
// relocations for distant but related blocks, returning the top suggestions.
func (g *Generator) AnalyzeCanvas(blocks []models.Block, connections []models.Connection) (*models.Analysis, error) {
	relationships, err := ScanAll(blocks, g.policy.ScanThreshold)
	if err != nil {
		return nil, err
	}
	return g.FromRelationships(blocks, connections, relationships), nil
}

// FromRelationships builds the analysis from an existing scan result
func (g *Generator) FromRelationships(blocks []models.Block, connections []models.Connection, relationships []models.Relationship) *models.Analysis {
	existing := make(map[string]struct{}, len(connections))
	for i := range connections {
		existing[connections[i].Key()] = struct{}{}
	}

	suggestions := make([]models.Suggestion, 0)
	suggestions = append(suggestions, g.connectSuggestions(relationships, existing)...)
	suggestions = append(suggestions, g.relocateSuggestions(blocks, relationships)...)
	if g.policy.EnableGroups {
		suggestions = append(suggestions, g.GroupSuggestions(relationships)...)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	generated := len(suggestions)
	if len(suggestions) > g.policy.MaxSuggestions {
		suggestions = suggestions[:g.policy.MaxSuggestions]
	}

	return &models.Analysis{
		Suggestions:   suggestions,
		Relationships: len(relationships),
		Thoughts: []string{fmt.Sprintf(
			"Analyzed %d blocks and found %d semantic relationships. %d improvement suggestions generated based on content similarity and spatial organization.",
			len(blocks), len(relationships), generated,
		)},
	}
}

func (g *Generator) connectSuggestions(relationships []models.Relationship, existing map[string]struct{}) []models.Suggestion {
	var out []models.Suggestion
	for _, rel := range head(relationships, g.policy.ConnectCandidates) {
		if _, ok := existing[models.PairKey(rel.Block1ID, rel.Block2ID)]; ok {
			continue
		}
		out = append(out, models.NewConnect(
			newSuggestionID("ai"),
			rel.Block1ID,
			rel.Block2ID,
			fmt.Sprintf("These blocks have %d%% semantic similarity but are not connected. Consider linking them.", Percent(rel.Similarity)),
			rel.Similarity,
		))
	}
	return out
}

func (g *Generator) relocateSuggestions(blocks []models.Block, relationships []models.Relationship) []models.Suggestion {
	byID := make(map[string]*models.Block, len(blocks))
	for i := range blocks {
		if _, ok := byID[blocks[i].ID]; !ok {
			byID[blocks[i].ID] = &blocks[i]
		}
	}

	var out []models.Suggestion
	for _, rel := range head(relationships, g.policy.RelocateCandidates) {
		b1, ok1 := byID[rel.Block1ID]
		b2, ok2 := byID[rel.Block2ID]
		if !ok1 || !ok2 {
			continue
		}
		if b1.Distance(b2) > g.policy.RelocateDistance && rel.Similarity > g.policy.RelocateMinSimilarity {
			out = append(out, models.NewRelocate(
				newSuggestionID("ai"),
				b1.ID,
				b2.ID,
				"This block is semantically similar to another block but positioned far away. Moving them closer would improve canvas organization.",
				rel.Similarity*g.policy.RelocateDiscount,
			))
		}
	}
	return out
}

// GroupSuggestions clusters blocks linked by relationships at or above the
// group threshold. Clusters smaller than GroupMinSize are dropped. Confidence
// is the mean similarity of the linking relationships.
func (g *Generator) GroupSuggestions(relationships []models.Relationship) []models.Suggestion {
	parent := make(map[string]string)
	var order []string
	var find func(string) string
	find = func(id string) string {
		if _, ok := parent[id]; !ok {
			parent[id] = id
			order = append(order, id)
		}
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}

	var links []models.Relationship
	for _, rel := range relationships {
		if rel.Similarity < g.policy.GroupThreshold {
			continue
		}
		links = append(links, rel)
		ra, rb := find(rel.Block1ID), find(rel.Block2ID)
		if ra != rb {
			parent[rb] = ra
		}
	}

	members := make(map[string][]string)
	var roots []string
	for _, id := range order {
		root := find(id)
		if _, ok := members[root]; !ok {
			roots = append(roots, root)
		}
		members[root] = append(members[root], id)
	}

	sum := make(map[string]float64)
	count := make(map[string]int)
	for _, rel := range links {
		root := find(rel.Block1ID)
		sum[root] += rel.Similarity
		count[root]++
	}

	minSize := g.policy.GroupMinSize
	if minSize < 2 {
		minSize = 2
	}

	var out []models.Suggestion
	for _, root := range roots {
		ids := members[root]
		if len(ids) < minSize || count[root] == 0 {
			continue
		}
		mean := sum[root] / float64(count[root])
		out = append(out, models.NewGroup(
			newSuggestionID("ai"),
			ids,
			fmt.Sprintf("These %d blocks share a common theme with %d%% average semantic similarity. Consider grouping them together.", len(ids), Percent(mean)),
			Round3(mean),
		))
	}
	return out
}

func candidatesFrom(blocks []models.Block) ([]*models.Block, []Candidate) {
	embedded := make([]*models.Block, 0, len(blocks))
	candidates := make([]Candidate, 0, len(blocks))
	for i := range blocks {
		if !blocks[i].HasEmbedding() {
			continue
		}
		embedded = append(embedded, &blocks[i])
		candidates = append(candidates, Candidate{ID: blocks[i].ID, Vector: blocks[i].Embedding})
	}
	return embedded, candidates
}

func autoSuggestReasoning(target *models.Block, similarity float64) string {
	typeText := "note"
	if target.Type == models.TypeCode {
		typeText = "code block"
	}
	langText := ""
	if target.Language != "" {
		langText = " in " + target.Language
	}
	return fmt.Sprintf("This %s%s has %d%% semantic similarity with your content. Consider connecting them.",
		typeText, langText, Percent(similarity))
}

func newSuggestionID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func head(rels []models.Relationship, n int) []models.Relationship {
	if n >= 0 && len(rels) > n {
		return rels[:n]
	}
	return rels
}
