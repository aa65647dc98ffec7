// ABOUTME: Command-line benchmark for the canvas similarity scan
// ABOUTME: Times ScanAll and AnalyzeCanvas over synthetic clustered embeddings

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/harper/semantic-canvas/internal/config"
	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/models"
)

// Result is one timed run
type Result struct {
	Name          string  `json:"name"`
	Blocks        int     `json:"blocks"`
	Dimension     int     `json:"dimension"`
	Runs          int     `json:"runs"`
	MeanMillis    float64 `json:"mean_ms"`
	MinMillis     float64 `json:"min_ms"`
	MaxMillis     float64 `json:"max_ms"`
	Relationships int     `json:"relationships"`
	Suggestions   int     `json:"suggestions"`
}

func main() {
	blocks := flag.Int("blocks", 500, "Number of synthetic blocks")
	dim := flag.Int("dim", 1536, "Embedding dimension")
	clusters := flag.Int("clusters", 20, "Number of topic clusters")
	noise := flag.Float64("noise", 0.6, "Per-block noise added to the cluster centre")
	runs := flag.Int("runs", 5, "Timed runs per operation")
	seed := flag.Uint64("seed", 1, "Random seed")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	flag.Parse()

	_ = godotenv.Load()

	if *blocks < 2 || *dim < 1 || *clusters < 1 || *runs < 1 {
		log.Fatal("blocks must be at least 2; dim, clusters and runs must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	policy := cfg.Policy

	fmt.Println("========================================")
	fmt.Println("Semantic Canvas Benchmarks")
	fmt.Println("========================================")
	fmt.Printf("blocks=%d dim=%d clusters=%d noise=%.2f runs=%d\n\n", *blocks, *dim, *clusters, *noise, *runs)

	canvas := syntheticCanvas(rand.New(rand.NewPCG(*seed, *seed)), *blocks, *dim, *clusters, *noise)

	offline := embedding.ProviderFunc(func(context.Context, string) ([]float64, error) {
		return nil, errors.New("benchmark runs without an embedding provider")
	})
	engine := core.NewEngine(
		embedding.NewAdapter(offline, nil, embedding.WithLogger(logging.Discard())),
		policy,
		core.WithEngineLogger(logging.Discard()),
	)

	var results []Result

	scan := timeRuns("ScanAll", *runs, func() (int, int, error) {
		rels, err := core.ScanAll(canvas, policy.ScanThreshold)
		return len(rels), 0, err
	})
	results = append(results, scan)

	analyze := timeRuns("AnalyzeCanvas", *runs, func() (int, int, error) {
		analysis, err := engine.AnalyzeCanvas(canvas, nil)
		if err != nil {
			return 0, 0, err
		}
		return analysis.Relationships, len(analysis.Suggestions), nil
	})
	results = append(results, analyze)

	for i := range results {
		results[i].Blocks = *blocks
		results[i].Dimension = *dim
		r := results[i]
		fmt.Printf("%s\n", r.Name)
		fmt.Printf("  Mean: %.2fms (min %.2fms, max %.2fms)\n", r.MeanMillis, r.MinMillis, r.MaxMillis)
		fmt.Printf("  Relationships: %d\n", r.Relationships)
		if r.Name == "AnalyzeCanvas" {
			fmt.Printf("  Suggestions: %d\n", r.Suggestions)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0644); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("\nResults written to %s\n", *outputPath)
}

func timeRuns(name string, runs int, fn func() (int, int, error)) Result {
	res := Result{Name: name, Runs: runs, MinMillis: math.MaxFloat64}
	var total float64
	for i := 0; i < runs; i++ {
		start := time.Now()
		rels, suggestions, err := fn()
		if err != nil {
			log.Fatalf("%s failed: %v", name, err)
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		total += ms
		res.MinMillis = math.Min(res.MinMillis, ms)
		res.MaxMillis = math.Max(res.MaxMillis, ms)
		res.Relationships, res.Suggestions = rels, suggestions
	}
	res.MeanMillis = total / float64(runs)
	return res
}

// syntheticCanvas scatters n unit vectors around k random centres, placing
// blocks at random positions so that related blocks are often far apart.
func syntheticCanvas(r *rand.Rand, n, dim, k int, noise float64) []models.Block {
	centres := make([][]float64, k)
	for i := range centres {
		centres[i] = randomUnit(r, dim, nil, 0)
	}

	now := time.Now()
	blocks := make([]models.Block, n)
	for i := range blocks {
		blocks[i] = models.Block{
			ID:        fmt.Sprintf("bench-%05d", i),
			Type:      models.TypeText,
			Content:   fmt.Sprintf("synthetic block %d", i),
			Tags:      []string{},
			X:         r.Float64() * 5000,
			Y:         r.Float64() * 5000,
			Width:     200,
			Height:    100,
			Embedding: randomUnit(r, dim, centres[r.IntN(k)], noise),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return blocks
}

func randomUnit(r *rand.Rand, dim int, centre []float64, noise float64) []float64 {
	v := make([]float64, dim)
	var norm float64
	for i := range v {
		x := r.NormFloat64() / math.Sqrt(float64(dim))
		if centre != nil {
			x = centre[i] + noise*x
		}
		v[i] = x
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}
