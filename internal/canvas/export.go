// ABOUTME: Export functionality for canvas data
// ABOUTME: Supports YAML, Markdown and a JSON vector dump, independent of the backend
package canvas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/semantic-canvas/internal/storage"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version     string             `yaml:"version" json:"version"`
	ExportedAt  string             `yaml:"exported_at" json:"exported_at"`
	Tool        string             `yaml:"tool" json:"tool"`
	Blocks      []ExportBlock      `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Connections []ExportConnection `yaml:"connections,omitempty" json:"connections,omitempty"`
}

// ExportBlock represents a block for export
type ExportBlock struct {
	ID           string   `yaml:"id" json:"id"`
	Type         string   `yaml:"type" json:"type"`
	Content      string   `yaml:"content" json:"content"`
	Language     string   `yaml:"language,omitempty" json:"language,omitempty"`
	Tags         []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	X            float64  `yaml:"x" json:"x"`
	Y            float64  `yaml:"y" json:"y"`
	Width        float64  `yaml:"width" json:"width"`
	Height       float64  `yaml:"height" json:"height"`
	HasEmbedding bool     `yaml:"has_embedding" json:"has_embedding"`
	CreatedAt    string   `yaml:"created_at" json:"created_at"`
}

// ExportConnection represents a connection for export
type ExportConnection struct {
	ID        string `yaml:"id" json:"id"`
	FromBlock string `yaml:"from_block" json:"from_block"`
	ToBlock   string `yaml:"to_block" json:"to_block"`
	CreatedAt string `yaml:"created_at" json:"created_at"`
}

// EmbeddingExport is one stored vector keyed by block id
type EmbeddingExport struct {
	BlockID string    `json:"block_id"`
	Vector  []float64 `json:"vector"`
}

// Export collects blocks and connections from store
func Export(store storage.Store) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "semantic-canvas",
	}

	blocks, err := store.ListBlocks()
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	for _, b := range blocks {
		data.Blocks = append(data.Blocks, ExportBlock{
			ID:           b.ID,
			Type:         string(b.Type),
			Content:      b.Content,
			Language:     b.Language,
			Tags:         b.Tags,
			X:            b.X,
			Y:            b.Y,
			Width:        b.Width,
			Height:       b.Height,
			HasEmbedding: b.HasEmbedding(),
			CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		})
	}

	conns, err := store.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	for _, c := range conns {
		data.Connections = append(data.Connections, ExportConnection{
			ID:        c.ID,
			FromBlock: c.FromBlock,
			ToBlock:   c.ToBlock,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}

	return data, nil
}

// ExportToYAML exports data to a YAML file
func ExportToYAML(store storage.Store, outputPath string) error {
	data, err := Export(store)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportToMarkdown exports data to a Markdown file
func ExportToMarkdown(store storage.Store, outputPath string) error {
	data, err := Export(store)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Canvas Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Blocks) > 0 {
		_, _ = fmt.Fprintln(file, "## Blocks")
		_, _ = fmt.Fprintln(file)
		for _, b := range data.Blocks {
			_, _ = fmt.Fprintf(file, "### %s (%s)\n\n", b.ID, b.Type)
			if len(b.Tags) > 0 {
				_, _ = fmt.Fprintf(file, "*Tags: %s*\n\n", strings.Join(b.Tags, ", "))
			}
			_, _ = fmt.Fprintf(file, "Position: (%.0f, %.0f) Size: %.0fx%.0f\n\n", b.X, b.Y, b.Width, b.Height)
			if b.Type == "code" {
				_, _ = fmt.Fprintf(file, "```%s\n%s\n```\n\n", b.Language, b.Content)
			} else {
				_, _ = fmt.Fprintf(file, "%s\n\n", b.Content)
			}
			_, _ = fmt.Fprintln(file, "---")
			_, _ = fmt.Fprintln(file)
		}
	}

	if len(data.Connections) > 0 {
		_, _ = fmt.Fprintln(file, "## Connections")
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "| ID | From | To |")
		_, _ = fmt.Fprintln(file, "|----|------|----|")
		for _, c := range data.Connections {
			_, _ = fmt.Fprintf(file, "| %s | %s | %s |\n", c.ID, c.FromBlock, c.ToBlock)
		}
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

// ExportEmbeddingsToJSON writes every stored vector to a JSON file
func ExportEmbeddingsToJSON(store storage.Store, outputPath string) error {
	blocks, err := store.ListBlocks()
	if err != nil {
		return fmt.Errorf("failed to list blocks: %w", err)
	}

	embeddings := make([]EmbeddingExport, 0, len(blocks))
	for _, b := range blocks {
		if !b.HasEmbedding() {
			continue
		}
		embeddings = append(embeddings, EmbeddingExport{BlockID: b.ID, Vector: b.Embedding})
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(embeddings); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportAll writes canvas.yaml, canvas.md and optionally embeddings.json to dir
func ExportAll(store storage.Store, dir string, withEmbeddings bool) ([]string, error) {
	files := []string{
		filepath.Join(dir, "canvas.yaml"),
		filepath.Join(dir, "canvas.md"),
	}
	if err := ExportToYAML(store, files[0]); err != nil {
		return nil, err
	}
	if err := ExportToMarkdown(store, files[1]); err != nil {
		return nil, err
	}
	if withEmbeddings {
		path := filepath.Join(dir, "embeddings.json")
		if err := ExportEmbeddingsToJSON(store, path); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}
