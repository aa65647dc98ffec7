// ABOUTME: CLI command to add a block to the canvas
// ABOUTME: Reads content from an argument, file or stdin and prints connection suggestions
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/models"
)

type addOptions struct {
	file     string
	id       string
	kind     string
	language string
	tags     []string
	x, y     float64
	width    float64
	height   float64
}

// NewAddCmd creates add command
func NewAddCmd() *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a block to the canvas",
		Long: `Add a block from text, a file or stdin.

The block's content is embedded and compared against the rest of the
canvas; similar blocks are printed as connection suggestions.

Examples:
  canvas add "Channels are typed conduits"
  canvas add --file main.go --type code --language go
  canvas add --tags=go,concurrency --x 400 --y 120 "Worker pools"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Read block content from file")
	cmd.Flags().StringVar(&opts.id, "id", "", "Block ID (generated when empty)")
	cmd.Flags().StringVar(&opts.kind, "type", string(models.TypeText), "Content type (text, markdown, code, image, drawing)")
	cmd.Flags().StringVar(&opts.language, "language", "", "Programming language for code blocks")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", []string{}, "Tags for the block (comma-separated)")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "Horizontal position")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "Vertical position")
	cmd.Flags().Float64Var(&opts.width, "width", 200, "Block width")
	cmd.Flags().Float64Var(&opts.height, "height", 100, "Block height")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string, opts *addOptions) error {
	content, err := readInput(args, opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	result, err := a.Service.CreateBlock(cmd.Context(), models.Block{
		ID:       opts.id,
		Type:     models.ContentType(opts.kind),
		Content:  content,
		Language: opts.language,
		Tags:     opts.tags,
		X:        opts.x,
		Y:        opts.y,
		Width:    opts.width,
		Height:   opts.height,
	})
	if err != nil {
		return fmt.Errorf("adding block: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, result)
	}

	if !quiet {
		_, _ = fmt.Fprintf(out, "✓ Added block %s\n", result.Block.ID)
	}
	if result.SuggestionsUnavailable {
		_, _ = fmt.Fprintln(out, "Embedding unavailable; run 'canvas regenerate' once the provider is reachable")
		return nil
	}
	if len(result.Suggestions) > 0 {
		_, _ = fmt.Fprintln(out, "Suggestions:")
		printSuggestions(out, result.Suggestions)
	}
	return nil
}
