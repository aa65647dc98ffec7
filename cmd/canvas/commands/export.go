// ABOUTME: CLI command to export the canvas to files
// ABOUTME: Writes YAML and Markdown, plus an optional JSON dump of embeddings
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/canvas"
)

// NewExportCmd creates export command
func NewExportCmd() *cobra.Command {
	var withEmbeddings bool

	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Export the canvas to YAML and Markdown",
		Long: `Export all blocks and connections.

Writes canvas.yaml and canvas.md into the target directory (default: the
current directory). --embeddings also writes embeddings.json with every
stored vector.

Examples:
  canvas export
  canvas export ./backup --embeddings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			files, err := canvas.ExportAll(a.Store, dir, withEmbeddings)
			if err != nil {
				return fmt.Errorf("exporting canvas: %w", err)
			}
			if !quiet {
				for _, f := range files {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withEmbeddings, "embeddings", false, "Also export embedding vectors as JSON")

	return cmd
}
