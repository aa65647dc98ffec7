// ABOUTME: CLI command to regenerate block embeddings
// ABOUTME: Fills missing vectors, or recomputes all of them with --force
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegenerateCmd creates regenerate command
func NewRegenerateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "regenerate [block-id]",
		Short: "Regenerate block embeddings",
		Long: `Generate embeddings for blocks that are missing one.

With a block ID only that block is regenerated. With --force every block
is re-embedded, which is useful after changing the embedding model.

Examples:
  canvas regenerate
  canvas regenerate --force
  canvas regenerate 3f2a...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				result, err := a.Service.RegenerateEmbedding(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("regenerating embedding: %w", err)
				}
				if jsonOutput() {
					return printJSON(out, result)
				}
				_, _ = fmt.Fprintf(out, "✓ Regenerated embedding for %s\n", result.Block.ID)
				printSuggestions(out, result.Suggestions)
				return nil
			}

			report, err := a.Service.RegenerateAll(cmd.Context(), force)
			if err != nil {
				return fmt.Errorf("regenerating embeddings: %w", err)
			}
			if jsonOutput() {
				return printJSON(out, report)
			}
			_, _ = fmt.Fprintf(out, "Regenerated %d of %d block(s), skipped %d, failed %d\n",
				report.Regenerated, report.Total, report.Skipped, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d block(s) could not be embedded", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-embed blocks that already have an embedding")

	return cmd
}
