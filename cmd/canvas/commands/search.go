// ABOUTME: CLI commands for semantic search and similarity lookups
// ABOUTME: search embeds free text; similar reuses a block's stored embedding
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search blocks by meaning",
		Long: `Search canvas blocks semantically.

The query is embedded and compared against every block with an embedding.

Examples:
  canvas search "concurrency patterns"
  canvas search --limit 3 "pasta recipes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(limit, "limit"); err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			results, err := a.Service.SearchText(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"results": results})
			}
			printSimilar(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")

	return cmd
}

// NewSimilarCmd creates similar command
func NewSimilarCmd() *cobra.Command {
	var (
		limit     int
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "similar <block-id>",
		Short: "Find blocks similar to a block",
		Long: `Rank blocks by similarity to an existing block's stored embedding.

Examples:
  canvas similar 3f2a...
  canvas similar --threshold 0.8 --limit 3 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(limit, "limit"); err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			results, err := a.Service.FindSimilar(cmd.Context(), args[0], limit, threshold)
			if err != nil {
				return fmt.Errorf("finding similar blocks: %w", err)
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"similar": results})
			}
			printSimilar(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "Minimum similarity (0-1)")

	return cmd
}
