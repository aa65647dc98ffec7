// ABOUTME: CLI commands for connection suggestions and whole-canvas analysis
// ABOUTME: suggest covers one block; analyze scans every pair on the canvas
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/canvas"
)

// NewSuggestCmd creates suggest command
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <block-id>",
		Short: "Suggest connections for a block",
		Long: `Suggest connections between a block and semantically similar blocks.

Examples:
  canvas suggest 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			suggestions, err := a.Service.AutoSuggest(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("suggesting connections: %w", err)
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"suggestions": suggestions})
			}
			printSuggestions(cmd.OutOrStdout(), suggestions)
			return nil
		},
	}

	return cmd
}

// NewAnalyzeCmd creates analyze command
func NewAnalyzeCmd() *cobra.Command {
	var relationships bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the whole canvas",
		Long: `Scan every pair of blocks and suggest missing connections and
relocations for related blocks that sit far apart.

Examples:
  canvas analyze
  canvas analyze --relationships
  canvas analyze --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if relationships {
				return runRelationships(cmd, a.Service)
			}

			analysis, err := a.Service.AnalyzeCanvas(cmd.Context())
			if err != nil {
				return fmt.Errorf("analyzing canvas: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return printJSON(out, analysis)
			}
			for _, thought := range analysis.Thoughts {
				_, _ = fmt.Fprintln(out, thought)
			}
			if len(analysis.Suggestions) > 0 {
				_, _ = fmt.Fprintln(out)
				printSuggestions(out, analysis.Suggestions)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&relationships, "relationships", false, "List related block pairs instead of suggestions")

	return cmd
}

func runRelationships(cmd *cobra.Command, svc *canvas.Service) error {
	rels, err := svc.Relationships(cmd.Context())
	if err != nil {
		return fmt.Errorf("scanning relationships: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, map[string]any{"relationships": rels})
	}
	if len(rels) == 0 {
		if !quiet {
			_, _ = fmt.Fprintln(out, "No related blocks found")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "SCORE\tBLOCK\tRELATED\n")
	_, _ = fmt.Fprintf(w, "-----\t-----\t-------\n")
	for _, r := range rels {
		_, _ = fmt.Fprintf(w, "%.3f\t%s\t%s\n", r.Similarity, r.Block1ID, r.Block2ID)
	}
	_ = w.Flush()

	if !quiet {
		_, _ = fmt.Fprintf(out, "\nTotal: %d relationship(s)\n", len(rels))
	}
	return nil
}
