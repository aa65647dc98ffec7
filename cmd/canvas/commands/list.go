// ABOUTME: CLI command to list canvas blocks and connections
// ABOUTME: Renders a table by default or JSON with --format json
package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/models"
)

type listOptions struct {
	connections bool
	tag         string
}

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocks on the canvas",
		Long: `List blocks on the canvas, newest first.

Examples:
  canvas list
  canvas list --tag go
  canvas list --connections
  canvas list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.connections, "connections", false, "List connections instead of blocks")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Only show blocks carrying this tag")

	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if opts.connections {
		conns, err := a.Service.ListConnections()
		if err != nil {
			return fmt.Errorf("listing connections: %w", err)
		}
		return renderConnections(cmd.OutOrStdout(), conns)
	}

	blocks, err := a.Service.ListBlocks()
	if err != nil {
		return fmt.Errorf("listing blocks: %w", err)
	}
	if opts.tag != "" {
		filtered := blocks[:0]
		for _, b := range blocks {
			if containsString(b.Tags, opts.tag) {
				filtered = append(filtered, b)
			}
		}
		blocks = filtered
	}
	return renderBlocks(cmd.OutOrStdout(), blocks)
}

func renderBlocks(out io.Writer, blocks []models.Block) error {
	if jsonOutput() {
		return printJSON(out, map[string]any{"blocks": blocks})
	}
	if len(blocks) == 0 {
		if !quiet {
			_, _ = fmt.Fprintln(out, "No blocks found")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "TYPE\tCONTENT\tPOSITION\tCREATED\tBLOCK ID\n")
	_, _ = fmt.Fprintf(w, "----\t-------\t--------\t-------\t--------\n")
	for _, b := range blocks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t(%.0f, %.0f)\t%s\t%s\n",
			b.Type,
			truncate(oneLine(b.Content), 40),
			b.X, b.Y,
			formatTime(b.CreatedAt),
			b.ID)
	}
	_ = w.Flush()

	if !quiet {
		_, _ = fmt.Fprintf(out, "\nTotal: %d block(s)\n", len(blocks))
	}
	return nil
}

func renderConnections(out io.Writer, conns []models.Connection) error {
	if jsonOutput() {
		return printJSON(out, map[string]any{"connections": conns})
	}
	if len(conns) == 0 {
		if !quiet {
			_, _ = fmt.Fprintln(out, "No connections found")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "FROM\tTO\tCREATED\tCONNECTION ID\n")
	_, _ = fmt.Fprintf(w, "----\t--\t-------\t-------------\n")
	for _, c := range conns {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.FromBlock, c.ToBlock, formatTime(c.CreatedAt), c.ID)
	}
	_ = w.Flush()

	if !quiet {
		_, _ = fmt.Fprintf(out, "\nTotal: %d connection(s)\n", len(conns))
	}
	return nil
}
