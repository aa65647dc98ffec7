// ABOUTME: CLI command to connect two canvas blocks
// ABOUTME: Creates a directed connection after checking both blocks exist
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/models"
)

// NewConnectCmd creates connect command
func NewConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <from-block> <to-block>",
		Short: "Connect two blocks",
		Long: `Create a connection from one block to another.

Connected pairs are no longer offered as connect or relocate suggestions.

Examples:
  canvas connect 3f2a... 9c1b...`,
		Args: cobra.ExactArgs(2),
		RunE: runConnect,
	}

	return cmd
}

func runConnect(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	conn, err := a.Service.CreateConnection(models.Connection{FromBlock: args[0], ToBlock: args[1]})
	if err != nil {
		return fmt.Errorf("connecting blocks: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, map[string]any{"connection": conn})
	}
	if !quiet {
		_, _ = fmt.Fprintf(out, "✓ Connected %s -> %s (connection: %s)\n", conn.FromBlock, conn.ToBlock, conn.ID)
	}
	return nil
}
