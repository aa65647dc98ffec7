// ABOUTME: Root command for the canvas CLI with global flags
// ABOUTME: Registers subcommands and opens the shared application wiring
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/app"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████  █████  ███    ██ ██    ██  █████  ███████
██      ██   ██ ████   ██ ██    ██ ██   ██ ██
██      ███████ ██ ██  ██ ██    ██ ███████ ███████
██      ██   ██ ██  ██ ██  ██  ██  ██   ██      ██
 ██████ ██   ██ ██   ████   ████   ██   ██ ███████
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Semantic canvas with embedding-based suggestions",
		Long: banner + `
Semantic Canvas places blocks of text, markdown and code on a 2D canvas,
embeds their content and suggests connections and relocations for blocks
that are related but far apart.

Run 'canvas serve' for the HTTP API or 'canvas mcp' for agents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "json", "table":
				return nil
			default:
				return fmt.Errorf("--format must be auto, json or table, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json, table)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewAddCmd(),
		NewListCmd(),
		NewConnectCmd(),
		NewSearchCmd(),
		NewSimilarCmd(),
		NewSuggestCmd(),
		NewAnalyzeCmd(),
		NewRegenerateCmd(),
		NewExportCmd(),
		NewServeCmd(),
		NewMCPCmd(),
		NewSyncCmd(),
		NewInstallSkillCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// ExecuteContext runs the root command; subcommands see ctx as cmd.Context()
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// openApp builds the service graph with a log level derived from the global flags
func openApp() (*app.App, error) {
	level := ""
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	return app.New(app.Options{Version: versionInfo.Version, LogLevel: level})
}

func jsonOutput() bool {
	return outputFormat == "json"
}
