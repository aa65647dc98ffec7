// ABOUTME: Sync commands for Charm cloud synchronization
// ABOUTME: Provides status, immediate sync and local wipe for the charm backend
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/charm"
	"github.com/harper/semantic-canvas/internal/config"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

With CANVAS_STORE=charm the canvas lives in a Charm KV database that
syncs across devices linked to the same Charm account.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncWipeCmd())

	return cmd
}

// openCharm opens the charm KV named by the current configuration
func openCharm() (*charm.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	client, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Charm: %w", err)
	}
	return client, cfg, nil
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync configuration and local key counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := openCharm()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			blocks, err := client.ListKeys(charm.BlockPrefix)
			if err != nil {
				return fmt.Errorf("failed to list blocks: %w", err)
			}
			conns, err := client.ListKeys(charm.ConnectionPrefix)
			if err != nil {
				return fmt.Errorf("failed to list connections: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Backend:     %s\n", cfg.Store)
			_, _ = fmt.Fprintf(out, "Host:        %s\n", cfg.CharmHost)
			_, _ = fmt.Fprintf(out, "Database:    %s\n", cfg.CharmDBName)
			_, _ = fmt.Fprintf(out, "Auto-sync:   %t\n", cfg.AutoSync)
			_, _ = fmt.Fprintf(out, "Blocks:      %d\n", len(blocks))
			_, _ = fmt.Fprintf(out, "Connections: %d\n", len(conns))
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			return nil
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe all local data (nuclear option)",
		Long: `Completely wipe all local Charm data.

WARNING: This deletes all locally cached data. Your cloud data
remains intact and will be re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !confirm {
				_, _ = fmt.Fprintln(out, "This will wipe ALL local data!")
				_, _ = fmt.Fprintln(out, "Run with --confirm to proceed")
				return nil
			}

			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Reset(); err != nil {
				return fmt.Errorf("failed to wipe data: %w", err)
			}

			_, _ = fmt.Fprintln(out, "Local data wiped successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}
