// ABOUTME: Serve command starts the canvas HTTP API
// ABOUTME: Exposes REST routes, health and Prometheus metrics until interrupted
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/semantic-canvas/internal/httpapi"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API used by the canvas frontend.

The listen address defaults to CANVAS_HTTP_ADDR (":8080").

Examples:
  canvas serve
  canvas serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if addr == "" {
				addr = a.Config.HTTPAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.New(a.Service,
				httpapi.WithLogger(a.Logger),
				httpapi.WithMetrics(a.Metrics, a.Metrics.Handler()),
				httpapi.WithRateLimit(a.Config.RateLimit, a.Config.RateBurst),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides CANVAS_HTTP_ADDR)")

	return cmd
}
