package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the metromap HTTP API",
		Long: `Run the metromap HTTP API.

The server computes layouts and renders career maps posted to /api/v1, and
stores maps in the configured backend (memory, file, mongo or neo4j).
Cache and store backends come from the config file and METROMAP_* variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// runServe opens the configured backends and serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer runner.Close()

	store, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("close store", "error", err)
		}
	}()

	c.Logger.Info("backends ready",
		"cache", c.Config.Cache.Backend,
		"store", c.Config.Store.Backend)

	handler := server.NewRouter(server.Dependencies{
		Runner:       runner,
		Store:        store,
		Defaults:     c.Config.PipelineOptions(),
		Logger:       c.Logger,
		MaxBodyBytes: c.Config.Server.MaxBodyBytes,
	})
	return server.New(c.Config.Server, handler, c.Logger).Run(ctx)
}
