// Package cli implements the metromap command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/buildinfo"
	"github.com/matzehuels/metromap/pkg/cache"
	"github.com/matzehuels/metromap/pkg/config"
	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/observability"
	"github.com/matzehuels/metromap/pkg/pipeline"
	"github.com/matzehuels/metromap/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "metromap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs, from --config or
	// $METROMAP_CONFIG, and falls back to defaults.
	Config     config.Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "metromap lays out career paths as a subway map",
		Long: `metromap turns career-progression data into a metro map: roles are
stations, career paths are colored lines, and roles shared between paths
become interchanges.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $METROMAP_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging, including pipeline and store events")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// Execute runs the command line args and returns the process exit status.
// Errors are written to stderr; the status follows their error class, and
// an interrupted run exits 130.
func (c *CLI) Execute(ctx context.Context, args []string, stderr io.Writer) int {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(stderr)
	root.SilenceErrors = true

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintf(stderr, "%s %v\n", styleIconError.Render(iconError), err)
	return errs.ExitCode(err)
}

// loadConfig reads the config file. The log level from the file applies
// unless --verbose already lowered it to debug. At debug level every
// pipeline, cache and store event is logged too.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.Logger.GetLevel() != log.DebugLevel {
		if level, err := cfg.Log.ParseLevel(); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	c.Logger.SetFormatter(cfg.Log.Formatter())
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.Install(observability.LogHooks(c.Logger))
	}
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return c.Config.Cache.OpenCache(ctx)
}

func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	return c.Config.Store.OpenStore(ctx)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the XDG
// default (~/.cache/metromap/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// An empty string keeps the configured formats.
func parseFormats(s string, fallback []string) []string {
	if s == "" {
		if len(fallback) == 0 {
			return []string{pipeline.FormatSVG}
		}
		return fallback
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
