package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing metro map layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [careers.yaml]",
		Short: "Compute a metro map layout from a career map",
		Long: `Compute a metro map layout from a career map.

The input is a career map in JSON, TOML or YAML (chosen by file extension).
The output is a layout.json file (same format as 'render -f json') holding
station positions and line paths, which 'visualize' renders to SVG, DOT or PNG.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			flags.apply(cmd, &opts)
			opts.MapFile = args[0]
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <input>.layout.json)`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	flags.register(cmd.Flags())

	return cmd
}

// runLayout loads the map, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	opts.Logger = c.Logger
	m, err := pipeline.Parse(opts)
	if err != nil {
		return fmt.Errorf("load map %s: %w", opts.MapFile, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := startSpinner(ctx, os.Stderr, "Computing layout")

	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, m, opts)
	if err != nil {
		sp.fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	sp.stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(opts.MapFile, filepath.Ext(opts.MapFile))
		outputPath = base + ".layout.json"
	}

	if outputPath == "-" {
		data, err := graph.MarshalLayout(l)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		return writeOutput(outputPath, append(data, '\n'))
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l, cacheHit)
	printLines(l)
	printConflicts(l)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
