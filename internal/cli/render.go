package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/pipeline"
)

// renderCommand creates the render command: layout and render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		lflags  layoutFlags
		rflags  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [careers.yaml]",
		Short: "Render a career map as a metro map",
		Long: `Render a career map as a metro map.

Runs the full pipeline: the map is parsed, laid out and rendered to every
requested format. Layouts and artifacts are cached, so re-rendering an
unchanged map is instant.

Examples:
  metromap render careers.yaml
  metromap render careers.yaml -f svg,png --highlight senior-eng --legend
  metromap render careers.toml --orthogonal=false -o map.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			lflags.apply(cmd, &opts)
			if err := rflags.apply(cmd, &opts); err != nil {
				return err
			}
			opts.MapFile = args[0]
			opts.Refresh = refresh
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	lflags.register(cmd.Flags())
	rflags.register(cmd.Flags())

	return cmd
}

// runRender executes the complete pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	sp := startSpinner(ctx, os.Stderr, "Rendering metro map")

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		sp.fail("Render failed")
		return err
	}
	sp.stop()
	prog.done("rendered map",
		"stations", result.Stats.StationCount,
		"lines", result.Stats.LineCount,
		"formats", opts.Formats)

	printConflicts(result.Layout)
	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.MapFile,
		output:    output,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		layout:    &result.Layout,
	})
}
