package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/pipeline"
)

// stdinBase names output files when the layout arrives on stdin.
const stdinBase = "metromap"

func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lines   []string
		flags   renderFlags
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json | -]",
		Short: "Draw a saved layout without recomputing it",
		Long: `Draw a layout produced by 'metromap layout'.

Station positions and line paths are taken from the layout as they are,
so the same layout always draws the same map. Pass "-" to read the layout
from stdin. --lines keeps only the named career paths; stations and
connections off those lines are dropped but the viewport stays the same,
so several filtered maps can be overlaid.`,
		Example: `  metromap visualize careers.layout.json -f svg,png
  metromap visualize careers.layout.json --lines ic,mgmt --highlight staff-eng
  metromap layout careers.yaml -o - | metromap visualize - -o careers.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			l, err := readLayoutArg(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(lines) > 0 {
				if l, err = l.FilterLines(lines); err != nil {
					return err
				}
			}
			input := args[0]
			if input == "-" {
				input = stdinBase
			}
			return c.runVisualize(cmd.Context(), l, input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file for a single format ("-" for stdout), or base path`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the artifact cache")
	cmd.Flags().StringSliceVar(&lines, "lines", nil, "only draw these line IDs")
	flags.register(cmd.Flags())

	return cmd
}

// readLayoutArg reads a layout from a file, or from stdin when arg is "-".
func readLayoutArg(arg string, stdin io.Reader) (graph.Layout, error) {
	if arg != "-" {
		l, err := graph.ReadLayoutFile(arg)
		if err != nil {
			return graph.Layout{}, fmt.Errorf("load layout %s: %w", arg, err)
		}
		return l, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("read layout from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return graph.Layout{}, fmt.Errorf("no layout on stdin")
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("parse layout from stdin: %w", err)
	}
	return l, nil
}

func (c *CLI) runVisualize(ctx context.Context, l graph.Layout, input string, opts pipeline.Options, output string, noCache bool) error {
	if opts.Highlight != "" {
		if _, ok := l.Station(opts.Highlight); !ok {
			printWarning("Station %q is not on the map, nothing will be highlighted", opts.Highlight)
			opts.Highlight = ""
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	sp := startSpinner(ctx, os.Stderr, fmt.Sprintf("Drawing %d lines", len(l.Lines)))
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		sp.fail("Drawing failed")
		return fmt.Errorf("visualize: %w", err)
	}
	sp.stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
		layout:    &l,
	})
}
