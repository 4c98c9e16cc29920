package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro/sink"
)

type renderFunc func(ctx context.Context, l graph.Layout, opts Options) ([]byte, error)

var renderers = map[string]renderFunc{
	FormatSVG: func(_ context.Context, l graph.Layout, opts Options) ([]byte, error) {
		return sink.RenderSVG(l, svgOptions(opts)...), nil
	},
	FormatJSON: func(_ context.Context, l graph.Layout, _ Options) ([]byte, error) {
		return sink.RenderJSON(l)
	},
	FormatDOT: func(_ context.Context, l graph.Layout, _ Options) ([]byte, error) {
		return []byte(sink.ToDOT(l)), nil
	},
	FormatPNG: func(ctx context.Context, l graph.Layout, opts Options) ([]byte, error) {
		return sink.RenderPNG(ctx, l, opts.Scale)
	},
}

// Render draws l in every format of opts. Formats render concurrently and
// the first failure cancels the rest.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	out := make([][]byte, len(opts.Formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range opts.Formats {
		render, ok := renderers[format]
		if !ok {
			return nil, errs.New(errs.ErrCodeUnsupported, "no renderer for %s", format)
		}
		g.Go(func() error {
			data, err := render(ctx, l, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(out))
	for i, format := range opts.Formats {
		artifacts[format] = out[i]
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	o := []sink.SVGOption{sink.WithLabels(!opts.HideLabels)}
	if opts.Highlight != "" {
		o = append(o, sink.WithHighlight(opts.Highlight))
	}
	if opts.Legend {
		o = append(o, sink.WithLegend())
	}
	return o
}
