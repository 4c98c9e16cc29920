package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/metromap/pkg/pipeline"
)

// layoutFlags holds layout and line flags. Only flags the user sets
// override the configured values.
type layoutFlags struct {
	opts pipeline.Options
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	d := pipeline.DefaultOptions()
	f.opts = d

	fs.Float64Var(&f.opts.Layout.Padding, "padding", d.Layout.Padding, "canvas padding")
	fs.Float64Var(&f.opts.Layout.LevelSpacing, "level-spacing", d.Layout.LevelSpacing, "horizontal distance between seniority levels")
	fs.Float64Var(&f.opts.Layout.PathSpacing, "path-spacing", d.Layout.PathSpacing, "vertical distance between lines")
	fs.Float64Var(&f.opts.Layout.NodeRadius, "node-radius", d.Layout.NodeRadius, "station radius")
	fs.Float64Var(&f.opts.Layout.InterchangeRadius, "interchange-radius", d.Layout.InterchangeRadius, "interchange radius and collision threshold")
	fs.BoolVar(&f.opts.Layout.AdjustInterchanges, "adjust-interchanges", d.Layout.AdjustInterchanges, "center interchanges between their lines")
	fs.BoolVar(&f.opts.Layout.AlignLevels, "align-levels", d.Layout.AlignLevels, "align stations of the same level")
	fs.Float64Var(&f.opts.Layout.JitterAmount, "jitter", d.Layout.JitterAmount, "random horizontal offset when aligning levels")
	fs.Uint64Var(&f.opts.Layout.Seed, "seed", d.Layout.Seed, "jitter seed")
	fs.IntVar(&f.opts.Layout.ResolvePasses, "resolve-passes", d.Layout.ResolvePasses, "collision resolution passes")

	fs.BoolVar(&f.opts.Lines.Orthogonal, "orthogonal", d.Lines.Orthogonal, "draw lines with horizontal and vertical segments")
	fs.BoolVar(&f.opts.Lines.RoundedCorners, "rounded", d.Lines.RoundedCorners, "round orthogonal corners")
	fs.Float64Var(&f.opts.Lines.CornerRadius, "corner-radius", d.Lines.CornerRadius, "corner radius")
}

// apply copies every changed flag onto opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	v := f.opts
	set("padding", func() { opts.Layout.Padding = v.Layout.Padding })
	set("level-spacing", func() { opts.Layout.LevelSpacing = v.Layout.LevelSpacing })
	set("path-spacing", func() { opts.Layout.PathSpacing = v.Layout.PathSpacing })
	set("node-radius", func() { opts.Layout.NodeRadius = v.Layout.NodeRadius })
	set("interchange-radius", func() { opts.Layout.InterchangeRadius = v.Layout.InterchangeRadius })
	set("adjust-interchanges", func() { opts.Layout.AdjustInterchanges = v.Layout.AdjustInterchanges })
	set("align-levels", func() { opts.Layout.AlignLevels = v.Layout.AlignLevels })
	set("jitter", func() { opts.Layout.JitterAmount = v.Layout.JitterAmount })
	set("seed", func() { opts.Layout.Seed = v.Layout.Seed })
	set("resolve-passes", func() { opts.Layout.ResolvePasses = v.Layout.ResolvePasses })
	set("orthogonal", func() { opts.Lines.Orthogonal = v.Lines.Orthogonal })
	set("rounded", func() { opts.Lines.RoundedCorners = v.Lines.RoundedCorners })
	set("corner-radius", func() { opts.Lines.CornerRadius = v.Lines.CornerRadius })
}

// renderFlags holds render flags.
type renderFlags struct {
	formats    string
	highlight  string
	legend     bool
	hideLabels bool
	scale      float64
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	fs.StringVar(&f.highlight, "highlight", "", `station id marked "you are here"`)
	fs.BoolVar(&f.legend, "legend", false, "draw a line legend")
	fs.BoolVar(&f.hideLabels, "no-labels", false, "hide station labels")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fs := cmd.Flags()
	opts.Formats = parseFormats(f.formats, opts.Formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	opts.Highlight = f.highlight
	if fs.Changed("legend") {
		opts.Legend = f.legend
	}
	if fs.Changed("no-labels") {
		opts.HideLabels = f.hideLabels
	}
	if fs.Changed("scale") {
		opts.Scale = f.scale
	}
	return nil
}
