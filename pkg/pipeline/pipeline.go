// Package pipeline turns career maps into drawn metro maps.
//
// It has three stages. [Parse] reads a [graph.CareerMap] from a file or
// reader. [GenerateLayout] converts it to stations and lines, places them,
// pushes colliding stations apart and traces line and connection paths.
// [Render] draws the layout as SVG, JSON, DOT or PNG.
//
// The CLI and the API server both go through a [Runner], which caches
// layouts by map content and options and artifacts by layout and format:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.MapFile = "careers.yaml"
//	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatPNG}
//	res, err := runner.Execute(ctx, opts)
//
// Options are checked before any stage runs. Errors carry the name of the
// offending option as their field, e.g. "layout.level_spacing".
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metromap/pkg/cache"
	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro"
	"github.com/matzehuels/metromap/pkg/metro/pathgen"
)

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxStations bounds the size of a map accepted by the pipeline.
	MaxStations = 5000
)

const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
)

// Formats lists the output formats in their canonical order.
var Formats = []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatPNG:  "image/png",
}

// Options configures every pipeline stage. The API decodes it from
// request bodies; Input and Logger are set by the caller.
type Options struct {
	MapFile string `json:"map_file,omitempty"`
	Format  string `json:"format,omitempty"` // input format when reading from Input

	Layout metro.Config        `json:"layout"`
	Lines  pathgen.LineOptions `json:"lines"`

	Formats    []string `json:"formats,omitempty"`
	Highlight  string   `json:"highlight,omitempty"`
	Legend     bool     `json:"legend,omitempty"`
	HideLabels bool     `json:"hide_labels,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Input  io.Reader   `json:"-"`
	Logger *log.Logger `json:"-"`

	validated bool
}

// DefaultOptions returns options with every layout, line and render default
// applied.
func DefaultOptions() Options {
	return Options{
		Layout:  metro.DefaultConfig(),
		Lines:   pathgen.DefaultLineOptions(),
		Formats: []string{FormatSVG},
		Scale:   DefaultScale,
	}
}

// Result is the output of [Runner.Execute].
type Result struct {
	Map       graph.CareerMap
	MapHash   string // content hash used in layout cache keys
	Layout    graph.Layout
	Artifacts map[string][]byte // by format
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StationCount     int
	LineCount        int
	InterchangeCount int
	CollisionCount   int
	ParseTime        time.Duration
	LayoutTime       time.Duration
	RenderTime       time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

func ValidateFormats(formats []string) error {
	for i, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return errs.Locate(err, "formats[%d]", i)
		}
	}
	return nil
}

// bound is one numeric option with its lower limit.
type bound struct {
	field    string
	value    float64
	positive bool // > 0 rather than >= 0
}

func checkBounds(bs ...bound) error {
	for _, b := range bs {
		switch {
		case b.positive && b.value <= 0:
			return errs.New(errs.ErrCodeInvalidConfig, "must be positive, got %v", b.value).At("%s", b.field)
		case !b.positive && b.value < 0:
			return errs.New(errs.ErrCodeInvalidConfig, "must not be negative, got %v", b.value).At("%s", b.field)
		}
	}
	return nil
}

// ValidateLayoutConfig checks the values the geometry stages rely on.
// The stages themselves never fail, so bad values are rejected here.
func ValidateLayoutConfig(c metro.Config) error {
	return checkBounds(
		bound{"layout.padding", c.Padding, false},
		bound{"layout.level_spacing", c.LevelSpacing, true},
		bound{"layout.path_spacing", c.PathSpacing, true},
		bound{"layout.node_radius", c.NodeRadius, true},
		bound{"layout.interchange_radius", c.InterchangeRadius, true},
		bound{"layout.jitter_amount", c.JitterAmount, false},
	)
}

func ValidateLineOptions(l pathgen.LineOptions) error {
	return checkBounds(bound{"lines.corner_radius", l.CornerRadius, false})
}

// ValidateAndSetDefaults prepares o for a full pipeline run. Calling it
// again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that a map source is set.
func (o *Options) ValidateForParse() error {
	if o.MapFile == "" && o.Input == nil {
		return errs.New(errs.ErrCodeInvalidInput, "map file or input is required")
	}
	if o.MapFile == "" {
		orDefault(&o.Format, graph.FormatJSON)
	}
	o.ensureLogger()
	return nil
}

// orDefault sets *p to v when *p is the zero value.
func orDefault[T comparable](p *T, v T) {
	var zero T
	if *p == zero {
		*p = v
	}
}

func (o *Options) ensureLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetLayoutDefaults fills layout values that must be positive and are
// unset. Boolean passes keep their explicit values, except that an
// entirely empty config becomes [metro.DefaultConfig].
func (o *Options) SetLayoutDefaults() {
	d := metro.DefaultConfig()
	orDefault(&o.Layout, d)
	orDefault(&o.Layout.LevelSpacing, d.LevelSpacing)
	orDefault(&o.Layout.PathSpacing, d.PathSpacing)
	orDefault(&o.Layout.NodeRadius, d.NodeRadius)
	orDefault(&o.Layout.InterchangeRadius, o.Layout.NodeRadius)
	orDefault(&o.Layout.Seed, d.Seed)
	orDefault(&o.Layout.ResolvePasses, d.ResolvePasses)
	if o.Lines.RoundedCorners {
		orDefault(&o.Lines.CornerRadius, pathgen.DefaultCornerRadius)
	}
	o.ensureLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateLayoutConfig(o.Layout); err != nil {
		return err
	}
	return ValidateLineOptions(o.Lines)
}

// SetRenderDefaults fills the format list and PNG scale.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	orDefault(&o.Scale, DefaultScale)
	o.ensureLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := checkBounds(bound{"render.scale", o.Scale, true}); err != nil {
		return err
	}
	if o.Highlight != "" {
		return errs.Locate(errs.ValidateStationID(o.Highlight), "highlight")
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	c := o.Layout
	return cache.LayoutKeyOpts{
		Padding:            c.Padding,
		LevelSpacing:       c.LevelSpacing,
		PathSpacing:        c.PathSpacing,
		NodeRadius:         c.NodeRadius,
		InterchangeRadius:  c.InterchangeRadius,
		AdjustInterchanges: c.AdjustInterchanges,
		AlignLevels:        c.AlignLevels,
		JitterAmount:       c.JitterAmount,
		Seed:               c.Seed,
		ResolvePasses:      c.ResolvePasses,
		Orthogonal:         o.Lines.Orthogonal,
		RoundedCorners:     o.Lines.RoundedCorners,
		CornerRadius:       o.Lines.CornerRadius,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Highlight = o.Highlight
		k.Legend = o.Legend
		k.Labels = !o.HideLabels
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}
