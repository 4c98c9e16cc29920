package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/metromap/pkg/cache"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/observability"
)

// Runner runs the pipeline stages against a cache. The CLI and the API
// server share it so both key and reuse layouts the same way.
//
// A Runner keeps no results of its own and is safe for concurrent use.
// Concurrent layout requests for the same map and options are computed
// once and shared.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	layouts singleflight.Group
}

// NewRunner returns a Runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses [log.Default].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute parses opts' map, lays it out and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	var res Result
	t := time.Now()
	m, err := Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res.Map, res.MapHash = m, MapHash(m)
	res.Stats.ParseTime = time.Since(t)

	t = time.Now()
	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.CacheInfo.LayoutHit = hit
	res.Stats = Stats{
		StationCount:     len(l.Stations),
		LineCount:        len(l.Lines),
		InterchangeCount: l.InterchangeCount(),
		CollisionCount:   l.Collisions,
		ParseTime:        res.Stats.ParseTime,
		LayoutTime:       time.Since(t),
	}
	r.Logger.Info("computed layout",
		"map", m.Name,
		"stations", res.Stats.StationCount,
		"lines", res.Stats.LineCount,
		"interchanges", res.Stats.InterchangeCount,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	t = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(t)
	r.Logger.Info("rendered map", "formats", opts.Formats, "cached", hit, "duration", res.Stats.RenderTime)

	return &res, nil
}

// MapHash returns the content hash of m used in layout cache keys.
func MapHash(m graph.CareerMap) string {
	data, _ := graph.MarshalCareerMap(m)
	return cache.Hash(data)
}

// ComputeLayout lays out m, serving it from the cache when possible.
func (r *Runner) ComputeLayout(ctx context.Context, m graph.CareerMap, opts Options) (graph.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, m, opts)
	return l, err
}

type layoutResult struct {
	layout graph.Layout
	hit    bool
}

// ComputeLayoutWithCacheInfo is ComputeLayout that also reports whether
// the layout came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, m graph.CareerMap, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(MapHash(m), opts.LayoutKeyOpts())

	v, err, shared := r.layouts.Do(key, func() (any, error) {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, observability.StageLayout, key); ok {
				l, err := graph.UnmarshalLayout(data)
				if err == nil {
					return layoutResult{l, true}, nil
				}
				r.Logger.Debug("discarding unreadable cached layout", "key", key, "error", err)
			}
		}

		hooks := observability.Pipeline()
		hooks.OnLayoutStart(ctx, m.RoleCount(), len(m.Paths))
		start := time.Now()
		l, err := GenerateLayout(m, opts)
		hooks.OnLayoutComplete(ctx, layoutEvent(m, l), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if data, err := graph.MarshalLayout(l); err == nil {
			r.store(ctx, observability.StageLayout, key, data, cache.TTLLayout)
		}
		return layoutResult{l, false}, nil
	})
	if err != nil {
		return graph.Layout{}, false, err
	}
	if shared {
		r.Logger.Debug("shared in-flight layout", "key", key)
	}
	res := v.(layoutResult)
	return res.layout, res.hit, nil
}

func layoutEvent(m graph.CareerMap, l graph.Layout) observability.LayoutEvent {
	return observability.LayoutEvent{
		Roles:        m.RoleCount(),
		Lines:        len(l.Lines),
		Stations:     len(l.Stations),
		Interchanges: l.InterchangeCount(),
		Collisions:   l.Collisions,
		Conflicts:    len(l.Conflicts),
	}
}

// Render draws l in every format of opts, serving cached artifacts.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// RenderWithCacheInfo is Render that also reports whether every artifact
// came from the cache. Only the formats that miss are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, observability.StageArtifact, keyFor(format)); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, l, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		r.store(ctx, observability.StageArtifact, keyFor(format), data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// lookup reads key from the cache and reports the outcome to the cache
// hooks. Read errors count as misses.
func (r *Runner) lookup(ctx context.Context, stage, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "stage", stage, "error", err)
		hit = false
	}
	observability.Cache().OnCacheLookup(ctx, stage, hit)
	return data, hit
}

// store writes data to the cache. Failures are logged and otherwise
// ignored.
func (r *Runner) store(ctx context.Context, stage, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "stage", stage, "error", err)
		return
	}
	observability.Cache().OnCacheStore(ctx, stage, len(data))
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
