// Package observability lets metromap report layout, cache, store and HTTP
// events to whatever metrics or tracing backend the host process uses.
//
// Every category is an interface with a no-op default. A [Registry] groups
// one implementation per category and is installed once at startup:
//
//	observability.Install(observability.Registry{
//	    Pipeline: myMetrics,
//	    Store:    myMetrics,
//	})
//
// Fields left nil keep their no-op default. Library code reads the active
// hooks through [Pipeline], [Cache], [Store] and [HTTP]:
//
//	observability.Pipeline().OnLayoutComplete(ctx, ev, time.Since(start), err)
//
// [LogHooks] is a ready-made registry that writes every event to a
// charmbracelet logger at debug level.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ===== Pipeline =====

// LayoutEvent summarizes one computed layout.
type LayoutEvent struct {
	Roles        int
	Lines        int
	Stations     int
	Interchanges int
	Collisions   int // station pairs pushed apart
	Conflicts    int // roles listed at more than one level
}

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	// OnLayoutStart fires before the geometry stages run on a map with the
	// given number of distinct roles and career paths.
	OnLayoutStart(ctx context.Context, roles, lines int)
	OnLayoutComplete(ctx context.Context, ev LayoutEvent, duration time.Duration, err error)

	// OnRenderStart receives only the formats that missed the cache.
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// ===== Cache =====

// Cache stages.
const (
	StageLayout   = "layout"
	StageArtifact = "artifact"
)

// CacheHooks receives cache events. stage is StageLayout or StageArtifact.
type CacheHooks interface {
	OnCacheLookup(ctx context.Context, stage string, hit bool)
	OnCacheStore(ctx context.Context, stage string, size int)
}

// ===== Store =====

// StoreHooks receives one event per map store call. backend names the
// store ("file", "memory", "mongo", "neo4j"); op is the Store method.
type StoreHooks interface {
	OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// ===== HTTP =====

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request by its raw path; the route
	// pattern is not matched yet.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed request. route is the matched chi
	// pattern, e.g. "/api/v1/maps/{id}".
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// ===== No-op =====

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, int, int)                             {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, LayoutEvent, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheLookup(context.Context, string, bool) {}
func (NoopCacheHooks) OnCacheStore(context.Context, string, int)   {}

// NoopStoreHooks discards store events.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreOp(context.Context, string, string, time.Duration, error) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// ===== Registry =====

// Registry holds one implementation per hook category.
type Registry struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	Store    StoreHooks
	HTTP     HTTPHooks
}

func (r Registry) withDefaults() Registry {
	if r.Pipeline == nil {
		r.Pipeline = NoopPipelineHooks{}
	}
	if r.Cache == nil {
		r.Cache = NoopCacheHooks{}
	}
	if r.Store == nil {
		r.Store = NoopStoreHooks{}
	}
	if r.HTTP == nil {
		r.HTTP = NoopHTTPHooks{}
	}
	return r
}

var active atomic.Pointer[Registry]

func init() { Reset() }

// Install replaces the active hooks. Nil fields fall back to no-ops, so
// Install(Registry{}) is equivalent to Reset.
func Install(r Registry) {
	r = r.withDefaults()
	active.Store(&r)
}

// Reset restores every category to its no-op default.
func Reset() { Install(Registry{}) }

// Active returns the installed registry with defaults applied.
func Active() Registry { return *active.Load() }

func Pipeline() PipelineHooks { return active.Load().Pipeline }
func Cache() CacheHooks       { return active.Load().Cache }
func Store() StoreHooks       { return active.Load().Store }
func HTTP() HTTPHooks         { return active.Load().HTTP }
