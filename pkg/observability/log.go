package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks returns a registry that writes every event to logger at debug
// level. Failed layouts, renders and store calls are logged at warn.
func LogHooks(logger *log.Logger) Registry {
	h := logHooks{logger: logger.WithPrefix("hooks")}
	return Registry{Pipeline: h, Cache: h, Store: h, HTTP: h}
}

type logHooks struct {
	logger *log.Logger
}

var (
	_ PipelineHooks = logHooks{}
	_ CacheHooks    = logHooks{}
	_ StoreHooks    = logHooks{}
	_ HTTPHooks     = logHooks{}
)

func (h logHooks) OnLayoutStart(_ context.Context, roles, lines int) {
	h.logger.Debug("layout start", "roles", roles, "lines", lines)
}

func (h logHooks) OnLayoutComplete(_ context.Context, ev LayoutEvent, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "roles", ev.Roles, "duration", d, "error", err)
		return
	}
	h.logger.Debug("layout done",
		"stations", ev.Stations,
		"interchanges", ev.Interchanges,
		"collisions", ev.Collisions,
		"conflicts", ev.Conflicts,
		"duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d)
}

func (h logHooks) OnCacheLookup(_ context.Context, stage string, hit bool) {
	h.logger.Debug("cache lookup", "stage", stage, "hit", hit)
}

func (h logHooks) OnCacheStore(_ context.Context, stage string, size int) {
	h.logger.Debug("cache store", "stage", stage, "bytes", size)
}

func (h logHooks) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("store call failed", "backend", backend, "op", op, "error", err)
		return
	}
	h.logger.Debug("store call", "backend", backend, "op", op, "duration", d)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
