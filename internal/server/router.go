package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/metromap/pkg/observability"
	"github.com/matzehuels/metromap/pkg/pipeline"
	"github.com/matzehuels/metromap/pkg/storage"
)

const defaultMaxBodyBytes = 4 << 20

// Dependencies collects handler dependencies.
type Dependencies struct {
	Runner *pipeline.Runner
	Store  storage.Store

	// Defaults seeds the options of every request before query parameters
	// are applied.
	Defaults pipeline.Options

	Logger       *log.Logger
	MaxBodyBytes int64
}

// NewRouter wires the HTTP routes exposed by the API.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Runner == nil {
		deps.Runner = pipeline.NewRunner(nil, nil, deps.Logger)
	}
	if deps.Store == nil {
		deps.Store = storage.NewMemoryStore()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", h.layout)
		r.Post("/render", h.render)

		r.Route("/maps", func(r chi.Router) {
			r.Post("/", h.createMap)
			r.Get("/", h.listMaps)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getMap)
				r.Put("/", h.putMap)
				r.Delete("/", h.deleteMap)
				r.Get("/layout", h.mapLayout)
				r.Get("/render", h.mapRender)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	return r
}

// requestID propagates X-Request-Id or assigns a UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			hooks := observability.HTTP()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, status, dur)
			logger.Info("request completed",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", dur.Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
