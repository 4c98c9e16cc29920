package server

import (
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/metromap/pkg/buildinfo"
	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/pipeline"
	"github.com/matzehuels/metromap/pkg/storage"
)

type handlers struct {
	deps Dependencies
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type mapList struct {
	Maps []storage.Summary `json:"maps"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// =============================================================================
// Stateless layout and render
// =============================================================================

func (h *handlers) layout(w http.ResponseWriter, r *http.Request) {
	m, err := h.readMap(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLayout(w, r, m)
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request) {
	m, err := h.readMap(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeArtifact(w, r, m)
}

func (h *handlers) writeLayout(w http.ResponseWriter, r *http.Request, m graph.CareerMap) {
	opts, err := optionsFromQuery(h.deps.Defaults, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	l, hit, err := h.deps.Runner.ComputeLayoutWithCacheInfo(r.Context(), m, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "encode layout"))
		return
	}
	setCacheHeader(w, hit)
	respondBytes(w, http.StatusOK, pipeline.ContentTypes[pipeline.FormatJSON], data)
}

func (h *handlers) writeArtifact(w http.ResponseWriter, r *http.Request, m graph.CareerMap) {
	opts, err := optionsFromQuery(h.deps.Defaults, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	format := opts.Formats[0]

	l, layoutHit, err := h.deps.Runner.ComputeLayoutWithCacheInfo(r.Context(), m, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	artifacts, renderHit, err := h.deps.Runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	setCacheHeader(w, layoutHit && renderHit)
	respondBytes(w, http.StatusOK, pipeline.ContentTypes[format], artifacts[format])
}

// =============================================================================
// Stored maps
// =============================================================================

func (h *handlers) createMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.readMap(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := h.deps.Store.Save(r.Context(), storage.Document{Name: r.URL.Query().Get("name"), Map: m})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/maps/"+doc.ID)
	respondJSON(w, http.StatusCreated, doc)
}

func (h *handlers) putMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateMapID(id); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.readMap(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := h.deps.Store.Save(r.Context(), storage.Document{ID: id, Name: r.URL.Query().Get("name"), Map: m})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *handlers) listMaps(w http.ResponseWriter, r *http.Request) {
	docs, err := h.deps.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := mapList{Maps: make([]storage.Summary, 0, len(docs))}
	for _, d := range docs {
		out.Maps = append(out.Maps, d.Summarize())
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *handlers) getMap(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *handlers) deleteMap(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) mapLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLayout(w, r, doc.Map)
}

func (h *handlers) mapRender(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeArtifact(w, r, doc.Map)
}

// =============================================================================
// Request decoding
// =============================================================================

// readMap decodes the request body as a career map, choosing the format from
// the Content-Type header.
func (h *handlers) readMap(w http.ResponseWriter, r *http.Request) (graph.CareerMap, error) {
	body := http.MaxBytesReader(w, r.Body, h.deps.MaxBodyBytes)
	defer body.Close()
	return graph.ReadCareerMap(body, inputFormat(r.Header.Get("Content-Type")))
}

func inputFormat(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/toml", "text/toml":
		return graph.FormatTOML
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return graph.FormatYAML
	default:
		return graph.FormatJSON
	}
}

// optionsFromQuery applies query parameters over defaults.
//
// Layout: padding, level_spacing, path_spacing, node_radius,
// interchange_radius, adjust_interchanges, align_levels, jitter, seed,
// resolve_passes. Lines: orthogonal, rounded_corners, corner_radius.
// Render: format (one of svg, json, dot, png), highlight, legend, labels,
// scale. Cache: refresh.
func optionsFromQuery(defaults pipeline.Options, q url.Values) (pipeline.Options, error) {
	opts := defaults
	opts.Formats = slices.Clone(defaults.Formats)
	p := queryParser{q: q}

	p.floatVar("padding", &opts.Layout.Padding)
	p.floatVar("level_spacing", &opts.Layout.LevelSpacing)
	p.floatVar("path_spacing", &opts.Layout.PathSpacing)
	p.floatVar("node_radius", &opts.Layout.NodeRadius)
	p.floatVar("interchange_radius", &opts.Layout.InterchangeRadius)
	p.boolVar("adjust_interchanges", &opts.Layout.AdjustInterchanges)
	p.boolVar("align_levels", &opts.Layout.AlignLevels)
	p.floatVar("jitter", &opts.Layout.JitterAmount)
	p.uintVar("seed", &opts.Layout.Seed)
	p.intVar("resolve_passes", &opts.Layout.ResolvePasses)

	p.boolVar("orthogonal", &opts.Lines.Orthogonal)
	p.boolVar("rounded_corners", &opts.Lines.RoundedCorners)
	p.floatVar("corner_radius", &opts.Lines.CornerRadius)

	labels := !opts.HideLabels
	p.boolVar("labels", &labels)
	opts.HideLabels = !labels
	p.boolVar("legend", &opts.Legend)
	p.floatVar("scale", &opts.Scale)
	p.boolVar("refresh", &opts.Refresh)
	if v := q.Get("highlight"); v != "" {
		opts.Highlight = v
	}

	if p.err != nil {
		return pipeline.Options{}, p.err
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
		if len(opts.Formats) > 0 {
			format = opts.Formats[0]
		}
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}
	opts.Formats = []string{format}
	return opts, nil
}

// queryParser records the first parse failure.
type queryParser struct {
	q   url.Values
	err error
}

func (p *queryParser) get(key string) (string, bool) {
	if p.err != nil || !p.q.Has(key) {
		return "", false
	}
	return p.q.Get(key), true
}

func (p *queryParser) fail(key, v string, err error) {
	p.err = errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid %s %q", key, v)
}

func (p *queryParser) floatVar(key string, dst *float64) {
	if v, ok := p.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *queryParser) intVar(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *queryParser) uintVar(key string, dst *uint64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *queryParser) boolVar(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}
