package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"media-extensions/internal/builder"
	"media-extensions/internal/media"
	"media-extensions/internal/pipeline"
	"media-extensions/internal/platform/metrics"
	"media-extensions/internal/registry"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the extension registry over HTTP using go-chi.
type Handler struct {
	reg     *registry.Registry
	asm     *pipeline.Assembler
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler. Metrics may be nil to disable metric
// recording (e.g. in tests).
func NewHandler(reg *registry.Registry, asm *pipeline.Assembler, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{reg: reg, asm: asm, log: log, metrics: m}
}

// Routes mounts the handler's endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/renderers/{category}", h.ListRenderers)
	r.Post("/renderers/{category}", h.RegisterRenderer)
	r.Get("/sources", h.ListSources)
	r.Post("/sources", h.RegisterSource)
	r.Get("/resolve", h.Resolve)
	r.Post("/prepare", h.Prepare)
}

type renderersResponse struct {
	Category    string   `json:"category"`
	Identifiers []string `json:"identifiers"`
}

type registerRendererRequest struct {
	Identifier string `json:"identifier"`
}

type sourceEntry struct {
	Builder   string `json:"builder"`
	Extension string `json:"extension,omitempty"`
	Regex     string `json:"regex,omitempty"`
}

type resolveResponse struct {
	Locator string `json:"locator"`
	Builder string `json:"builder"`
}

type prepareRequest struct {
	Locator string `json:"locator"`
}

type prepareResponse struct {
	ID        string              `json:"id"`
	Builder   string              `json:"builder"`
	Kind      string              `json:"kind"`
	URI       string              `json:"uri"`
	Renderers map[string][]string `json:"renderers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListRenderers handles GET /renderers/{category}.
func (h *Handler) ListRenderers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.category(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, renderersResponse{
		Category:    c.String(),
		Identifiers: h.reg.RendererClasses(c),
	})
}

// RegisterRenderer handles POST /renderers/{category}.
// Body: { "identifier": "com.example.AacRenderer" }.
func (h *Handler) RegisterRenderer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.category(w, r)
	if !ok {
		return
	}

	var req registerRendererRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid renderer body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	id := strings.TrimSpace(req.Identifier)
	if id == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	h.reg.RegisterRenderer(c, id)
	h.log.Info("renderer registered",
		slog.String("category", c.String()),
		slog.String("identifier", id))
	writeJSON(w, http.StatusCreated, renderersResponse{
		Category:    c.String(),
		Identifiers: h.reg.RendererClasses(c),
	})
}

// ListSources handles GET /sources. Entries are in priority order.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	entries := h.reg.SourceEntries()
	out := make([]sourceEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, sourceEntry{Builder: e.Builder.Name(), Extension: e.Extension, Regex: e.Regex})
	}
	writeJSON(w, http.StatusOK, out)
}

// RegisterSource handles POST /sources.
// Body: { "builder": "hls", "extension": ".m3u", "regex": ".*m3u.*" }.
func (h *Handler) RegisterSource(w http.ResponseWriter, r *http.Request) {
	var req sourceEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid source body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Extension == "" && req.Regex == "" {
		writeError(w, http.StatusBadRequest, "extension or regex is required")
		return
	}
	b, ok := builder.ByName(req.Builder)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown builder, expected one of "+strings.Join(builder.Names(), ", "))
		return
	}
	entry, err := registry.NewSourceTypeEntry(b, req.Extension, req.Regex)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.reg.RegisterMediaSourceBuilder(entry)
	h.log.Info("media source builder registered",
		slog.String("builder", b.Name()),
		slog.String("extension", req.Extension),
		slog.String("regex", req.Regex))
	writeJSON(w, http.StatusCreated, sourceEntry{Builder: b.Name(), Extension: req.Extension, Regex: req.Regex})
}

// Resolve handles GET /resolve?locator=....
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	locator := r.URL.Query().Get("locator")
	if locator == "" {
		writeError(w, http.StatusBadRequest, "locator is required")
		return
	}

	b, err := h.reg.Resolve(locator)
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncUnresolved()
		}
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.IncResolved(b.Name())
	}
	writeJSON(w, http.StatusOK, resolveResponse{Locator: locator, Builder: b.Name()})
}

// Prepare handles POST /prepare. Body: { "locator": "https://.../index.m3u8" }.
func (h *Handler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Locator == "" {
		writeError(w, http.StatusBadRequest, "locator is required")
		return
	}

	p, err := h.asm.Prepare(r.Context(), req.Locator, nil)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrUnsupportedMediaType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, pipeline.ErrInvalidRenderer):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error("prepare failed", slog.String("locator", req.Locator), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	renderers := make(map[string][]string, len(p.Renderers))
	for c, rs := range p.Renderers {
		ids := make([]string, 0, len(rs))
		for _, rnd := range rs {
			ids = append(ids, rnd.Identifier())
		}
		renderers[c.String()] = ids
	}
	writeJSON(w, http.StatusOK, prepareResponse{
		ID:        p.ID.String(),
		Builder:   p.Builder,
		Kind:      string(p.Source.Kind),
		URI:       p.Source.URI,
		Renderers: renderers,
	})
}

func (h *Handler) category(w http.ResponseWriter, r *http.Request) (media.RendererCategory, bool) {
	c, err := media.ParseRendererCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
