package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/marocz/launchdash/server/internal/controls"
	"github.com/marocz/launchdash/server/internal/dataset"
	"github.com/marocz/launchdash/server/internal/render"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads the served table from the store and returns JSON or chart images.
type Handler struct {
	b   *Builder
	mux *http.ServeMux
}

// New creates a Handler wired to the given builder and registers all routes.
// Each route is counted in the builder's metrics.
func New(b *Builder) http.Handler {
	h := &Handler{b: b, mux: http.NewServeMux()}

	h.handle("/api/v1/health", "health", h.health)
	h.handle("/api/v1/options", "options", h.options)
	h.handle("/api/v1/records", "records", h.records)
	h.handle("/api/v1/figures/outcome", "figures_outcome", h.outcomeFigure)
	h.handle("/api/v1/figures/scatter", "figures_scatter", h.scatterFigure)
	h.handle("/api/v1/charts/", "charts", h.chart) // subtree - extracts {name}.{ext}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handle(pattern, route string, fn http.HandlerFunc) {
	var next http.Handler = fn
	if h.b.metrics != nil {
		next = h.b.metrics.Instrument(route, fn)
	}
	h.mux.Handle(pattern, next)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health - dataset summary and reload history.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e := h.b.store.Current()
	lo, hi := e.Table.PayloadBounds()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Records:    e.Table.Len(),
		Sites:      len(e.Table.Sites()),
		PayloadMin: lo,
		PayloadMax: hi,
		Version:    e.Version,
		Source:     e.Table.Source(),
		LoadedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
		Loads:      h.b.store.History(),
	})
}

// options returns GET /api/v1/options - the selector options for the UI.
func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.b.Options(h.b.store.Table()))
}

// records returns GET /api/v1/records - the records the scatter would plot.
func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	t, st, ok := h.parseControls(w, r)
	if !ok {
		return
	}
	recs := Records(t, st)
	jsonResp(w, http.StatusOK, RecordsResponse{
		Controls: wireControls(t, st),
		Count:    len(recs),
		Records:  recs,
	})
}

// outcomeFigure returns GET /api/v1/figures/outcome.
func (h *Handler) outcomeFigure(w http.ResponseWriter, r *http.Request) {
	t, st, ok := h.parseControls(w, r)
	if !ok {
		return
	}
	out, err := h.b.Outcome(t, st, false)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, out.Figure)
}

// scatterFigure returns GET /api/v1/figures/scatter.
func (h *Handler) scatterFigure(w http.ResponseWriter, r *http.Request) {
	t, st, ok := h.parseControls(w, r)
	if !ok {
		return
	}
	out, err := h.b.Scatter(t, st, false)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, out.Figure)
}

// chart returns GET /api/v1/charts/{outcome|scatter}.{svg|png}.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, "/api/v1/charts/")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	if name != TransformOutcome && name != TransformScatter {
		jsonErr(w, http.StatusNotFound, "chart not found")
		return
	}
	format, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		jsonErr(w, http.StatusNotFound, "chart not found")
		return
	}

	t, st, ok := h.parseControls(w, r)
	if !ok {
		return
	}

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if name == TransformOutcome {
		var out *OutcomeChart
		if out, err = h.b.Outcome(t, st, false); err == nil {
			err = h.b.render.Pie(&buf, out.Figure, format)
		}
	} else {
		var out *ScatterChart
		if out, err = h.b.Scatter(t, st, false); err == nil {
			err = h.b.render.Scatter(&buf, out.Figure, format)
		}
	}
	if err != nil {
		slog.Error("api: render chart", "chart", name, "format", format, "err", err)
		jsonErr(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// --- helpers ----------------------------------------------------------------

// parseControls checks the method and decodes the control query parameters
// against the current table. It writes the error response itself.
func (h *Handler) parseControls(w http.ResponseWriter, r *http.Request) (*dataset.Table, controls.State, bool) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, controls.State{}, false
	}
	t := h.b.store.Table()
	st, err := controls.FromQuery(r.URL.Query(), t)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return nil, controls.State{}, false
	}
	return t, st, true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
