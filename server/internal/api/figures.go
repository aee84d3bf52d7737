package api

import (
	"fmt"
	"log/slog"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/controls"
	"github.com/marocz/launchdash/server/internal/dataset"
	"github.com/marocz/launchdash/server/internal/metrics"
	"github.com/marocz/launchdash/server/internal/render"
	"github.com/marocz/launchdash/server/internal/store"
	"github.com/marocz/launchdash/server/internal/transform"
)

// Transform names used as metric labels.
const (
	TransformOutcome = "outcome"
	TransformScatter = "scatter"
)

// Builder computes figures from the table currently held by the store. It is
// shared by the REST handler and the WebSocket hub.
type Builder struct {
	store    *store.Store
	render   *render.Renderer
	metrics  *metrics.Metrics
	controls config.ControlsConfig
}

// NewBuilder creates a Builder. m may be nil.
func NewBuilder(st *store.Store, rd *render.Renderer, m *metrics.Metrics, cc config.ControlsConfig) *Builder {
	return &Builder{store: st, render: rd, metrics: m, controls: cc}
}

// Store returns the store the builder reads from.
func (b *Builder) Store() *store.Store { return b.store }

// Renderer returns the chart renderer.
func (b *Builder) Renderer() *render.Renderer { return b.render }

// Options derives the selector options for t.
func (b *Builder) Options(t *dataset.Table) controls.OptionSet {
	return controls.Options(t, b.controls)
}

// Outcome runs the outcome transform for st. The returned chart always
// carries the figure; a non-nil error means only the SVG is missing.
func (b *Builder) Outcome(t *dataset.Table, st controls.State, withSVG bool) (*OutcomeChart, error) {
	b.metrics.IncTransform(TransformOutcome)
	out := &OutcomeChart{Figure: transform.OutcomeDistribution(t, st.Site)}
	if withSVG {
		svg, err := b.render.PieSVG(out.Figure)
		if err != nil {
			return out, fmt.Errorf("outcome chart: %w", err)
		}
		out.SVG = svg
	}
	return out, nil
}

// Scatter runs the scatter transform for st. The returned chart always
// carries the figure; a non-nil error means only the SVG is missing.
func (b *Builder) Scatter(t *dataset.Table, st controls.State, withSVG bool) (*ScatterChart, error) {
	b.metrics.IncTransform(TransformScatter)
	fig := transform.PayloadScatter(t, st.Site, st.Payload)
	out := &ScatterChart{Figure: fig, Legend: render.Legend(fig)}
	if withSVG {
		svg, err := b.render.ScatterSVG(fig)
		if err != nil {
			return out, fmt.Errorf("scatter chart: %w", err)
		}
		out.SVG = svg
	}
	return out, nil
}

// Figures recomputes the figures affected by a control change: a site change
// affects both, a payload change only the scatter. A chart whose rendering
// fails is still returned with its figure and the failure in Error.
func (b *Builder) Figures(e store.Entry, st controls.State, site, payload bool) FiguresResponse {
	resp := FiguresResponse{Version: e.Version, Controls: wireControls(e.Table, st)}
	var err error
	if site {
		if resp.Outcome, err = b.Outcome(e.Table, st, true); err != nil {
			slog.Error("api: render figure", "chart", TransformOutcome, "err", err)
			resp.Outcome.Error = err.Error()
		}
	}
	if site || payload {
		if resp.Scatter, err = b.Scatter(e.Table, st, true); err != nil {
			slog.Error("api: render figure", "chart", TransformScatter, "err", err)
			resp.Scatter.Error = err.Error()
		}
	}
	return resp
}

// Records returns the records matching st, in file order.
func Records(t *dataset.Table, st controls.State) []types.Record {
	out := []types.Record{}
	t.Each(func(r types.Record) {
		if st.Site.Match(r.LaunchSite) && st.Payload.Contains(r.PayloadMassKg) {
			out = append(out, r)
		}
	})
	return out
}

func wireControls(t *dataset.Table, st controls.State) ControlsResponse {
	return ControlsResponse{
		Site:    st.Site.Value(types.Sentinel(t.Sites())),
		Payload: [2]float64{st.Payload.Lo, st.Payload.Hi},
	}
}
