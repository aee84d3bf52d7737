package api

import (
	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/store"
	"github.com/marocz/launchdash/server/internal/transform"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status     string       `json:"status"`
	Records    int          `json:"records"`
	Sites      int          `json:"sites"`
	PayloadMin float64      `json:"payload_min"`
	PayloadMax float64      `json:"payload_max"`
	Version    uint64       `json:"version"`
	Source     string       `json:"source,omitempty"`
	LoadedAt   string       `json:"loaded_at"` // RFC3339
	Loads      []store.Load `json:"loads"`
}

// RecordsResponse is the payload for GET /api/v1/records.
type RecordsResponse struct {
	Controls ControlsResponse `json:"controls"`
	Count    int              `json:"count"`
	Records  []types.Record   `json:"records"`
}

// ControlsResponse echoes the control values a figure was computed for, in
// wire form.
type ControlsResponse struct {
	Site    string     `json:"site"`
	Payload [2]float64 `json:"payload"`
}

// OutcomeChart is the outcome figure with its optional SVG rendering. Error
// is set when the figure was computed but could not be rendered.
type OutcomeChart struct {
	Figure transform.PieFigure `json:"figure"`
	SVG    string              `json:"svg,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// ScatterChart is the scatter figure with its color legend and optional SVG
// rendering. Error is set when the figure was computed but could not be
// rendered.
type ScatterChart struct {
	Figure transform.ScatterFigure `json:"figure"`
	Legend map[string]string       `json:"legend"`
	SVG    string                  `json:"svg,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// FiguresResponse carries recomputed figures. A nil chart was not affected by
// the control change and is omitted.
type FiguresResponse struct {
	Version  uint64           `json:"version"`
	Controls ControlsResponse `json:"controls"`
	Outcome  *OutcomeChart    `json:"outcome,omitempty"`
	Scatter  *ScatterChart    `json:"scatter,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
