package transform

import (
	"strconv"

	"github.com/marocz/launchdash/pkg/types"
)

// Axis and legend labels shared by the scatter figure and its renderers.
const (
	PayloadAxisLabel = "Payload Mass (kg)"
	OutcomeAxisLabel = "Launch Outcome"
	BoosterKeyLabel  = "Booster Version Category"
	SiteKeyLabel     = "Launch Site"
)

// RecordSet is the read-only view of the dataset the transforms need.
// *dataset.Table satisfies it.
type RecordSet interface {
	Each(fn func(types.Record))
}

// Slice is one wedge of the outcome pie.
type Slice struct {
	Label    string        `json:"label"`
	Outcome  types.Outcome `json:"class"`
	Count    int           `json:"count"`
	Fraction float64       `json:"fraction"`
}

// PieFigure is the outcome distribution for one site scope.
type PieFigure struct {
	Kind   string  `json:"kind"`
	Title  string  `json:"title"`
	Scope  string  `json:"scope"`
	Total  int     `json:"total"`
	Slices []Slice `json:"slices"`
}

// Counts returns the slice counts keyed by outcome label.
func (f PieFigure) Counts() map[string]int {
	out := make(map[string]int, len(f.Slices))
	for _, s := range f.Slices {
		out[s.Label] = s.Count
	}
	return out
}

// Point is one launch in the scatter figure.
type Point struct {
	X      float64 `json:"x"`
	Y      int     `json:"y"`
	Color  string  `json:"color"`
	Symbol string  `json:"symbol,omitempty"`
}

// ScatterFigure plots payload mass against outcome for one site scope and
// payload range. SymbolKey is empty when a single site is selected.
type ScatterFigure struct {
	Kind      string             `json:"kind"`
	Title     string             `json:"title"`
	Scope     string             `json:"scope"`
	Range     types.PayloadRange `json:"range"`
	XLabel    string             `json:"x_label"`
	YLabel    string             `json:"y_label"`
	ColorKey  string             `json:"color_key"`
	SymbolKey string             `json:"symbol_key,omitempty"`
	Colors    []string           `json:"colors"`
	Symbols   []string           `json:"symbols,omitempty"`
	Points    []Point            `json:"points"`
}

// formatBound prints a payload bound without a trailing ".0" or exponent.
func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
