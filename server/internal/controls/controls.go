package controls

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/dataset"
)

// Query parameter names shared by the REST endpoints.
const (
	ParamSite       = "site"
	ParamPayloadMin = "payload_min"
	ParamPayloadMax = "payload_max"
)

// SiteOption is one entry of the site dropdown.
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Mark is one labelled tick on the payload slider.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Slider describes the payload range selector.
type Slider struct {
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Marks []Mark     `json:"marks"`
	Value [2]float64 `json:"value"`
}

// Dropdown describes the site selector.
type Dropdown struct {
	Options     []SiteOption `json:"options"`
	Value       string       `json:"value"`
	AllValue    string       `json:"all_value"`
	Placeholder string       `json:"placeholder"`
	Searchable  bool         `json:"searchable"`
}

// OptionSet is everything the UI needs to draw both selectors.
type OptionSet struct {
	Site    Dropdown `json:"site"`
	Payload Slider   `json:"payload"`
}

// State is one selection of both controls.
type State struct {
	Site    types.SiteFilter
	Payload types.PayloadRange
}

// Options derives the selector options from t.
func Options(t *dataset.Table, cfg config.ControlsConfig) OptionSet {
	sites := t.Sites()
	sentinel := types.Sentinel(sites)

	opts := make([]SiteOption, 0, len(sites)+1)
	opts = append(opts, SiteOption{Label: types.AllSitesLabel, Value: sentinel})
	for _, s := range sites {
		opts = append(opts, SiteOption{Label: s, Value: s})
	}

	lo, hi := t.PayloadBounds()
	return OptionSet{
		Site: Dropdown{
			Options:     opts,
			Value:       sentinel,
			AllValue:    sentinel,
			Placeholder: "Select a Launch Site",
			Searchable:  true,
		},
		Payload: Slider{
			Min:   lo,
			Max:   hi,
			Step:  cfg.PayloadStep,
			Marks: marks(hi, cfg.MarkInterval),
			Value: [2]float64{lo, hi},
		},
	}
}

// Default is the initial selection: all sites over the full payload range.
func Default(t *dataset.Table) State {
	lo, hi := t.PayloadBounds()
	return State{Site: types.AllSites(), Payload: types.PayloadRange{Lo: lo, Hi: hi}}
}

// FromQuery decodes a State from REST query parameters. A missing or
// sentinel site selects all sites, and missing payload bounds fall back to
// the data bounds. Only unparsable or non-finite numbers are rejected.
func FromQuery(q url.Values, t *dataset.Table) (State, error) {
	st := Default(t)
	st.Site = types.ParseSiteFilter(q.Get(ParamSite), types.Sentinel(t.Sites()))

	var err error
	if v := q.Get(ParamPayloadMin); v != "" {
		if st.Payload.Lo, err = parseBound(ParamPayloadMin, v); err != nil {
			return st, err
		}
	}
	if v := q.Get(ParamPayloadMax); v != "" {
		if st.Payload.Hi, err = parseBound(ParamPayloadMax, v); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Query encodes s as REST query parameters.
func (s State) Query(t *dataset.Table) url.Values {
	q := url.Values{}
	q.Set(ParamSite, s.Site.Value(types.Sentinel(t.Sites())))
	q.Set(ParamPayloadMin, strconv.FormatFloat(s.Payload.Lo, 'f', -1, 64))
	q.Set(ParamPayloadMax, strconv.FormatFloat(s.Payload.Hi, 'f', -1, 64))
	return q
}

// Message is the wire form of a control change sent over the WebSocket.
type Message struct {
	Site    *string   `json:"site"`
	Payload []float64 `json:"payload"`
}

// Apply returns prev updated with the fields present in m. The sentinel is
// resolved against t.
func (m Message) Apply(prev State, t *dataset.Table) (State, error) {
	next := prev
	if m.Site != nil {
		next.Site = types.ParseSiteFilter(*m.Site, types.Sentinel(t.Sites()))
	}
	if m.Payload != nil {
		if len(m.Payload) != 2 {
			return prev, fmt.Errorf("payload: want [lo, hi], got %d values", len(m.Payload))
		}
		next.Payload = types.PayloadRange{Lo: m.Payload[0], Hi: m.Payload[1]}
	}
	return next, nil
}

// Changes reports which selectors differ between two states.
func Changes(prev, next State) (site, payload bool) {
	return prev.Site != next.Site, prev.Payload != next.Payload
}

// --- internal ---------------------------------------------------------------

func parseBound(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return f, nil
}

// maxMarks bounds the number of slider labels. Wider ranges get a
// proportionally larger spacing.
const maxMarks = 50

// marks labels every interval from 0 up to max, e.g. "2000 kg".
func marks(max, interval float64) []Mark {
	out := []Mark{}
	if !(interval > 0) || !(max >= 0) || math.IsInf(max, 0) || math.IsInf(interval, 0) {
		return out
	}
	top := math.Floor(max)
	if n := math.Floor(top / interval); n > maxMarks {
		interval *= math.Ceil(n / maxMarks)
	}
	for i := 0; ; i++ {
		v := float64(i) * interval
		if v > top {
			break
		}
		out = append(out, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64) + " kg"})
	}
	return out
}
