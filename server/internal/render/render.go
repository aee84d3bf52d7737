package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/transform"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("render: unsupported format %q: want png|svg", s)
	}
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

const emptyLabel = "No launches"

// palette follows the plotly qualitative defaults the original dashboard used.
var palette = []string{
	"636efa", "ef553b", "00cc96", "ab63fa", "ffa15a",
	"19d3f3", "ff6692", "b6e880", "ff97ff", "fecb52",
}

var (
	successColor = drawing.ColorFromHex("00cc96")
	failureColor = drawing.ColorFromHex("ef553b")
	emptyColor   = drawing.ColorFromHex("d3d3d3")
)

// ColorHex returns the hex color ("#rrggbb") assigned to the i-th color key.
func ColorHex(i int) string {
	return "#" + palette[i%len(palette)]
}

// Legend maps each color key of fig to the color its dots are drawn in.
func Legend(fig transform.ScatterFigure) map[string]string {
	out := make(map[string]string, len(fig.Colors))
	for i, c := range fig.Colors {
		out[c] = ColorHex(i)
	}
	return out
}

// Renderer draws figures at a fixed size.
type Renderer struct {
	width  int
	height int
}

// New creates a Renderer sized by cfg.
func New(cfg config.ChartsConfig) *Renderer {
	return &Renderer{width: cfg.Width, height: cfg.Height}
}

// Pie writes fig to w in format f.
func (rd *Renderer) Pie(w io.Writer, fig transform.PieFigure, f Format) error {
	values := make([]chart.Value, 0, len(fig.Slices))
	for _, s := range fig.Slices {
		col := failureColor
		if s.Outcome == types.Success {
			col = successColor
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Count),
			Value: float64(s.Count),
			Style: chart.Style{FillColor: col, StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Label: emptyLabel,
			Value: 1,
			Style: chart.Style{FillColor: emptyColor, StrokeColor: drawing.ColorWhite},
		})
	}

	pie := chart.PieChart{
		Title:      fig.Title,
		Width:      rd.width,
		Height:     rd.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Values:     values,
	}
	if err := pie.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}

// Scatter writes fig to w in format f.
func (rd *Renderer) Scatter(w io.Writer, fig transform.ScatterFigure, f Format) error {
	xMin, xMax := xBounds(fig)

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      rd.width,
		Height:     rd.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  fig.XLabel,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: &chart.ContinuousRange{Min: -0.5, Max: 1.5},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: scatterSeries(fig, xMin, xMax),
	}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// PieSVG renders fig as an SVG string.
func (rd *Renderer) PieSVG(fig transform.PieFigure) (string, error) {
	var buf bytes.Buffer
	if err := rd.Pie(&buf, fig, SVG); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ScatterSVG renders fig as an SVG string.
func (rd *Renderer) ScatterSVG(fig transform.ScatterFigure) (string, error) {
	var buf bytes.Buffer
	if err := rd.Scatter(&buf, fig, SVG); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// --- internal ---------------------------------------------------------------

// dotStyle draws points only; the connecting stroke is transparent.
func dotStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    width,
		DotColor:    col,
	}
}

type groupKey struct{ color, symbol string }

func scatterSeries(fig transform.ScatterFigure, xMin, xMax float64) []chart.Series {
	if len(fig.Points) == 0 {
		return []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{xMin, xMax},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{{
					XValue: xMin + (xMax-xMin)/2,
					YValue: 0.5,
					Label:  emptyLabel,
				}},
			},
		}
	}

	colorIdx := indexOf(fig.Colors)
	symbolIdx := indexOf(fig.Symbols)

	var order []groupKey
	groups := make(map[groupKey]*chart.ContinuousSeries)
	for _, p := range fig.Points {
		k := groupKey{color: p.Color, symbol: p.Symbol}
		s, ok := groups[k]
		if !ok {
			name := p.Color
			if p.Symbol != "" {
				name += " / " + p.Symbol
			}
			width := 5.0
			if fig.SymbolKey != "" {
				width = 3 + 2*float64(symbolIdx[p.Symbol]%4)
			}
			s = &chart.ContinuousSeries{
				Name:  name,
				Style: dotStyle(drawing.ColorFromHex(palette[colorIdx[p.Color]%len(palette)]), width),
			}
			groups[k] = s
			order = append(order, k)
		}
		s.XValues = append(s.XValues, p.X)
		s.YValues = append(s.YValues, float64(p.Y))
	}

	out := make([]chart.Series, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// xBounds picks a drawable x range: the requested range when its width is
// finite, otherwise the extent of the plotted points. Inverted ranges are
// reordered and ranges under 1 kg are widened so the axis has width.
func xBounds(fig transform.ScatterFigure) (float64, float64) {
	lo, hi := fig.Range.Lo, fig.Range.Hi
	if lo > hi {
		lo, hi = hi, lo
	}
	if !finite(hi - lo) {
		lo, hi = pointExtent(fig.Points)
	}
	if hi-lo < 1 {
		lo, hi = lo-500, hi+500
	}
	return lo, hi
}

// pointExtent is the x extent of pts, or 0..0 when there are none.
func pointExtent(pts []transform.Point) (float64, float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		lo, hi = math.Min(lo, p.X), math.Max(hi, p.X)
	}
	return lo, hi
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func indexOf(keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}
