package transform

import (
	"fmt"

	"github.com/marocz/launchdash/pkg/types"
)

// PayloadScatter plots every record with a payload inside r (inclusive) that
// passes site. Points are colored by booster category; when all sites are
// shown each point also carries its launch site as a symbol key.
//
// An inverted range (Lo > Hi) matches nothing and yields an empty figure.
func PayloadScatter(rs RecordSet, site types.SiteFilter, r types.PayloadRange) ScatterFigure {
	fig := ScatterFigure{
		Kind: "scatter",
		Title: fmt.Sprintf("Success by Payload Mass for %s (%s-%s kg)",
			site.Label(), formatBound(r.Lo), formatBound(r.Hi)),
		Scope:    site.Label(),
		Range:    r,
		XLabel:   PayloadAxisLabel,
		YLabel:   OutcomeAxisLabel,
		ColorKey: BoosterKeyLabel,
		Colors:   []string{},
		Points:   []Point{},
	}
	withSymbols := site.IsAll()
	if withSymbols {
		fig.SymbolKey = SiteKeyLabel
		fig.Symbols = []string{}
	}

	colors := make(map[string]struct{})
	symbols := make(map[string]struct{})
	rs.Each(func(rec types.Record) {
		if !r.Contains(rec.PayloadMassKg) || !site.Match(rec.LaunchSite) {
			return
		}
		p := Point{X: rec.PayloadMassKg, Y: int(rec.Outcome), Color: rec.BoosterCategory}
		if _, ok := colors[rec.BoosterCategory]; !ok {
			colors[rec.BoosterCategory] = struct{}{}
			fig.Colors = append(fig.Colors, rec.BoosterCategory)
		}
		if withSymbols {
			p.Symbol = rec.LaunchSite
			if _, ok := symbols[rec.LaunchSite]; !ok {
				symbols[rec.LaunchSite] = struct{}{}
				fig.Symbols = append(fig.Symbols, rec.LaunchSite)
			}
		}
		fig.Points = append(fig.Points, p)
	})
	return fig
}
