package transform

import (
	"fmt"

	"github.com/marocz/launchdash/pkg/types"
)

// outcomeOrder fixes slice order so identical inputs give identical figures.
var outcomeOrder = []types.Outcome{types.Success, types.Failure}

// OutcomeDistribution counts launches per outcome class for the records that
// pass site. Classes with no launches are left out, so a site with no records
// yields a figure with no slices and a zero total.
func OutcomeDistribution(rs RecordSet, site types.SiteFilter) PieFigure {
	var counts [2]int
	rs.Each(func(r types.Record) {
		if !site.Match(r.LaunchSite) {
			return
		}
		if r.Outcome == types.Success {
			counts[types.Success]++
		} else {
			counts[types.Failure]++
		}
	})

	fig := PieFigure{
		Kind:   "pie",
		Title:  fmt.Sprintf("Total Success Launches for %s", site.Label()),
		Scope:  site.Label(),
		Total:  counts[types.Success] + counts[types.Failure],
		Slices: make([]Slice, 0, len(outcomeOrder)),
	}
	for _, o := range outcomeOrder {
		n := counts[o]
		if n == 0 {
			continue
		}
		fig.Slices = append(fig.Slices, Slice{
			Label:    o.String(),
			Outcome:  o,
			Count:    n,
			Fraction: float64(n) / float64(fig.Total),
		})
	}
	return fig
}
