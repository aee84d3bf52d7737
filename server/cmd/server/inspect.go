package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/dataset"
	"github.com/marocz/launchdash/server/internal/transform"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of the launch records dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			t, err := loadTable(cfg)
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), t)
		},
	}
}

// inspect writes the dataset summary and a per-site outcome table.
func inspect(w io.Writer, t *dataset.Table) error {
	lo, hi := t.PayloadBounds()
	fmt.Fprintf(w, "source:   %s\n", t.Source())
	fmt.Fprintf(w, "loaded:   %s\n", humanize.Time(t.LoadedAt()))
	fmt.Fprintf(w, "records:  %s\n", humanize.Comma(int64(t.Len())))
	fmt.Fprintf(w, "payload:  %s - %s kg\n", humanize.Commaf(lo), humanize.Commaf(hi))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tLAUNCHES\tSUCCESS\tFAILURE\tSUCCESS RATE")
	row := func(f types.SiteFilter) {
		fig := transform.OutcomeDistribution(t, f)
		c := fig.Counts()
		rate := 0.0
		if fig.Total > 0 {
			rate = float64(c[types.Success.String()]) / float64(fig.Total) * 100
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s%%\n", f.Label(), fig.Total,
			c[types.Success.String()], c[types.Failure.String()], humanize.FtoaWithDigits(rate, 1))
	}
	for _, s := range t.Sites() {
		row(types.SiteEquals(s))
	}
	row(types.AllSites())
	return tw.Flush()
}
