package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/controls"
	"github.com/marocz/launchdash/server/internal/dataset"
	"github.com/marocz/launchdash/server/internal/render"
	"github.com/marocz/launchdash/server/internal/transform"
)

type renderFlags struct {
	outDir     string
	format     string
	site       string
	payloadMin string
	payloadMax string
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the outcome and scatter charts to image files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			t, err := loadTable(cfg)
			if err != nil {
				return err
			}
			paths, err := renderCharts(t, cfg, f)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&f.format, "format", "png", "image format: png|svg")
	cmd.Flags().StringVar(&f.site, "site", "", "launch site (default: all sites)")
	cmd.Flags().StringVar(&f.payloadMin, "payload-min", "", "lower payload bound in kg (default: data minimum)")
	cmd.Flags().StringVar(&f.payloadMax, "payload-max", "", "upper payload bound in kg (default: data maximum)")
	return cmd
}

// renderCharts writes outcome.<ext> and scatter.<ext> into f.outDir and
// returns their paths.
func renderCharts(t *dataset.Table, cfg *config.Config, f *renderFlags) ([]string, error) {
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set(controls.ParamSite, f.site)
	q.Set(controls.ParamPayloadMin, f.payloadMin)
	q.Set(controls.ParamPayloadMax, f.payloadMax)
	st, err := controls.FromQuery(q, t)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rd := render.New(cfg.Charts)
	pie := transform.OutcomeDistribution(t, st.Site)
	scatter := transform.PayloadScatter(t, st.Site, st.Payload)

	var paths []string
	for _, chart := range []struct {
		name string
		draw func(*bytes.Buffer) error
	}{
		{"outcome", func(b *bytes.Buffer) error { return rd.Pie(b, pie, format) }},
		{"scatter", func(b *bytes.Buffer) error { return rd.Scatter(b, scatter, format) }},
	} {
		var buf bytes.Buffer
		if err := chart.draw(&buf); err != nil {
			return paths, err
		}
		p := filepath.Join(f.outDir, chart.name+"."+string(format))
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		slog.Debug("chart written", "path", p, "bytes", buf.Len())
		paths = append(paths, p)
	}
	return paths, nil
}
