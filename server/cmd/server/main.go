// Command launchdash serves the launch records dashboard and offers offline
// helpers to inspect the dataset and export charts.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/dataset"
)

// DashboardTitle is the page title and heading.
const DashboardTitle = "SpaceX Launch Records Dashboard"

// logLevel is shared by the JSON handler and config hot-reload.
var logLevel = new(slog.LevelVar)

type globalFlags struct {
	configPath string
	dataset    string
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("launchdash failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "launchdash",
		Short:         "Interactive dashboard over SpaceX launch records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&g.dataset, "dataset", "", "launch records CSV (overrides dataset.path)")

	root.AddCommand(newServeCmd(g), newInspectCmd(g), newRenderCmd(g))
	return root
}

// loadConfig reads the config file. A missing default config.yaml falls back
// to built-in defaults; an explicitly named file must exist.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	switch {
	case err == nil:
	case !cmd.Flags().Changed("config") && errors.Is(err, fs.ErrNotExist):
		slog.Info("no config file, using defaults", "config", g.configPath)
		cfg = config.Default()
	default:
		return nil, err
	}

	if g.dataset != "" {
		cfg.Dataset.Path = g.dataset
	}
	level, _ := config.ParseLevel(cfg.Server.LogLevel)
	logLevel.Set(level)
	return cfg, nil
}

func loadTable(cfg *config.Config) (*dataset.Table, error) {
	t, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset.Columns)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return t, nil
}
