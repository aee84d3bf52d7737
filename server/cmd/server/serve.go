package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marocz/launchdash/server/internal/api"
	"github.com/marocz/launchdash/server/internal/auth"
	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/dataset"
	"github.com/marocz/launchdash/server/internal/metrics"
	"github.com/marocz/launchdash/server/internal/render"
	"github.com/marocz/launchdash/server/internal/store"
	"github.com/marocz/launchdash/server/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, REST API and WebSocket stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.HTTPPort = port
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, g.configPath)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.http_port)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, configPath string) error {
	slog.Info("launchdash starting",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"dataset", cfg.Dataset.Path,
		"watch", cfg.Dataset.Watch,
	)

	t, err := loadTable(cfg)
	if err != nil {
		return err
	}
	slog.Info("dataset loaded", "records", t.Len(), "sites", len(t.Sites()))

	st := store.New(t)
	m := metrics.New()
	b := api.NewBuilder(st, render.New(cfg.Charts), m, cfg.Controls)
	hub := ws.New(b, cfg.Server.BroadcastInterval)

	m.GaugeFunc("dataset_records", "Records in the served dataset.", func() float64 {
		return float64(st.Table().Len())
	})
	m.GaugeFunc("dataset_version", "Version of the served dataset; bumps on reload.", func() float64 {
		return float64(st.Version())
	})
	m.GaugeFunc("ws_clients", "Connected WebSocket clients.", func() float64 {
		return float64(hub.Count())
	})

	requireKey := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	ui, err := api.UI(DashboardTitle)
	if err != nil {
		return err
	}

	// Combined HTTP server: UI + REST API + WebSocket hub + metrics on HTTPPort.
	mux := http.NewServeMux()
	mux.Handle("/api/", requireKey(api.New(b)))
	mux.Handle("/ws/stream", requireKey(m.Instrument("ws_stream", hub)))
	mux.Handle("/metrics", m)
	mux.Handle("/", ui)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-gctx.Done()
		slog.Info("launchdash shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	// Reload ticker: re-pushes figures after a dataset swap.
	grp.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	// Config hot reload: only log_level applies without a restart.
	grp.Go(func() error {
		err := config.Watch(gctx, configPath, func(next *config.Config) {
			level, _ := config.ParseLevel(next.Server.LogLevel)
			logLevel.Set(level)
			slog.Info("config reloaded", "log_level", level.String())
		})
		if err != nil {
			slog.Warn("config watch disabled", "config", configPath, "err", err)
		}
		return nil
	})

	if cfg.Dataset.Watch {
		grp.Go(func() error {
			return dataset.Watch(gctx, cfg.Dataset.Path, cfg.Dataset.Columns, func(next *dataset.Table) {
				v := st.Replace(next)
				slog.Info("dataset swapped", "version", v, "records", next.Len())
			})
		})
	}

	return grp.Wait()
}
