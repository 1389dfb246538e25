package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadfeed/internal/config"
	"threadfeed/internal/metrics"
	"threadfeed/internal/model"
	"threadfeed/internal/redisclient"
	"threadfeed/internal/storage"
	"threadfeed/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the leaderboard collector and the metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		metrics.Init(version)

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewRedisStore(rdb)

		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		sort, err := model.ParseSort(cfg.Collector.Sort)
		if err != nil {
			return err
		}
		interval, err := config.Duration("collector.interval", cfg.Collector.Interval)
		if err != nil {
			return err
		}
		window, err := model.ParseWindow(cfg.Feed.Window)
		if err != nil {
			return err
		}

		collector := &worker.FeedCollector{
			Source:   src,
			Store:    store,
			Scopes:   cfg.Collector.Scopes,
			Sort:     sort,
			Window:   window,
			Pages:    cfg.Collector.Pages,
			TopN:     cfg.Collector.TopN,
			Interval: interval,
		}

		ws := []worker.Worker{collector}
		if cfg.Digest.Enabled {
			builder, err := newDigestBuilder(cfg, store, sort)
			if err != nil {
				return err
			}
			slog.Info("serve: starting digest builder", "dir", builder.OutputDir, "interval", builder.Interval)
			ws = append(ws, builder)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("serve: received signal, shutting down", "signal", s.String())
			cancel()
		}()

		srv := metricsServer(cfg.Metrics.Addr)
		go func() {
			slog.Info("serve: metrics listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("serve: metrics server failed", "error", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = srv.Shutdown(shutdownCtx)
		}()

		slog.Info("serve: starting collector", "scopes", collector.Scopes, "sort", sort, "interval", interval)
		mgr := worker.NewManager(ws...)
		return mgr.Start(ctx)
	},
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
