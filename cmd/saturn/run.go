package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/truststore/importer"
	"mercator-hq/saturn/pkg/truststore/janitor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the import watcher and maintenance janitor",
	Long: `Run Saturn's long-lived services: the drop-directory import watcher
(when import.enabled is set), the scheduled maintenance janitor, and the
Prometheus metrics endpoint (when telemetry.metrics.enabled is set). Blocks
until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServices(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServices(parent context.Context) error {
	cfg := config.GetConfig()
	logger := slog.Default().With("component", "run")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		store.SetMetrics(metrics.NewStoreMetrics(&cfg.Telemetry.Metrics, registry))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		srv := &http.Server{Addr: cfg.Telemetry.Metrics.ListenAddress, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics endpoint started", "address", cfg.Telemetry.Metrics.ListenAddress)
	}

	j := janitor.New(store, cfg.Janitor.Schedule)
	if err := j.Start(ctx); err != nil {
		return fmt.Errorf("starting janitor: %w", err)
	}
	defer j.Stop()

	if cfg.Import.Enabled {
		im := importer.New(store, cfg.Import.DropDir, cfg.Import.DebounceInterval)
		logger.Info("import watcher started", "dir", cfg.Import.DropDir)
		if err := im.Watch(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("import watcher: %w", err)
		}
		return nil
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
