package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Promethee/internal/api"
	"github.com/MikeSquared-Agency/Promethee/internal/config"
	"github.com/MikeSquared-Agency/Promethee/internal/hermes"
	"github.com/MikeSquared-Agency/Promethee/internal/metrics"
	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
	"github.com/MikeSquared-Agency/Promethee/internal/runner"
	"github.com/MikeSquared-Agency/Promethee/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the run loop and the metrics endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store: postgres when configured, memory otherwise.
	var s store.Store
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return err
		}
		s = db
		logger.Info("connected to database")
	} else {
		s = store.NewMemoryStore()
		logger.Warn("no database configured, runs are kept in memory")
	}
	defer s.Close()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	engine := promethee.NewEngine(
		promethee.WithWorkers(cfg.Engine.Workers),
		promethee.WithTolerance(cfg.Engine.Tolerance),
	)

	rn := runner.New(s, hermesClient, runner.NewExecutor(engine), m, cfg, logger)
	rn.Start(ctx)
	defer rn.Stop()
	logger.Info("runner started", "tick_interval", cfg.TickInterval(), "stale_run_timeout", cfg.StaleRunTimeout())

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(s, rn, m, cfg.Server, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}
