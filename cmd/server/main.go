// Package main is the entry point for the hedgeflow risk and hedge engine.
//
// The server exposes VaR, hedge ratio, portfolio risk and hedge strategy endpoints,
// and runs a background job that records market regime transitions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/hedgeflow/internal/config"
	"github.com/aristath/hedgeflow/internal/di"
	"github.com/aristath/hedgeflow/internal/server"
	"github.com/aristath/hedgeflow/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("market_data_source", cfg.MarketDataSource).
		Str("data_dir", cfg.DataDir).
		Msg("Starting hedgeflow")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:                log,
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		DB:                 container.MarketDB,
		Responder:          container.Responder,
		Modules:            container.Modules(),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Record the starting regime before the first scheduled tick.
	if cfg.RegimeMonitorSchedule != "" {
		if err := container.Scheduler.RunNow(jobs.RegimeMonitor); err != nil {
			log.Warn().Err(err).Msg("Initial regime check failed")
		}
	}
	container.Scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
