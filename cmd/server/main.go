// Package main is the entry point for the portfolio advisor API server.
//
// Startup sequence:
//  1. Load configuration from the environment (.env supported)
//  2. Initialize logging
//  3. Wire dependencies (database, stores, services, jobs)
//  4. Start the scheduler and the HTTP server
//  5. Wait for a shutdown signal and stop gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/portfolio-advisor/internal/config"
	"github.com/aristath/portfolio-advisor/internal/di"
	"github.com/aristath/portfolio-advisor/internal/server"
	"github.com/aristath/portfolio-advisor/pkg/logger"
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
		Str("data_dir", cfg.DataDir).
		Str("driver", cfg.DatabaseDriver).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting portfolio advisor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, sched, err := di.Wire(ctx, cfg, log, di.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	sched.Start()

	srv := server.New(server.Config{
		Log:         log,
		Container:   container,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight requests get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()

	log.Info().Msg("Server stopped")
}
