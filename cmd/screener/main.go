// Package main is the entry point for the momentum screener.
//
// By default it loads the universe, screens it once, publishes the report to
// the configured sinks and exits. With SCREENER_SERVE=true it instead serves
// the results API and re-screens on SCREENER_SCHEDULE.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/config"
	"github.com/aristath/screener/internal/di"
	"github.com/aristath/screener/internal/scheduler"
	"github.com/aristath/screener/internal/server"
	"github.com/aristath/screener/pkg/logger"
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
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("source", cfg.Source).
		Bool("serve", cfg.Serve).
		Msg("Starting screener")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Serve {
		if _, err := container.Runner.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Screening failed")
			container.Close()
			os.Exit(1)
		}
		return
	}

	serve(ctx, cfg, container, log)
}

func serve(ctx context.Context, cfg *config.Config, container *di.Container, log zerolog.Logger) {
	sched := scheduler.New(log)
	if err := di.RegisterJobs(container, sched, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:        log,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		Screening:  container.ScreeningHandler,
		Historical: container.HistoricalHandler,
		Registry:   container.Registry,
		HistoryDB:  container.HistoryDB,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Prime the API with a first report
	go func() {
		if err := container.Runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Initial screening failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
