// Package main imports a directory of per-ticker CSV price files into the
// history database read by the screener's history source.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/screener/internal/config"
	"github.com/aristath/screener/internal/database"
	"github.com/aristath/screener/internal/modules/marketdata"
	"github.com/aristath/screener/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	dir := flag.String("dir", cfg.CSVDir, "directory of <TICKER>.csv files")
	pattern := flag.String("pattern", cfg.CSVPattern, "glob pattern for price files")
	dbPath := flag.String("db", cfg.HistoryDB, "history database path")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	if *dbPath == "" {
		log.Fatal().Msg("History database path is required (-db or SCREENER_HISTORY_DB)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(database.Config{
		Path:    *dbPath,
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate history database")
	}

	universe, err := marketdata.NewCSVLoader(*dir, *pattern, cfg.Location, log).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load CSV files")
	}

	store := marketdata.NewHistoryLoader(db.Conn(), cfg.Location, log)
	failed := 0
	for _, inst := range universe {
		if err := store.StoreSeries(inst.ID, inst.Series); err != nil {
			log.Error().Err(err).Str("instrument", inst.ID).Msg("Failed to import series")
			failed++
		}
	}

	log.Info().
		Int("imported", len(universe)-failed).
		Int("failed", failed).
		Str("db", *dbPath).
		Msg("Import complete")

	if failed > 0 {
		db.Close()
		os.Exit(1)
	}
}
