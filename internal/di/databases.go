// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/screener/internal/config"
	"github.com/aristath/screener/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the history database when it is the price source
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if cfg.Source != config.SourceHistory {
		return container, nil
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDB,
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	if err := historyDB.Migrate(); err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	container.HistoryDB = historyDB

	log.Info().Str("path", historyDB.Path()).Msg("History database initialized")
	return container, nil
}
