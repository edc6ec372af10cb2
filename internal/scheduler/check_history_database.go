package scheduler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aristath/screener/internal/database"
	"github.com/rs/zerolog"
)

// CheckHistoryDatabaseJob verifies integrity of the price history database
type CheckHistoryDatabaseJob struct {
	log       zerolog.Logger
	historyDB *database.DB
}

// NewCheckHistoryDatabaseJob creates a new CheckHistoryDatabaseJob
func NewCheckHistoryDatabaseJob(historyDB *database.DB, log zerolog.Logger) *CheckHistoryDatabaseJob {
	return &CheckHistoryDatabaseJob{
		log:       log.With().Str("job", "check_history_database").Logger(),
		historyDB: historyDB,
	}
}

// Name returns the job name
func (j *CheckHistoryDatabaseJob) Name() string {
	return "check_history_database"
}

// Run executes the integrity check
func (j *CheckHistoryDatabaseJob) Run(ctx context.Context) error {
	if j.historyDB == nil {
		j.log.Warn().Msg("History database not initialized, skipping")
		return nil
	}

	if err := checkDatabaseIntegrity(ctx, j.historyDB.Conn()); err != nil {
		j.log.Error().
			Err(err).
			Str("database", j.historyDB.Name()).
			Msg("History database integrity check failed")
		return fmt.Errorf("database %s is corrupted: %w", j.historyDB.Name(), err)
	}

	j.log.Debug().Str("database", j.historyDB.Name()).Msg("Database integrity OK")
	return nil
}

// checkDatabaseIntegrity runs SQLite's PRAGMA integrity_check
func checkDatabaseIntegrity(ctx context.Context, db *sql.DB) error {
	var result string
	err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}

	return nil
}
