package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/screener/internal/database"
	historicalhandlers "github.com/aristath/screener/internal/modules/historical/handlers"
	"github.com/aristath/screener/internal/modules/screening"
	screeninghandlers "github.com/aristath/screener/internal/modules/screening/handlers"
)

// Container holds all wired dependencies
type Container struct {
	// Databases
	HistoryDB *database.DB // Daily price history, nil when screening CSV files

	// Screening pipeline
	Loader   screening.Loader
	Screener *screening.Screener
	Sinks    []screening.Sink
	Store    *screening.ReportStore
	Runner   *screening.Runner

	// Observability
	Registry *prometheus.Registry
	Metrics  *screening.RunMetrics

	// HTTP
	ScreeningHandler  *screeninghandlers.Handler
	HistoricalHandler *historicalhandlers.Handler
}

// Close releases database connections
func (c *Container) Close() error {
	if c.HistoryDB != nil {
		return c.HistoryDB.Close()
	}
	return nil
}
