package di

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/config"
	"github.com/aristath/screener/internal/modules/export"
	historicalhandlers "github.com/aristath/screener/internal/modules/historical/handlers"
	"github.com/aristath/screener/internal/modules/marketdata"
	"github.com/aristath/screener/internal/modules/screening"
	screeninghandlers "github.com/aristath/screener/internal/modules/screening/handlers"
)

// InitializeServices builds the loader, sinks and screening runner
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	var series historicalhandlers.SeriesSource
	switch cfg.Source {
	case config.SourceHistory:
		if container.HistoryDB == nil {
			return fmt.Errorf("history source selected but history database is not initialized")
		}
		loader := marketdata.NewHistoryLoader(container.HistoryDB.Conn(), cfg.Location, log)
		container.Loader, series = loader, loader
	default:
		loader := marketdata.NewCSVLoader(cfg.CSVDir, cfg.CSVPattern, cfg.Location, log)
		container.Loader, series = loader, loader
	}

	screener, err := screening.NewScreener(cfg.ScreeningConfig(), log)
	if err != nil {
		return fmt.Errorf("failed to create screener: %w", err)
	}
	container.Screener = screener

	container.Sinks = buildSinks(cfg, log)
	container.Store = screening.NewReportStore()

	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	container.Metrics = screening.NewRunMetrics(container.Registry)

	container.Runner = screening.NewRunner(
		container.Loader,
		container.Screener,
		container.Sinks,
		container.Store,
		container.Metrics,
		log,
	)
	container.ScreeningHandler = screeninghandlers.NewHandler(container.Store, container.Runner, log)
	container.HistoricalHandler = historicalhandlers.NewHandler(
		series,
		screening.NewCalculator(cfg.ScreeningConfig().Windows),
		log,
	)

	log.Info().
		Str("loader", container.Loader.Name()).
		Int("sinks", len(container.Sinks)).
		Msg("Services initialized")
	return nil
}

// buildSinks returns the enabled sinks. The console sink is skipped in serve
// mode since results are read from the API there.
func buildSinks(cfg *config.Config, log zerolog.Logger) []screening.Sink {
	var sinks []screening.Sink

	if !cfg.Serve {
		sinks = append(sinks, export.NewConsoleSink(os.Stdout, cfg.TopN, cfg.EliminatedTopN, log))
	}
	if cfg.ExportXLSX != "" {
		sinks = append(sinks, export.NewXLSXSink(cfg.ExportXLSX, log))
	}
	if cfg.ExportCSV != "" {
		sinks = append(sinks, export.NewCSVSink(cfg.ExportCSV, log))
	}
	if cfg.Clipboard {
		sinks = append(sinks, export.NewClipboardSink(cfg.TopN, log))
	}

	return sinks
}
