package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/modules/screening"
)

// CSVSink writes kept.csv and eliminated.csv into a directory
type CSVSink struct {
	dir string
	log zerolog.Logger
}

// NewCSVSink creates a CSV sink for dir
func NewCSVSink(dir string, log zerolog.Logger) *CSVSink {
	return &CSVSink{
		dir: dir,
		log: log.With().Str("component", "csv_sink").Logger(),
	}
}

// Name returns the sink name
func (c *CSVSink) Name() string {
	return "csv"
}

// Publish writes both ranked tables
func (c *CSVSink) Publish(_ context.Context, r *screening.Report) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	kept := RankKept(r.Kept, 0)
	keptRows := make([][]string, len(kept))
	for i, k := range kept {
		keptRows[i] = keptRow(k)
	}
	if err := writeCSV(filepath.Join(c.dir, "kept.csv"), keptHeader, keptRows); err != nil {
		return err
	}

	eliminated := RankEliminated(r.Eliminated, 0)
	eliminatedRows := make([][]string, len(eliminated))
	for i, e := range eliminated {
		eliminatedRows[i] = eliminatedRow(e)
	}
	if err := writeCSV(filepath.Join(c.dir, "eliminated.csv"), eliminatedHeader, eliminatedRows); err != nil {
		return err
	}

	c.log.Info().Str("dir", c.dir).Str("run_id", r.RunID).Msg("Wrote screening CSV files")
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Sync()
}
