package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/aristath/screener/internal/modules/screening"
)

const (
	keptSheet       = "Kept"
	eliminatedSheet = "Eliminated"
)

// XLSXSink writes both tables to a workbook, one sheet each, ranked by score
type XLSXSink struct {
	path string
	log  zerolog.Logger
}

// NewXLSXSink creates a workbook sink writing to path
func NewXLSXSink(path string, log zerolog.Logger) *XLSXSink {
	return &XLSXSink{
		path: path,
		log:  log.With().Str("component", "xlsx_sink").Logger(),
	}
}

// Name returns the sink name
func (x *XLSXSink) Name() string {
	return "xlsx"
}

// Publish writes the workbook, replacing any previous file
func (x *XLSXSink) Publish(_ context.Context, r *screening.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", keptSheet); err != nil {
		return fmt.Errorf("failed to name kept sheet: %w", err)
	}
	if _, err := f.NewSheet(eliminatedSheet); err != nil {
		return fmt.Errorf("failed to create eliminated sheet: %w", err)
	}

	kept := RankKept(r.Kept, 0)
	keptRows := make([][]any, len(kept))
	for i, k := range kept {
		keptRows[i] = []any{k.ID, cellValue(k.Score), cellValue(k.Volatility), cellValue(k.InverseVolatility),
			cellValue(k.FastMA), cellValue(k.SlowMA), cellValue(k.MedianVolume)}
	}
	if err := writeSheet(f, keptSheet, keptHeader, keptRows); err != nil {
		return err
	}

	eliminated := RankEliminated(r.Eliminated, 0)
	eliminatedRows := make([][]any, len(eliminated))
	for i, e := range eliminated {
		eliminatedRows[i] = []any{e.ID, cellValue(e.Score), cellValue(e.Volatility), string(e.Reason), e.ReasonText, e.Detail}
	}
	if err := writeSheet(f, eliminatedSheet, eliminatedHeader, eliminatedRows); err != nil {
		return err
	}

	if dir := filepath.Dir(x.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", x.path, err)
	}

	x.log.Info().Str("path", x.path).Str("run_id", r.RunID).Msg("Wrote screening workbook")
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellValue leaves non-finite numbers as text since spreadsheets cannot store them
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatFloat(v, 0)
	}
	return v
}
