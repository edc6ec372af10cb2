// Package marketdata loads instrument price histories into a screening universe.
package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/screener/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultPattern matches 4-letter ticker files such as BBCA.csv
const DefaultPattern = "????.csv"

var (
	// ErrMissingColumn is returned when a CSV file lacks a required column
	ErrMissingColumn = errors.New("missing column")
	// ErrUnknownInstrument is returned when no price history exists for an identifier
	ErrUnknownInstrument = errors.New("unknown instrument")
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"02/01/2006",
}

// CSVLoader reads one CSV file per instrument from a directory
type CSVLoader struct {
	dir     string
	pattern string
	loc     *time.Location
	log     zerolog.Logger
}

// NewCSVLoader creates a loader for dir. An empty pattern falls back to DefaultPattern.
func NewCSVLoader(dir, pattern string, loc *time.Location, log zerolog.Logger) *CSVLoader {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CSVLoader{
		dir:     dir,
		pattern: pattern,
		loc:     loc,
		log:     log.With().Str("component", "csv_loader").Logger(),
	}
}

// Name returns the loader name
func (l *CSVLoader) Name() string {
	return "csv"
}

// Load reads every matching file in name order. Files that cannot be parsed are
// skipped with a warning so one corrupt download does not block the screen.
func (l *CSVLoader) Load(ctx context.Context) (domain.Universe, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", l.pattern, err)
	}
	sort.Strings(paths)

	universe := make(domain.Universe, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		series, err := l.readFile(path)
		if err != nil {
			l.log.Warn().Err(err).Str("instrument", id).Str("path", path).Msg("Skipping unreadable price file")
			continue
		}
		universe = append(universe, domain.Instrument{ID: id, Series: series})
	}

	l.log.Info().
		Int("files", len(paths)).
		Int("instruments", len(universe)).
		Str("dir", l.dir).
		Msg("Loaded price files")

	return universe, nil
}

// LoadSeries reads the file for a single instrument
func (l *CSVLoader) LoadSeries(_ context.Context, id string) (domain.Series, error) {
	if id == "" || id != filepath.Base(id) || strings.ContainsAny(id, `/\.`) {
		return domain.Series{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, id)
	}

	series, err := l.readFile(filepath.Join(l.dir, id+".csv"))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Series{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, id)
	}
	return series, err
}

func (l *CSVLoader) readFile(path string) (domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Series{}, fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()

	return ReadSeries(f, l.loc)
}

// ReadSeries parses a CSV price table. The first column holds the date; the
// remaining columns are matched by header name, case-insensitively. Close and
// Volume are required, other columns are optional. Empty cells become NaN.
// Rows are returned in file order.
func ReadSeries(r io.Reader, loc *time.Location) (domain.Series, error) {
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.Series{}, fmt.Errorf("failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		if i == 0 {
			continue
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"close", "volume"} {
		if _, ok := cols[required]; !ok {
			return domain.Series{}, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Series{}, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		ts, err := parseDate(record[0], loc)
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}

		bar := domain.Bar{Time: ts}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		}
		for _, fld := range fields {
			idx, ok := cols[fld.name]
			if !ok || idx >= len(record) {
				*fld.dst = math.NaN()
				continue
			}
			v, err := parseFloat(record[idx])
			if err != nil {
				return domain.Series{}, fmt.Errorf("line %d column %s: %w", line, fld.name, err)
			}
			*fld.dst = v
		}
		bars = append(bars, bar)
	}

	return domain.NewSeries(loc, bars), nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(raw, 64)
}
