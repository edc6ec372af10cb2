package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/aristath/screener/internal/database"
	"github.com/aristath/screener/internal/domain"
	"github.com/rs/zerolog"
)

// HistoryLoader reads daily prices from the history database
type HistoryLoader struct {
	db  *sql.DB
	loc *time.Location
	log zerolog.Logger
}

// NewHistoryLoader creates a history database loader
func NewHistoryLoader(db *sql.DB, loc *time.Location, log zerolog.Logger) *HistoryLoader {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryLoader{
		db:  db,
		loc: loc,
		log: log.With().Str("component", "history_loader").Logger(),
	}
}

// Name returns the loader name
func (h *HistoryLoader) Name() string {
	return "history"
}

// Load returns every instrument in the database ordered by identifier,
// each with its bars oldest first
func (h *HistoryLoader) Load(ctx context.Context) (domain.Universe, error) {
	ids, err := h.instrumentIDs(ctx)
	if err != nil {
		return nil, err
	}

	universe := make(domain.Universe, 0, len(ids))
	for _, id := range ids {
		series, err := h.LoadSeries(ctx, id)
		if err != nil {
			return nil, err
		}
		universe = append(universe, domain.Instrument{ID: id, Series: series})
	}

	h.log.Info().Int("instruments", len(universe)).Msg("Loaded price history")
	return universe, nil
}

func (h *HistoryLoader) instrumentIDs(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT isin FROM daily_prices ORDER BY isin`)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instruments: %w", err)
	}
	return ids, nil
}

// LoadSeries fetches the full daily series for one instrument, oldest first
func (h *HistoryLoader) LoadSeries(ctx context.Context, id string) (domain.Series, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		WHERE isin = ?
		ORDER BY date ASC
	`

	rows, err := h.db.QueryContext(ctx, query, id)
	if err != nil {
		return domain.Series{}, fmt.Errorf("failed to query daily prices for %s: %w", id, err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var dateUnix int64
		var open, high, low, closePrice sql.NullFloat64
		var volume sql.NullInt64

		if err := rows.Scan(&dateUnix, &open, &high, &low, &closePrice, &volume); err != nil {
			return domain.Series{}, fmt.Errorf("failed to scan daily price: %w", err)
		}

		bar := domain.Bar{
			Time:   h.tradingDay(dateUnix),
			Open:   nullFloat(open),
			High:   nullFloat(high),
			Low:    nullFloat(low),
			Close:  nullFloat(closePrice),
			Volume: math.NaN(),
		}
		if volume.Valid {
			bar.Volume = float64(volume.Int64)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return domain.Series{}, fmt.Errorf("error iterating daily prices: %w", err)
	}
	if len(bars) == 0 {
		return domain.Series{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, id)
	}

	return domain.NewSeries(h.loc, bars), nil
}

// tradingDay restores the calendar date written by StoreSeries in the loader's zone
func (h *HistoryLoader) tradingDay(dateUnix int64) time.Time {
	y, m, d := time.Unix(dateUnix, 0).UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.loc)
}

// StoreSeries upserts a series for id in a single transaction
func (h *HistoryLoader) StoreSeries(id string, series domain.Series) error {
	return database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO daily_prices
			(isin, date, open, high, low, close, volume, adjusted_close)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, b := range series.Bars {
			day := time.Date(b.Time.Year(), b.Time.Month(), b.Time.Day(), 0, 0, 0, 0, time.UTC)
			var volume any
			if !math.IsNaN(b.Volume) && !math.IsInf(b.Volume, 0) {
				volume = int64(math.Round(b.Volume))
			}
			_, err := stmt.Exec(id, day.Unix(),
				floatOrNull(b.Open), floatOrNull(b.High), floatOrNull(b.Low),
				floatOrNull(b.Close), volume, floatOrNull(b.Close))
			if err != nil {
				return fmt.Errorf("failed to insert price for %s on %s: %w", id, day.Format(time.DateOnly), err)
			}
		}

		h.log.Debug().Str("instrument", id).Int("bars", len(series.Bars)).Msg("Stored price history")
		return nil
	})
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func floatOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
