// Package handlers provides HTTP handlers for per-instrument price history and metrics.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/domain"
	"github.com/aristath/screener/internal/modules/marketdata"
	"github.com/aristath/screener/internal/modules/screening"
	"github.com/aristath/screener/pkg/formulas"
)

// SeriesSource loads the price history of one instrument
type SeriesSource interface {
	LoadSeries(ctx context.Context, id string) (domain.Series, error)
}

// Handler handles historical data HTTP requests
type Handler struct {
	source     SeriesSource
	calculator *screening.Calculator
	log        zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(
	source SeriesSource,
	calculator *screening.Calculator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		source:     source,
		calculator: calculator,
		log:        log.With().Str("handler", "historical").Logger(),
	}
}

// DailyPrice represents a daily OHLCV price point. Missing values are null.
type DailyPrice struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// DailyReturn is the percent change of close from the previous day
type DailyReturn struct {
	Date   string   `json:"date"`
	Return *float64 `json:"return"`
}

// HandleGetDailyPrices handles GET /api/historical/prices/daily/{id}
func (h *Handler) HandleGetDailyPrices(w http.ResponseWriter, r *http.Request, id string) {
	series, ok := h.load(w, r, id)
	if !ok {
		return
	}

	bars := newestFirst(series.Bars, parseLimit(r, 100))
	prices := make([]DailyPrice, len(bars))
	for i, b := range bars {
		prices[i] = toDailyPrice(b)
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"id":     id,
		"prices": prices,
		"count":  len(prices),
	}))
}

// HandleGetLatestPrice handles GET /api/historical/prices/latest/{id}
func (h *Handler) HandleGetLatestPrice(w http.ResponseWriter, r *http.Request, id string) {
	series, ok := h.load(w, r, id)
	if !ok {
		return
	}

	var latest interface{}
	if b, found := series.Last(); found {
		latest = toDailyPrice(b)
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"id":    id,
		"price": latest,
	}))
}

// HandleGetDailyReturns handles GET /api/historical/returns/daily/{id}
func (h *Handler) HandleGetDailyReturns(w http.ResponseWriter, r *http.Request, id string) {
	series, ok := h.load(w, r, id)
	if !ok {
		return
	}

	changes := formulas.PctChange(series.Closes())
	limit := parseLimit(r, 100)

	// First change is always NaN, so skip it and keep the newest limit values
	returns := make([]DailyReturn, 0, min(limit, len(changes)))
	for i := len(changes) - 1; i >= 1 && len(returns) < limit; i-- {
		returns = append(returns, DailyReturn{
			Date:   series.Bars[i].Time.Format(time.DateOnly),
			Return: finite(changes[i]),
		})
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"id":      id,
		"returns": returns,
		"count":   len(returns),
	}))
}

// HandleGetMetrics handles GET /api/historical/metrics/{id}
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request, id string) {
	series, ok := h.load(w, r, id)
	if !ok {
		return
	}

	m, err := h.calculator.Compute(domain.Instrument{ID: id, Series: series})
	data := map[string]interface{}{
		"id":                 id,
		"observations":       m.Observations,
		"momentum_score":     finite(m.MomentumScore),
		"volatility":         finite(m.Volatility),
		"inverse_volatility": finite(m.InverseVolatility),
		"fast_ma":            finite(m.FastMA),
		"slow_ma":            finite(m.SlowMA),
		"median_volume":      finite(m.MedianVolume),
	}
	if err != nil {
		data["error"] = err.Error()
	}

	h.writeJSON(w, http.StatusOK, envelope(data))
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, id string) (domain.Series, bool) {
	series, err := h.source.LoadSeries(r.Context(), id)
	if errors.Is(err, marketdata.ErrUnknownInstrument) {
		http.Error(w, "Unknown instrument", http.StatusNotFound)
		return domain.Series{}, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("instrument", id).Msg("Failed to load price history")
		http.Error(w, "Failed to load price history", http.StatusInternalServerError)
		return domain.Series{}, false
	}
	return series, true
}

func newestFirst(bars []domain.Bar, limit int) []domain.Bar {
	n := min(limit, len(bars))
	out := make([]domain.Bar, n)
	for i := 0; i < n; i++ {
		out[i] = bars[len(bars)-1-i]
	}
	return out
}

func toDailyPrice(b domain.Bar) DailyPrice {
	return DailyPrice{
		Date:   b.Time.Format(time.DateOnly),
		Open:   finite(b.Open),
		High:   finite(b.High),
		Low:    finite(b.Low),
		Close:  finite(b.Close),
		Volume: finite(b.Volume),
	}
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func parseLimit(r *http.Request, def int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
