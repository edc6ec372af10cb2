// Package handlers provides HTTP handlers for screening results.
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

	"github.com/aristath/screener/internal/modules/export"
	"github.com/aristath/screener/internal/modules/screening"
)

// ReportSource returns the latest completed report, or nil before the first run
type ReportSource interface {
	Latest() *screening.Report
}

// RunTrigger starts a screening run and waits for it
type RunTrigger interface {
	RunOnce(ctx context.Context) (*screening.Report, error)
}

// Handler handles screening HTTP requests
type Handler struct {
	reports ReportSource
	runner  RunTrigger
	log     zerolog.Logger
}

// NewHandler creates a new screening handler
func NewHandler(reports ReportSource, runner RunTrigger, log zerolog.Logger) *Handler {
	return &Handler{
		reports: reports,
		runner:  runner,
		log:     log.With().Str("handler", "screening").Logger(),
	}
}

// KeptRow is the JSON form of a kept record. Non-finite numbers are null.
type KeptRow struct {
	ID                string   `json:"id"`
	Score             *float64 `json:"score"`
	Volatility        *float64 `json:"volatility"`
	InverseVolatility *float64 `json:"inverse_volatility"`
	FastMA            *float64 `json:"fast_ma"`
	SlowMA            *float64 `json:"slow_ma"`
	MedianVolume      *float64 `json:"median_volume"`
}

// EliminatedRow is the JSON form of an eliminated record
type EliminatedRow struct {
	ID         string           `json:"id"`
	Score      *float64         `json:"score"`
	Volatility *float64         `json:"volatility"`
	Reason     screening.Reason `json:"reason"`
	ReasonText string           `json:"reason_text"`
	Detail     string           `json:"detail,omitempty"`
}

// HandleGetKept handles GET /api/screening/kept
func (h *Handler) HandleGetKept(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w)
	if !ok {
		return
	}

	kept := export.RankKept(report.Kept, parseLimit(r, 50))
	rows := make([]KeptRow, len(kept))
	for i, k := range kept {
		rows[i] = KeptRow{
			ID:                k.ID,
			Score:             finite(k.Score),
			Volatility:        finite(k.Volatility),
			InverseVolatility: finite(k.InverseVolatility),
			FastMA:            finite(k.FastMA),
			SlowMA:            finite(k.SlowMA),
			MedianVolume:      finite(k.MedianVolume),
		}
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"run_id": report.RunID,
		"kept":   rows,
		"count":  len(rows),
		"total":  len(report.Kept),
	}))
}

// HandleGetEliminated handles GET /api/screening/eliminated
func (h *Handler) HandleGetEliminated(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w)
	if !ok {
		return
	}

	eliminated := export.RankEliminated(report.Eliminated, parseLimit(r, 10))
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"run_id":     report.RunID,
		"eliminated": eliminatedRows(eliminated),
		"count":      len(eliminated),
		"total":      len(report.Eliminated),
	}))
}

// HandleGetReport handles GET /api/screening/report
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(summary(report)))
}

// HandleRun handles POST /api/screening/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.RunOnce(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Screening run failed")
		status := http.StatusInternalServerError
		if errors.Is(err, screening.ErrConfiguration) {
			status = http.StatusBadRequest
		}
		http.Error(w, "Screening run failed: "+err.Error(), status)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(summary(report)))
}

func (h *Handler) latest(w http.ResponseWriter) (*screening.Report, bool) {
	report := h.reports.Latest()
	if report == nil {
		http.Error(w, "No screening run has completed yet", http.StatusNotFound)
		return nil, false
	}
	return report, true
}

func summary(report *screening.Report) map[string]interface{} {
	counts := report.ReasonCounts()
	reasons := make(map[string]int, len(counts))
	for reason, n := range counts {
		reasons[string(reason)] = n
	}

	return map[string]interface{}{
		"run_id":      report.RunID,
		"started_at":  report.StartedAt.Format(time.RFC3339),
		"duration_ms": report.Duration.Milliseconds(),
		"windows":     report.Windows,
		"rules":       report.Rules,
		"universe":    report.Universe,
		"kept":        len(report.Kept),
		"eliminated":  len(report.Eliminated),
		"reasons":     reasons,
	}
}

func eliminatedRows(records []screening.EliminatedRecord) []EliminatedRow {
	rows := make([]EliminatedRow, len(records))
	for i, e := range records {
		rows[i] = EliminatedRow{
			ID:         e.ID,
			Score:      finite(e.Score),
			Volatility: finite(e.Volatility),
			Reason:     e.Reason,
			ReasonText: e.ReasonText,
			Detail:     e.Detail,
		}
	}
	return rows
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

// finite maps NaN and infinities to nil since JSON cannot represent them
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
