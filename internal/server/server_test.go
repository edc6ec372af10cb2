package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/screener/internal/domain"
	historicalhandlers "github.com/aristath/screener/internal/modules/historical/handlers"
	"github.com/aristath/screener/internal/modules/marketdata"
	"github.com/aristath/screener/internal/modules/screening"
	screeninghandlers "github.com/aristath/screener/internal/modules/screening/handlers"
	testingpkg "github.com/aristath/screener/internal/testing"
)

type staticLoader struct {
	universe domain.Universe
}

func (l *staticLoader) Load(_ context.Context) (domain.Universe, error) {
	return l.universe, nil
}

func (l *staticLoader) Name() string {
	return "static"
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zerolog.Nop()

	screener, err := screening.NewScreener(screening.DefaultConfig(), log)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	store := screening.NewReportStore()
	runner := screening.NewRunner(
		&staticLoader{universe: testingpkg.SampleUniverse()},
		screener,
		nil,
		store,
		screening.NewRunMetrics(registry),
		log,
	)

	historyDB := testingpkg.NewTestDB(t, "history")
	prices := marketdata.NewHistoryLoader(historyDB.Conn(), nil, log)
	require.NoError(t, prices.StoreSeries("BBCA", testingpkg.TrendingSeries(10, 0.001, 1000)))

	return New(Config{
		Log:        log,
		Port:       0,
		DevMode:    true,
		Screening:  screeninghandlers.NewHandler(store, runner, log),
		Historical: historicalhandlers.NewHandler(prices, screening.NewCalculator(screening.DefaultWindows()), log),
		Registry:   registry,
		HistoryDB:  historyDB,
	})
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "ok", response["history_db"])
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestServer_RunThenQuery(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/screening/kept", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/screening/run", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/screening/kept", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Kept []struct {
				ID string `json:"id"`
			} `json:"kept"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data.Kept, 2)
	assert.Equal(t, "BBCA", response.Data.Kept[0].ID)
	assert.Equal(t, "TLKM", response.Data.Kept[1].ID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "screener_runs_total")
	assert.Contains(t, w.Body.String(), "screener_kept_instruments 2")
}

func TestServer_HistoricalRoutes(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/historical/prices/daily/BBCA?limit=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/historical/prices/daily/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
