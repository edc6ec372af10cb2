package marketdata

import (
	"context"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/aristath/screener/internal/domain"
	testingpkg "github.com/aristath/screener/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLoader_RoundTrip(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")
	loader := NewHistoryLoader(db.Conn(), time.UTC, zerolog.Nop())
	assert.Equal(t, "history", loader.Name())

	bbca := testingpkg.TrendingSeries(10, 0.001, 1_000_000)
	bbca.Bars[3].Volume = math.NaN()
	require.NoError(t, loader.StoreSeries("BBCA", bbca))
	require.NoError(t, loader.StoreSeries("ASII", testingpkg.TrendingSeries(5, 0.002, 500)))

	universe, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"ASII", "BBCA"}, universe.IDs())

	got := universe[1].Series
	require.Equal(t, 10, got.Len())
	assert.NoError(t, got.Validate())
	assert.InDelta(t, bbca.Bars[0].Close, got.Bars[0].Close, 1e-9)
	assert.Equal(t, bbca.Bars[0].Time.Unix(), got.Bars[0].Time.Unix())
	assert.True(t, math.IsNaN(got.Bars[3].Volume))
	assert.Equal(t, 1_000_000.0, got.Bars[4].Volume)
}

func TestHistoryLoader_RoundTripKeepsLocalTradingDate(t *testing.T) {
	for _, zone := range []string{"America/New_York", "Asia/Jakarta", "Pacific/Auckland"} {
		t.Run(zone, func(t *testing.T) {
			loc, err := time.LoadLocation(zone)
			require.NoError(t, err)

			db := testingpkg.NewTestDB(t, "history")
			loader := NewHistoryLoader(db.Conn(), loc, zerolog.Nop())

			series := domain.NewSeries(loc, []domain.Bar{
				{Time: time.Date(2024, 3, 4, 0, 0, 0, 0, loc), Close: 10, Volume: 100},
				{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, loc), Close: 11, Volume: 200},
			})
			require.NoError(t, loader.StoreSeries("SPY", series))

			got, err := loader.LoadSeries(context.Background(), "SPY")
			require.NoError(t, err)
			require.Equal(t, 2, got.Len())
			for i, bar := range got.Bars {
				assert.Equal(t, series.Bars[i].Time.Format(time.DateOnly), bar.Time.Format(time.DateOnly))
				assert.True(t, series.Bars[i].Time.Equal(bar.Time), "bar %d should be local midnight", i)
				assert.Equal(t, loc, bar.Time.Location())
			}
		})
	}
}

func TestHistoryLoader_StoreRoundsFractionalVolume(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")
	loader := NewHistoryLoader(db.Conn(), nil, zerolog.Nop())

	series := testingpkg.TrendingSeries(3, 0.001, 100)
	series.Bars[0].Volume = 1500.6
	series.Bars[1].Volume = 1500.4
	require.NoError(t, loader.StoreSeries("UNVR", series))

	got, err := loader.LoadSeries(context.Background(), "UNVR")
	require.NoError(t, err)
	assert.Equal(t, 1501.0, got.Bars[0].Volume)
	assert.Equal(t, 1500.0, got.Bars[1].Volume)
}

func TestHistoryLoader_StoreIsIdempotent(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")
	loader := NewHistoryLoader(db.Conn(), nil, zerolog.Nop())

	series := testingpkg.TrendingSeries(4, 0.001, 100)
	require.NoError(t, loader.StoreSeries("TLKM", series))
	require.NoError(t, loader.StoreSeries("TLKM", series))

	got, err := loader.LoadSeries(context.Background(), "TLKM")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
}

func TestHistoryLoader_UnknownInstrument(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")

	_, err := NewHistoryLoader(db.Conn(), nil, zerolog.Nop()).LoadSeries(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestHistoryLoader_Empty(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")

	universe, err := NewHistoryLoader(db.Conn(), nil, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, universe)
}
