package screening

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/screener/internal/domain"
	"github.com/aristath/screener/pkg/formulas"
)

func TestMomentumScore_DoublingEveryYear(t *testing.T) {
	closes := make([]float64, 96)
	for i := range closes {
		closes[i] = 100 * math.Pow(2, float64(i)/TradingDaysPerYear)
	}

	score, err := MomentumScore(closes)
	require.NoError(t, err)

	// exp(slope)^252 = 2 and R² = 1
	assert.InDelta(t, 100.0, score, 1e-6)
}

func TestMomentumScore_DecliningTrendIsNegative(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100 * math.Exp(-0.003*float64(i))
	}

	score, err := MomentumScore(closes)
	require.NoError(t, err)

	expected := (math.Pow(math.Exp(-0.003), TradingDaysPerYear) - 1) * 100
	assert.InDelta(t, expected, score, 1e-6)
	assert.Less(t, score, 0.0)
}

func TestMomentumScore_NoiseLowersScore(t *testing.T) {
	clean := make([]float64, 96)
	noisy := make([]float64, 96)
	for i := range clean {
		clean[i] = exponential(100, 0.002)(i)
		noisy[i] = noisyTrend(100, 0.002, 0.05)(i)
	}

	cleanScore, err := MomentumScore(clean)
	require.NoError(t, err)
	noisyScore, err := MomentumScore(noisy)
	require.NoError(t, err)

	assert.Less(t, noisyScore, cleanScore)
}

func TestMomentumScore_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		cause  error
	}{
		{name: "constant prices", closes: []float64{5, 5, 5, 5}, cause: formulas.ErrFlatSeries},
		{name: "single observation", closes: []float64{5}, cause: formulas.ErrTooFewPoints},
		{name: "zero price", closes: []float64{5, 0, 6}, cause: formulas.ErrNonPositivePrice},
		{name: "missing price", closes: []float64{5, math.NaN(), 6}, cause: formulas.ErrNonPositivePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := MomentumScore(tt.closes)

			assert.True(t, math.IsNaN(score))
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tt.cause)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "momentum_score", invalid.Op)
		})
	}
}

func TestVolatility_ZeroChangesGiveInfiniteInverse(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}

	vola := AnnualizedVolatility(closes, 24)
	assert.Equal(t, 0.0, vola)
	assert.True(t, math.IsInf(InverseVolatility(vola), 1))
}

func TestVolatility_CarriesMissingCloseForward(t *testing.T) {
	closes := []float64{100, 102, math.NaN(), 101, 103}
	filled := []float64{100, 102, 102, 101, 103}

	vola := Volatility(closes, 4)
	assert.False(t, math.IsNaN(vola))
	assert.InDelta(t, Volatility(filled, 4), vola, 1e-15)
}

func TestVolatility_UsesSixteenMultiplier(t *testing.T) {
	closes := []float64{100, 101, 99, 102, 100, 103}

	raw := Volatility(closes, 4)
	assert.InDelta(t, raw*16, AnnualizedVolatility(closes, 4), 1e-15)
	assert.Greater(t, raw, 0.0)
}

func TestVolatility_IncompleteWindowIsNaN(t *testing.T) {
	closes := []float64{100, 101, 102}

	// 3 prices give only 2 changes
	assert.True(t, math.IsNaN(Volatility(closes, 3)))
	assert.False(t, math.IsNaN(Volatility(closes, 2)))
}

func TestMovingAverageAndMedianVolume(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	volumes := []float64{900, 100, 300, 200, 0, 400}

	assert.InDelta(t, 5.0, MovingAverage(closes, 3), 1e-12)
	assert.InDelta(t, 3.5, MovingAverage(closes, 6), 1e-12)
	assert.Equal(t, 250.0, MedianVolume(volumes, 4))
}

func TestCalculator_Compute(t *testing.T) {
	windows := Windows{Momentum: 96, Volatility: 24, FastMA: 32, SlowMA: 128}
	inst := instrument("BBCA", makeSeries(800, noisyTrend(100, 0.001, 0.01), constant(250000)))
	closes := inst.Series.Closes()

	m, err := NewCalculator(windows).Compute(inst)
	require.NoError(t, err)

	expectedScore, err := MomentumScore(closes[len(closes)-96:])
	require.NoError(t, err)

	assert.Equal(t, "BBCA", m.ID)
	assert.Equal(t, 800, m.Observations)
	assert.InDelta(t, expectedScore, m.MomentumScore, 1e-12)
	assert.InDelta(t, AnnualizedVolatility(closes, 24), m.Volatility, 1e-15)
	assert.InDelta(t, 1/m.Volatility, m.InverseVolatility, 1e-9)
	assert.InDelta(t, formulas.Mean(closes[len(closes)-32:]), m.FastMA, 1e-9)
	assert.InDelta(t, formulas.Mean(closes[len(closes)-128:]), m.SlowMA, 1e-9)
	assert.Equal(t, 250000.0, m.MedianVolume)
}

func TestCalculator_Compute_ShortSeriesUsesWholeHistory(t *testing.T) {
	windows := Windows{Momentum: 96, Volatility: 24, FastMA: 32, SlowMA: 128}
	inst := instrument("NEWB", makeSeries(40, exponential(10, 0.01), constant(1000)))

	m, err := NewCalculator(windows).Compute(inst)
	require.NoError(t, err)

	expected, err := MomentumScore(inst.Series.Closes())
	require.NoError(t, err)
	assert.InDelta(t, expected, m.MomentumScore, 1e-12)
	assert.True(t, math.IsNaN(m.SlowMA), "slow window longer than the series")
}

func TestCalculator_Compute_InvalidSeries(t *testing.T) {
	windows := DefaultWindows()

	t.Run("flat prices", func(t *testing.T) {
		inst := instrument("FLAT", makeSeries(200, constant(10), constant(1000)))

		m, err := NewCalculator(windows).Compute(inst)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.True(t, math.IsNaN(m.MomentumScore))
		assert.Equal(t, 0.0, m.Volatility, "volatility is still reported")

		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "FLAT", invalid.ID)
	})

	t.Run("duplicate timestamps", func(t *testing.T) {
		s := makeSeries(200, exponential(10, 0.01), constant(1000))
		s.Bars[100].Time = s.Bars[99].Time

		_, err := NewCalculator(windows).Compute(instrument("DUPE", s))

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, domain.ErrInvalidSeries)
	})
}
