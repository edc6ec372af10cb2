package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLinearRegression_ExactExponential(t *testing.T) {
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = 50 * math.Exp(0.01*float64(i))
	}

	fit, err := LogLinearRegression(prices)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, fit.Slope, 1e-12)
	assert.InDelta(t, math.Log(50), fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
}

func TestLogLinearRegression_NoisyTrendHasLowerFit(t *testing.T) {
	prices := []float64{100, 104, 99, 107, 103, 110, 105, 113}

	fit, err := LogLinearRegression(prices)
	require.NoError(t, err)

	assert.Greater(t, fit.Slope, 0.0)
	assert.Greater(t, fit.RSquared, 0.0)
	assert.Less(t, fit.RSquared, 1.0)
}

func TestLogLinearRegression_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		err    error
	}{
		{name: "empty", prices: nil, err: ErrTooFewPoints},
		{name: "single point", prices: []float64{10}, err: ErrTooFewPoints},
		{name: "zero price", prices: []float64{10, 0, 12}, err: ErrNonPositivePrice},
		{name: "negative price", prices: []float64{10, -1, 12}, err: ErrNonPositivePrice},
		{name: "missing price", prices: []float64{10, math.NaN(), 12}, err: ErrNonPositivePrice},
		{name: "infinite price", prices: []float64{10, math.Inf(1), 12}, err: ErrNonPositivePrice},
		{name: "flat line", prices: []float64{10, 10, 10, 10}, err: ErrFlatSeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LogLinearRegression(tt.prices)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
