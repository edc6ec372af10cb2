package screening

import (
	"math"

	"github.com/aristath/screener/internal/domain"
	"github.com/aristath/screener/pkg/formulas"
)

const (
	// TradingDaysPerYear annualizes the per-observation regression slope
	TradingDaysPerYear = 252
	// VolatilityMultiplier annualizes the daily std dev. It is sqrt(256), not
	// sqrt(252); the published rankings were produced with 16 and must stay comparable.
	VolatilityMultiplier = 16.0
)

// InstrumentMetrics is computed once per instrument per run and never mutated afterwards
type InstrumentMetrics struct {
	ID                string
	Observations      int
	MomentumScore     float64
	Volatility        float64 // Annualized
	InverseVolatility float64
	FastMA            float64
	SlowMA            float64
	MedianVolume      float64
}

// MomentumScore fits ln(price) against 0..n-1, annualizes the slope over
// TradingDaysPerYear observations in percent and scales it by R².
func MomentumScore(closes []float64) (float64, error) {
	score, err := momentumScore(closes)
	if err != nil {
		return score, &InvalidInputError{Op: "momentum_score", Err: err}
	}
	return score, nil
}

func momentumScore(closes []float64) (float64, error) {
	fit, err := formulas.LogLinearRegression(closes)
	if err != nil {
		return math.NaN(), err
	}

	annualized := (math.Pow(math.Exp(fit.Slope), TradingDaysPerYear) - 1) * 100
	return annualized * fit.RSquared, nil
}

// Volatility returns the std dev of percent changes over the last lookback
// changes. Missing closes are carried forward; NaN is returned when the
// window is incomplete.
func Volatility(closes []float64, lookback int) float64 {
	return formulas.RollingStdLast(formulas.PctChange(closes), lookback)
}

// AnnualizedVolatility scales Volatility by VolatilityMultiplier
func AnnualizedVolatility(closes []float64, lookback int) float64 {
	return Volatility(closes, lookback) * VolatilityMultiplier
}

// MovingAverage returns the mean of the trailing period closes
func MovingAverage(closes []float64, period int) float64 {
	return formulas.SMALast(closes, period)
}

// MedianVolume returns the median of the trailing period volumes
func MedianVolume(volumes []float64, period int) float64 {
	return formulas.MedianLast(volumes, period)
}

// InverseVolatility returns 1/vola. Zero volatility yields +Inf, which is
// passed through as data.
func InverseVolatility(vola float64) float64 {
	return 1 / vola
}

// Calculator computes InstrumentMetrics for a fixed set of windows
type Calculator struct {
	windows Windows
}

// NewCalculator creates a calculator for the given windows
func NewCalculator(windows Windows) *Calculator {
	return &Calculator{windows: windows}
}

// Compute derives all metrics for one instrument.
//
// On error the returned metrics are still populated as far as possible (the
// momentum score is NaN) so eliminated rows can report what was measurable.
func (c *Calculator) Compute(inst domain.Instrument) (InstrumentMetrics, error) {
	series := inst.Series
	closes := series.Closes()
	volumes := series.Volumes()

	vola := AnnualizedVolatility(closes, c.windows.Volatility)
	m := InstrumentMetrics{
		ID:                inst.ID,
		Observations:      series.Len(),
		MomentumScore:     math.NaN(),
		Volatility:        vola,
		InverseVolatility: InverseVolatility(vola),
		FastMA:            MovingAverage(closes, c.windows.FastMA),
		SlowMA:            MovingAverage(closes, c.windows.SlowMA),
		MedianVolume:      MedianVolume(volumes, c.windows.Volatility),
	}

	if err := series.Validate(); err != nil {
		return m, &InvalidInputError{ID: inst.ID, Op: "series", Err: err}
	}

	score, err := momentumScore(trailing(closes, c.windows.Momentum))
	if err != nil {
		return m, &InvalidInputError{ID: inst.ID, Op: "momentum_score", Err: err}
	}
	m.MomentumScore = score

	return m, nil
}

// trailing returns at most the last n values
func trailing(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}
