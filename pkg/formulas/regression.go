package formulas

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewPoints is returned when a regression has fewer than two samples
	ErrTooFewPoints = errors.New("at least two points are required")
	// ErrNonPositivePrice is returned when a price cannot be taken to log space
	ErrNonPositivePrice = errors.New("prices must be positive and finite")
	// ErrFlatSeries is returned when the dependent variable has no variance
	ErrFlatSeries = errors.New("series has no variance")
)

// RegressionResult holds an ordinary least-squares fit of y = Intercept + Slope*x
type RegressionResult struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LogLinearRegression fits ln(price) against the index sequence 0..n-1.
//
// A flat series is rejected rather than reported with a zero slope: its
// coefficient of determination is undefined.
func LogLinearRegression(prices []float64) (RegressionResult, error) {
	if len(prices) < 2 {
		return RegressionResult{}, ErrTooFewPoints
	}

	x := make([]float64, len(prices))
	y := make([]float64, len(prices))
	flat := true
	for i, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			return RegressionResult{}, ErrNonPositivePrice
		}
		x[i] = float64(i)
		y[i] = math.Log(p)
		if y[i] != y[0] {
			flat = false
		}
	}
	if flat {
		return RegressionResult{}, ErrFlatSeries
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)

	return RegressionResult{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  r2,
	}, nil
}
