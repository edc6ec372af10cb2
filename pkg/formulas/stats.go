// Package formulas holds the numeric building blocks used by the screener.
// Window helpers follow trailing-window semantics: they look at the last
// `period` samples only and return NaN when that window is incomplete or
// contains a missing (NaN) sample.
package formulas

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PctChange converts prices to period-over-period percentage changes.
// The result has the same length as the input; the first element is NaN.
// Changes[i] = Price[i]/Price[i-1] - 1
//
// Missing (NaN) prices are forward-filled from the last known price first, so
// a gap yields a zero change rather than NaN. Prices before the first known
// value stay NaN.
func PctChange(prices []float64) []float64 {
	changes := make([]float64, len(prices))
	prev := math.NaN()
	for i, p := range prices {
		if math.IsNaN(p) {
			p = prev
		}
		if i == 0 {
			changes[i] = math.NaN()
		} else {
			changes[i] = p/prev - 1
		}
		prev = p
	}
	return changes
}

// tail returns the trailing window, or nil when it is incomplete or holds a non-finite sample
func tail(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	window := values[len(values)-period:]
	for _, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return window
}

// RollingStdLast returns the sample standard deviation (ddof=1) of the last period values
func RollingStdLast(values []float64, period int) float64 {
	if period < 2 {
		return math.NaN()
	}
	window := tail(values, period)
	if window == nil {
		return math.NaN()
	}
	return stat.StdDev(window, nil)
}

// MedianLast returns the median of the last period values.
// Even-sized windows average the two middle samples.
func MedianLast(values []float64, period int) float64 {
	window := tail(values, period)
	if window == nil {
		return math.NaN()
	}

	sorted := slices.Clone(window)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CountEqualLast counts how many of the last period values equal target.
// A period longer than the data counts over everything available.
func CountEqualLast(values []float64, period int, target float64) int {
	start := 0
	if period < len(values) {
		start = len(values) - period
	}

	count := 0
	for _, v := range values[start:] {
		if v == target {
			count++
		}
	}
	return count
}

// Last returns the final value of a slice, NaN when empty
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
