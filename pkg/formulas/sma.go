package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMALast returns the simple moving average of the most recent complete window.
//
// talib.Sma carries a running sum across the whole input, so a single missing
// sample would poison every later value. Only the trailing window is handed
// to it, which keeps NaN handling local to that window.
func SMALast(closes []float64, length int) float64 {
	window := tail(closes, length)
	if window == nil {
		return math.NaN()
	}
	if length == 1 {
		return window[0]
	}

	sma := talib.Sma(window, length)
	return Last(sma)
}
