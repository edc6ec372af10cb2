package screening

import (
	"math"
	"time"

	"github.com/aristath/screener/internal/domain"
)

var fixtureStart = time.Date(2020, 1, 2, 0, 0, 0, 0, time.FixedZone("WIB", 7*60*60))

// makeSeries builds n daily bars using the given close and volume generators
func makeSeries(n int, closeAt func(i int) float64, volumeAt func(i int) float64) domain.Series {
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := closeAt(i)
		bars[i] = domain.Bar{
			Time:   fixtureStart.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volumeAt(i),
		}
	}
	return domain.NewSeries(fixtureStart.Location(), bars)
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func exponential(start, rate float64) func(int) float64 {
	return func(i int) float64 { return start * math.Exp(rate*float64(i)) }
}

func noisyTrend(start, rate, noise float64) func(int) float64 {
	return func(i int) float64 {
		return start * math.Exp(rate*float64(i)) * (1 + noise*math.Sin(float64(i)/3))
	}
}

// withZeroVolumeAt returns base volume except at the given offsets from the end
func withZeroVolumeAt(n int, base float64, fromEnd ...int) func(int) float64 {
	zero := make(map[int]bool, len(fromEnd))
	for _, k := range fromEnd {
		zero[n-k] = true
	}
	return func(i int) float64 {
		if zero[i] {
			return 0
		}
		return base
	}
}

func instrument(id string, s domain.Series) domain.Instrument {
	return domain.Instrument{ID: id, Series: s}
}

// fiveInstrumentUniverse is the canonical end-to-end universe: three instruments
// failing one rule each and two clean ones, the weaker trend listed first.
func fiveInstrumentUniverse() domain.Universe {
	return domain.Universe{
		instrument("YONG", makeSeries(300, exponential(100, 0.001), constant(500000))),
		instrument("THIN", makeSeries(800, exponential(100, 0.001), constant(50000))),
		instrument("WEAK", makeSeries(800, noisyTrend(100, 0.0005, 0.02), constant(300000))),
		instrument("SUSP", makeSeries(800, exponential(100, 0.001), withZeroVolumeAt(800, 200000, 90, 60, 40))),
		instrument("STRG", makeSeries(800, noisyTrend(100, 0.002, 0.005), constant(300000))),
	}
}
