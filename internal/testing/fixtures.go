package testing

import (
	"math"
	"time"

	"github.com/aristath/screener/internal/domain"
)

// FixtureStart is the first trading day of generated series
var FixtureStart = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

// TrendingSeries returns n daily bars growing at rate per observation with a
// small deterministic wobble, all with the given volume.
func TrendingSeries(n int, rate, volume float64) domain.Series {
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := 1000 * math.Exp(rate*float64(i)) * (1 + 0.01*math.Sin(float64(i)/4))
		bars[i] = domain.Bar{
			Time:   FixtureStart.AddDate(0, 0, i),
			Open:   c * 0.995,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: volume,
		}
	}
	return domain.NewSeries(time.UTC, bars)
}

// SampleUniverse returns a small universe with two keepers and one young listing
func SampleUniverse() domain.Universe {
	return domain.Universe{
		{ID: "BBCA", Series: TrendingSeries(800, 0.0015, 2_000_000)},
		{ID: "GOTO", Series: TrendingSeries(400, 0.0005, 9_000_000)},
		{ID: "TLKM", Series: TrendingSeries(800, 0.0003, 5_000_000)},
	}
}
