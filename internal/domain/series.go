// Package domain provides the market data types shared by loaders and the screener.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSeries is returned when a series breaks its ordering invariants
var ErrInvalidSeries = errors.New("invalid series")

// Bar is a single daily OHLCV observation. Missing values are NaN.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered, timezone-aware price history for one instrument
type Series struct {
	Location *time.Location `json:"-"`
	Bars     []Bar          `json:"bars"`
}

// NewSeries builds a series and localizes every bar timestamp to loc
func NewSeries(loc *time.Location, bars []Bar) Series {
	if loc == nil {
		loc = time.UTC
	}
	for i := range bars {
		bars[i].Time = bars[i].Time.In(loc)
	}
	return Series{Location: loc, Bars: bars}
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Bars)
}

// Closes returns the closing prices in time order
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the traded volumes in time order
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Validate checks that the series is non-empty and its timestamps strictly increase
func (s Series) Validate() error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("%w: no observations", ErrInvalidSeries)
	}
	for i, b := range s.Bars {
		if b.Time.IsZero() {
			return fmt.Errorf("%w: missing timestamp at row %d", ErrInvalidSeries, i)
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: timestamp %s at row %d does not follow %s",
				ErrInvalidSeries, b.Time.Format(time.DateOnly), i, s.Bars[i-1].Time.Format(time.DateOnly))
		}
	}
	return nil
}

// Instrument pairs an identifier (e.g. a 4-letter ticker) with its price history
type Instrument struct {
	ID     string `json:"id"`
	Series Series `json:"series"`
}

// Universe is the ordered input collection of the screener.
// Identifiers are expected to be unique but duplicates are passed through untouched.
type Universe []Instrument

// IDs returns the instrument identifiers in universe order
func (u Universe) IDs() []string {
	ids := make([]string, len(u))
	for i, inst := range u {
		ids[i] = inst.ID
	}
	return ids
}
