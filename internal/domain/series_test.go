package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewSeries_LocalizesTimestamps(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	s := NewSeries(jakarta, []Bar{{Time: day(0), Close: 1}})

	assert.Equal(t, jakarta, s.Location)
	assert.Equal(t, jakarta, s.Bars[0].Time.Location())
	assert.True(t, s.Bars[0].Time.Equal(day(0)))
}

func TestNewSeries_DefaultsToUTC(t *testing.T) {
	s := NewSeries(nil, nil)
	assert.Equal(t, time.UTC, s.Location)
}

func TestSeries_Accessors(t *testing.T) {
	s := NewSeries(time.UTC, []Bar{
		{Time: day(0), Close: 10, Volume: 100},
		{Time: day(1), Close: 11, Volume: 0},
	})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.Equal(t, []float64{100, 0}, s.Volumes())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 11.0, last.Close)

	_, ok = Series{}.Last()
	assert.False(t, ok)
}

func TestSeries_Validate(t *testing.T) {
	tests := []struct {
		name  string
		bars  []Bar
		valid bool
	}{
		{name: "increasing", bars: []Bar{{Time: day(0)}, {Time: day(1)}, {Time: day(3)}}, valid: true},
		{name: "empty", bars: nil},
		{name: "duplicate timestamp", bars: []Bar{{Time: day(0)}, {Time: day(0)}}},
		{name: "decreasing", bars: []Bar{{Time: day(2)}, {Time: day(1)}}},
		{name: "missing timestamp", bars: []Bar{{Time: day(0)}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Series{Bars: tt.bars}.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidSeries)
		})
	}
}

func TestUniverse_IDsKeepOrderAndDuplicates(t *testing.T) {
	u := Universe{{ID: "BBRI"}, {ID: "ASII"}, {ID: "BBRI"}}
	assert.Equal(t, []string{"BBRI", "ASII", "BBRI"}, u.IDs())
}
