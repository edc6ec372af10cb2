package screening

import "runtime"

// Windows are the lookback lengths, in observations, used by the metric calculator
type Windows struct {
	Momentum   int `json:"momentum"`   // Closes used for the regression score
	Volatility int `json:"volatility"` // Percent changes in the std dev window; also the median volume window
	FastMA     int `json:"fast_ma"`    // Fast simple moving average period
	SlowMA     int `json:"slow_ma"`    // Slow simple moving average period
}

// DefaultWindows returns the windows the screener has historically been run with
func DefaultWindows() Windows {
	return Windows{
		Momentum:   96,
		Volatility: 24,
		FastMA:     32,
		SlowMA:     128,
	}
}

// Validate rejects windows that are non-positive, too short for their statistic,
// or longer than the history a kept instrument is guaranteed to have.
func (w Windows) Validate(rules Rules) error {
	fields := []struct {
		name  string
		value int
		min   int
	}{
		{"momentum_window", w.Momentum, 2},
		{"volatility_window", w.Volatility, 2},
		{"fast_ma_period", w.FastMA, 1},
		{"slow_ma_period", w.SlowMA, 1},
	}

	for _, f := range fields {
		if f.value <= 0 {
			return &ConfigurationError{Field: f.name, Value: float64(f.value), Reason: "must be positive"}
		}
		if f.value < f.min {
			return &ConfigurationError{Field: f.name, Value: float64(f.value), Reason: "needs at least two samples"}
		}
		if rules.MinHistory > 0 && f.value > rules.MinHistory {
			return &ConfigurationError{
				Field:  f.name,
				Value:  float64(f.value),
				Reason: "exceeds the minimum history required to keep an instrument",
			}
		}
	}
	return nil
}

// Rules are the elimination thresholds
type Rules struct {
	MinHistory        int     `json:"min_history"`          // Observations required (~3 years of trading days)
	MinMedianVolume   float64 `json:"min_median_volume"`    // Median traded volume floor
	MaxZeroVolumeDays int     `json:"max_zero_volume_days"` // Zero-volume days tolerated in the momentum window
}

// DefaultRules returns the standard elimination thresholds
func DefaultRules() Rules {
	return Rules{
		MinHistory:        756,
		MinMedianVolume:   100000,
		MaxZeroVolumeDays: 1,
	}
}

// Validate rejects negative thresholds
func (r Rules) Validate() error {
	if r.MinHistory < 0 {
		return &ConfigurationError{Field: "min_history", Value: float64(r.MinHistory), Reason: "must not be negative"}
	}
	if r.MinMedianVolume < 0 {
		return &ConfigurationError{Field: "min_median_volume", Value: r.MinMedianVolume, Reason: "must not be negative"}
	}
	if r.MaxZeroVolumeDays < 0 {
		return &ConfigurationError{Field: "max_zero_volume_days", Value: float64(r.MaxZeroVolumeDays), Reason: "must not be negative"}
	}
	return nil
}

// Config holds everything a Screener needs
type Config struct {
	Windows  Windows
	Rules    Rules
	Workers  int  // Parallel instruments; <= 0 uses one per CPU
	FailFast bool // Abort the run on the first invalid instrument instead of eliminating it
}

// DefaultConfig returns default windows and rules with one worker per CPU
func DefaultConfig() Config {
	return Config{
		Windows: DefaultWindows(),
		Rules:   DefaultRules(),
		Workers: runtime.NumCPU(),
	}
}

// Validate checks rules first, then windows against those rules
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	return c.Windows.Validate(c.Rules)
}
