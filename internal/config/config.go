// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone database for minimal containers

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/aristath/screener/internal/modules/screening"
)

// Price sources
const (
	SourceCSV     = "csv"
	SourceHistory = "history"
)

// Config holds application configuration
type Config struct {
	Source     string `env:"SCREENER_SOURCE" validate:"oneof=csv history"`
	CSVDir     string `env:"SCREENER_CSV_DIR" validate:"required_if=Source csv"`
	CSVPattern string `env:"SCREENER_CSV_PATTERN"`
	HistoryDB  string `env:"SCREENER_HISTORY_DB" validate:"required_if=Source history"`
	Timezone   string `env:"SCREENER_TIMEZONE" validate:"required"`

	MomentumWindow    int     `env:"SCREENER_MOMENTUM_WINDOW"`
	VolatilityWindow  int     `env:"SCREENER_VOLATILITY_WINDOW"`
	FastMA            int     `env:"SCREENER_FAST_MA"`
	SlowMA            int     `env:"SCREENER_SLOW_MA"`
	MinHistory        int     `env:"SCREENER_MIN_HISTORY"`
	MinMedianVolume   float64 `env:"SCREENER_MIN_MEDIAN_VOLUME"`
	MaxZeroVolumeDays int     `env:"SCREENER_MAX_ZERO_VOLUME_DAYS"`
	Workers           int     `env:"SCREENER_WORKERS" validate:"gte=0"`
	FailFast          bool    `env:"SCREENER_FAIL_FAST"`

	TopN           int    `env:"SCREENER_TOP_N" validate:"gte=0"`
	EliminatedTopN int    `env:"SCREENER_ELIMINATED_TOP_N" validate:"gte=0"`
	ExportXLSX     string `env:"SCREENER_EXPORT_XLSX"`
	ExportCSV      string `env:"SCREENER_EXPORT_CSV"`
	Clipboard      bool   `env:"SCREENER_CLIPBOARD"`

	Serve    bool   `env:"SCREENER_SERVE"`
	Schedule string `env:"SCREENER_SCHEDULE"` // cron spec with seconds, only used in serve mode
	Port     int    `env:"GO_PORT" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	DevMode  bool   `env:"DEV_MODE"`

	Location *time.Location `env:"-" validate:"-"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	windows := screening.DefaultWindows()
	rules := screening.DefaultRules()

	cfg := &Config{
		Source:     getEnv("SCREENER_SOURCE", SourceCSV),
		CSVDir:     getEnv("SCREENER_CSV_DIR", "data"),
		CSVPattern: getEnv("SCREENER_CSV_PATTERN", "????.csv"),
		HistoryDB:  getEnv("SCREENER_HISTORY_DB", ""),
		Timezone:   getEnv("SCREENER_TIMEZONE", "Asia/Jakarta"),

		MomentumWindow:    getEnvAsInt("SCREENER_MOMENTUM_WINDOW", windows.Momentum),
		VolatilityWindow:  getEnvAsInt("SCREENER_VOLATILITY_WINDOW", windows.Volatility),
		FastMA:            getEnvAsInt("SCREENER_FAST_MA", windows.FastMA),
		SlowMA:            getEnvAsInt("SCREENER_SLOW_MA", windows.SlowMA),
		MinHistory:        getEnvAsInt("SCREENER_MIN_HISTORY", rules.MinHistory),
		MinMedianVolume:   getEnvAsFloat("SCREENER_MIN_MEDIAN_VOLUME", rules.MinMedianVolume),
		MaxZeroVolumeDays: getEnvAsInt("SCREENER_MAX_ZERO_VOLUME_DAYS", rules.MaxZeroVolumeDays),
		Workers:           getEnvAsInt("SCREENER_WORKERS", runtime.NumCPU()),
		FailFast:          getEnvAsBool("SCREENER_FAIL_FAST", false),

		TopN:           getEnvAsInt("SCREENER_TOP_N", 50),
		EliminatedTopN: getEnvAsInt("SCREENER_ELIMINATED_TOP_N", 10),
		ExportXLSX:     getEnv("SCREENER_EXPORT_XLSX", ""),
		ExportCSV:      getEnv("SCREENER_EXPORT_CSV", ""),
		Clipboard:      getEnvAsBool("SCREENER_CLIPBOARD", false),

		Serve:    getEnvAsBool("SCREENER_SERVE", false),
		Schedule: getEnv("SCREENER_SCHEDULE", ""),
		Port:     getEnvAsInt("GO_PORT", 8001),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field shapes and resolves the timezone. Window and rule
// ranges are checked by the screener itself.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid SCREENER_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	return nil
}

// ScreeningConfig converts the environment settings into screener configuration
func (c *Config) ScreeningConfig() screening.Config {
	return screening.Config{
		Windows: screening.Windows{
			Momentum:   c.MomentumWindow,
			Volatility: c.VolatilityWindow,
			FastMA:     c.FastMA,
			SlowMA:     c.SlowMA,
		},
		Rules: screening.Rules{
			MinHistory:        c.MinHistory,
			MinMedianVolume:   c.MinMedianVolume,
			MaxZeroVolumeDays: c.MaxZeroVolumeDays,
		},
		Workers:  c.Workers,
		FailFast: c.FailFast,
	}
}

// newValidator reports fields by their environment variable name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("env")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
