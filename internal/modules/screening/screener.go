package screening

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/screener/internal/domain"
)

// Report is the outcome of one screening run
type Report struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration"`
	Windows    Windows            `json:"windows"`
	Rules      Rules              `json:"rules"`
	Universe   int                `json:"universe"`
	Kept       []KeptRecord       `json:"kept"`
	Eliminated []EliminatedRecord `json:"eliminated"`
}

// ReasonCounts tallies eliminated rows per reason
func (r *Report) ReasonCounts() map[Reason]int {
	counts := make(map[Reason]int, len(Reasons()))
	for _, e := range r.Eliminated {
		counts[e.Reason]++
	}
	return counts
}

// Screener runs the metric calculator and eliminator over a universe
type Screener struct {
	cfg        Config
	calculator *Calculator
	eliminator *Eliminator
	log        zerolog.Logger
	now        func() time.Time
}

// NewScreener validates cfg and creates a screener. Configuration problems are
// returned as *ConfigurationError before any data is read.
func NewScreener(cfg Config, log zerolog.Logger) (*Screener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &Screener{
		cfg:        cfg,
		calculator: NewCalculator(cfg.Windows),
		eliminator: NewEliminator(cfg.Rules, cfg.Windows.Momentum),
		log:        log.With().Str("component", "screener").Logger(),
		now:        time.Now,
	}, nil
}

// Screen is the single-call entry point: validate windows, screen the universe
// with default rules and return the two tables.
func Screen(ctx context.Context, universe domain.Universe, windows Windows, log zerolog.Logger) (Results, error) {
	cfg := DefaultConfig()
	cfg.Windows = windows

	s, err := NewScreener(cfg, log)
	if err != nil {
		return Results{}, err
	}
	report, err := s.Run(ctx, universe)
	if err != nil {
		return Results{}, err
	}
	return Results{Kept: report.Kept, Eliminated: report.Eliminated}, nil
}

// Config returns the validated configuration
func (s *Screener) Config() Config {
	return s.cfg
}

// Run screens every instrument. Instruments are processed in parallel and the
// tables are assembled by input index, so output order always equals input
// order. A bad series is eliminated with ReasonInvalidData; in fail-fast mode
// the first one (by input order) aborts the run instead.
func (s *Screener) Run(ctx context.Context, universe domain.Universe) (*Report, error) {
	started := s.now()
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()

	log.Info().
		Int("instruments", len(universe)).
		Int("workers", s.cfg.Workers).
		Interface("windows", s.cfg.Windows).
		Msg("Starting screening run")

	verdicts := make([]Verdict, len(universe))
	failures := make([]error, len(universe))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, inst := range universe {
		if gctx.Err() != nil {
			break
		}
		i, inst := i, inst
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i], failures[i] = s.screenOne(inst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("screening run %s: %w", runID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("screening run %s: %w", runID, err)
	}

	if s.cfg.FailFast {
		for _, err := range failures {
			if err != nil {
				return nil, fmt.Errorf("screening run %s: %w", runID, err)
			}
		}
	}

	assembler := NewAssembler(len(universe))
	for _, v := range verdicts {
		assembler.Add(v)
	}
	results := assembler.Results()

	report := &Report{
		RunID:      runID,
		StartedAt:  started,
		Duration:   s.now().Sub(started),
		Windows:    s.cfg.Windows,
		Rules:      s.cfg.Rules,
		Universe:   len(universe),
		Kept:       results.Kept,
		Eliminated: results.Eliminated,
	}

	log.Info().
		Int("kept", len(report.Kept)).
		Int("eliminated", len(report.Eliminated)).
		Dur("duration", report.Duration).
		Msg("Screening run completed")

	return report, nil
}

// screenOne computes and evaluates a single instrument. A panic inside the
// numeric code is contained to this instrument.
func (s *Screener) screenOne(inst domain.Instrument) (v Verdict, metricsErr error) {
	defer func() {
		if r := recover(); r != nil {
			metricsErr = &InvalidInputError{ID: inst.ID, Op: "screen", Err: fmt.Errorf("panic: %v", r)}
			v = s.eliminator.Evaluate(inst, InstrumentMetrics{
				ID:                inst.ID,
				Observations:      inst.Series.Len(),
				MomentumScore:     math.NaN(),
				Volatility:        math.NaN(),
				InverseVolatility: math.NaN(),
				FastMA:            math.NaN(),
				SlowMA:            math.NaN(),
				MedianVolume:      math.NaN(),
			}, metricsErr)
			s.log.Error().Str("id", inst.ID).Interface("panic", r).Msg("Recovered from panic while screening")
		}
	}()

	m, err := s.calculator.Compute(inst)
	if err != nil {
		s.log.Debug().Err(err).Str("id", inst.ID).Msg("Metrics unavailable")
	}

	v = s.eliminator.Evaluate(inst, m, err)
	if !v.Kept {
		s.log.Debug().
			Str("id", inst.ID).
			Str("reason", string(v.Reason)).
			Msg("Instrument eliminated")
	}
	return v, err
}
