package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/domain"
)

// Loader supplies the universe to screen
type Loader interface {
	Load(ctx context.Context) (domain.Universe, error)
	Name() string
}

// Sink receives each completed report
type Sink interface {
	Publish(ctx context.Context, r *Report) error
	Name() string
}

// Runner ties loading, screening and publishing together.
// It is used by the CLI, the scheduler and the HTTP API.
type Runner struct {
	loader   Loader
	screener *Screener
	sinks    []Sink
	store    *ReportStore
	metrics  *RunMetrics
	log      zerolog.Logger

	mu sync.Mutex // one run at a time
}

// NewRunner creates a runner. store and metrics may be nil.
func NewRunner(
	loader Loader,
	screener *Screener,
	sinks []Sink,
	store *ReportStore,
	metrics *RunMetrics,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		loader:   loader,
		screener: screener,
		sinks:    sinks,
		store:    store,
		metrics:  metrics,
		log:      log.With().Str("component", "screening_runner").Logger(),
	}
}

// Name identifies the runner as a scheduled job
func (r *Runner) Name() string {
	return "momentum_screen"
}

// Run executes one screening run and discards the report (scheduler entry point)
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.RunOnce(ctx)
	return err
}

// RunOnce loads the universe, screens it, stores the report and publishes it
// to every sink. A failing sink is logged and does not fail the run.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()

	universe, err := r.loader.Load(ctx)
	if err != nil {
		r.observeFailure(start)
		return nil, fmt.Errorf("failed to load universe from %s: %w", r.loader.Name(), err)
	}
	r.log.Info().
		Str("loader", r.loader.Name()).
		Int("instruments", len(universe)).
		Msg("Universe loaded")

	report, err := r.screener.Run(ctx, universe)
	if err != nil {
		r.observeFailure(start)
		return nil, err
	}

	if r.store != nil {
		r.store.Set(report)
	}
	if r.metrics != nil {
		r.metrics.ObserveSuccess(report, time.Since(start).Seconds())
	}

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, report); err != nil {
			r.log.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to publish report")
			continue
		}
		r.log.Debug().Str("sink", sink.Name()).Msg("Report published")
	}

	return report, nil
}

func (r *Runner) observeFailure(start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveFailure(time.Since(start).Seconds())
	}
}
