package di

import (
	"fmt"

	"github.com/aristath/screener/internal/config"
	"github.com/aristath/screener/internal/scheduler"
	"github.com/rs/zerolog"
)

// historyCheckSchedule runs the integrity check nightly
const historyCheckSchedule = "0 0 3 * * *"

// RegisterJobs registers background jobs with the scheduler
func RegisterJobs(container *Container, sched *scheduler.Scheduler, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	if cfg.Schedule != "" {
		if err := sched.AddJob(cfg.Schedule, container.Runner); err != nil {
			return fmt.Errorf("failed to register %s job: %w", container.Runner.Name(), err)
		}
	}

	if container.HistoryDB != nil {
		job := scheduler.NewCheckHistoryDatabaseJob(container.HistoryDB, log)
		if err := sched.AddJob(historyCheckSchedule, job); err != nil {
			return fmt.Errorf("failed to register %s job: %w", job.Name(), err)
		}
	}

	log.Info().Int("jobs", sched.Entries()).Msg("Jobs registered")
	return nil
}
