package di

import (
	"fmt"

	"github.com/aristath/portfolio-advisor/internal/scheduler"
	"github.com/rs/zerolog"
)

// Job schedules
const (
	UsageRetentionSchedule = "0 30 3 * * *"
	WALCheckpointSchedule  = "@hourly"
)

// RegisterJobs adds the maintenance jobs to sched
func RegisterJobs(container *Container, sched *scheduler.Scheduler, log zerolog.Logger) error {
	retention := scheduler.NewUsageRetentionJob(container.UsageTracker, container.Config.RetentionDays, log)
	if err := sched.AddJob(UsageRetentionSchedule, retention); err != nil {
		return fmt.Errorf("failed to register usage retention job: %w", err)
	}

	// Postgres manages its own WAL.
	if container.DB != nil {
		checkpoint := scheduler.NewWALCheckpointJob(container.DB, log)
		if err := sched.AddJob(WALCheckpointSchedule, checkpoint); err != nil {
			return fmt.Errorf("failed to register WAL checkpoint job: %w", err)
		}
	}
	return nil
}
