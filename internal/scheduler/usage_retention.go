package scheduler

import (
	"context"

	"github.com/rs/zerolog"
)

// UsagePurger deletes usage rows older than a retention window
type UsagePurger interface {
	Purge(ctx context.Context, retentionDays int) (int64, error)
}

// UsageRetentionJob removes expired language model usage logs
type UsageRetentionJob struct {
	purger        UsagePurger
	log           zerolog.Logger
	retentionDays int
}

// NewUsageRetentionJob creates a new UsageRetentionJob
func NewUsageRetentionJob(purger UsagePurger, retentionDays int, log zerolog.Logger) *UsageRetentionJob {
	return &UsageRetentionJob{
		purger:        purger,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "usage_retention").Logger(),
	}
}

// Name returns the job name
func (j *UsageRetentionJob) Name() string {
	return "usage_retention"
}

// Run executes the purge
func (j *UsageRetentionJob) Run(ctx context.Context) error {
	n, err := j.purger.Purge(ctx, j.retentionDays)
	if err != nil {
		return err
	}
	j.log.Info().Int64("deleted", n).Int("retention_days", j.retentionDays).Msg("Usage retention completed")
	return nil
}
