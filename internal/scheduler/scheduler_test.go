package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	err   error
	runs  int
	hasDL bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	_, j.hasDL = ctx.Deadline()
	return j.err
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("every tuesday-ish", &countingJob{})
	assert.Error(t, err)
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", &countingJob{}))
	require.NoError(t, s.AddJob("0 30 3 * * *", &countingJob{}))
	assert.Len(t, s.cron.Entries(), 2)

	s.Start()
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{}
	require.NoError(t, s.RunNow(context.Background(), job))
	assert.Equal(t, 1, job.runs)
	assert.True(t, job.hasDL, "jobs run with a deadline")

	failing := &countingJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(context.Background(), failing), "boom")
}

type fakePurger struct {
	err  error
	days int
}

func (p *fakePurger) Purge(_ context.Context, retentionDays int) (int64, error) {
	p.days = retentionDays
	return 3, p.err
}

func TestUsageRetentionJob(t *testing.T) {
	purger := &fakePurger{}
	job := NewUsageRetentionJob(purger, 400, zerolog.Nop())
	assert.Equal(t, "usage_retention", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 400, purger.days)

	purger.err = errors.New("locked")
	assert.Error(t, job.Run(context.Background()))
}

func TestWALCheckpointJob(t *testing.T) {
	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "advisor.db"), Name: "advisor"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(context.Background()))

	job := NewWALCheckpointJob(db, zerolog.Nop())
	assert.Equal(t, "wal_checkpoint", job.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, job.Run(ctx))
}

func TestWALCheckpointJob_NoDatabase(t *testing.T) {
	job := NewWALCheckpointJob(nil, zerolog.Nop())
	assert.NoError(t, job.Run(context.Background()))
}
