package scheduler

import (
	"context"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/rs/zerolog"
)

// walWarnFrames is the WAL size above which a checkpoint that could not
// finish is logged as a warning
const walWarnFrames = 1000

// Checkpointer truncates the write-ahead log
type Checkpointer interface {
	WALCheckpoint(ctx context.Context, mode string) (database.CheckpointResult, error)
	Name() string
}

// WALCheckpointJob checkpoints the SQLite write-ahead log
type WALCheckpointJob struct {
	db   Checkpointer
	log  zerolog.Logger
	mode string
}

// NewWALCheckpointJob creates a new WALCheckpointJob
func NewWALCheckpointJob(db Checkpointer, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:   db,
		mode: "TRUNCATE",
		log:  log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint
func (j *WALCheckpointJob) Run(ctx context.Context) error {
	if j.db == nil {
		return nil
	}

	res, err := j.db.WALCheckpoint(ctx, j.mode)
	if err != nil {
		return err
	}

	if res.Busy && res.LogFrames > walWarnFrames {
		j.log.Warn().
			Str("database", j.db.Name()).
			Int("wal_frames", res.LogFrames).
			Int("checkpointed", res.Checkpointed).
			Msg("WAL file is large and checkpoint was blocked")
		return nil
	}

	j.log.Debug().
		Str("database", j.db.Name()).
		Int("wal_frames", res.LogFrames).
		Int("checkpointed", res.Checkpointed).
		Msg("WAL checkpoint completed")
	return nil
}
