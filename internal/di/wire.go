package di

import (
	"context"
	"fmt"

	"github.com/aristath/portfolio-advisor/internal/config"
	"github.com/aristath/portfolio-advisor/internal/modules/advisor"
	"github.com/aristath/portfolio-advisor/internal/scheduler"
	"github.com/rs/zerolog"
)

// Options overrides parts of the wiring, mostly for tests
type Options struct {
	// Model replaces the OpenAI client when set
	Model advisor.LanguageModel
}

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize database and stores
// 2. Initialize services
// 3. Register jobs
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Container, *scheduler.Scheduler, error) {
	container, err := InitializeDatabases(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeServices(container, opts.Model, log)

	sched := scheduler.New(log)
	if err := RegisterJobs(container, sched, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, sched, nil
}
