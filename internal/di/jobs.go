package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/config"
	"github.com/aristath/hedgeflow/internal/scheduler"
)

// RegisterJobs creates the scheduler and registers background jobs.
// An empty monitor schedule leaves the scheduler without jobs.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	container.Scheduler = scheduler.New(log)

	instances := &JobInstances{
		RegimeMonitor: scheduler.NewRegimeMonitorJob(container.MarketProvider, container.RegimeHistory, log),
	}

	if cfg.RegimeMonitorSchedule == "" {
		log.Info().Msg("Regime monitor disabled")
		return instances, nil
	}

	if err := container.Scheduler.AddJob(cfg.RegimeMonitorSchedule, instances.RegimeMonitor); err != nil {
		return nil, fmt.Errorf("failed to register regime monitor: %w", err)
	}

	return instances, nil
}
