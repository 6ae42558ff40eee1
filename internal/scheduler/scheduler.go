package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"logsearch-backend/config"
	"logsearch-backend/internal/service"
)

// NewProbeCron builds a cron that probes the object store on cfg.Probe.Schedule.
// Schedules take an optional leading seconds field.
func NewProbeCron(cfg *config.Config, health service.HealthService) (*cron.Cron, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	schedule := cfg.Probe.Schedule
	_, err := c.AddFunc(schedule, func() {
		health.Probe(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled object store probe")
	return c, nil
}

func NewScheduler(lc fx.Lifecycle, cfg *config.Config, health service.HealthService) (*cron.Cron, error) {
	c, err := NewProbeCron(cfg, health)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			// first status is available before the first tick
			go health.Probe(context.Background())
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})
	return c, nil
}
