package conversation

import (
	"context"
	"fmt"

	"dv-relay/internal/observability"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// Sweeper evicts idle sessions on a cron schedule.
type Sweeper struct {
	store    *Store
	logger   *observability.Logger
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a sweeper. An empty schedule uses DefaultSweepSchedule.
func NewSweeper(store *Store, logger *observability.Logger, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep and starts the scheduler. It does not block.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx = observability.WithFields(ctx, observability.Field{Key: "schedule", Value: s.schedule})

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.store.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.logger.Info(ctx, "Starting session sweeper")
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
