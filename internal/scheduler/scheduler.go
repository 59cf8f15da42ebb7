package scheduler

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
)

// Scheduler runs the periodic maintenance jobs: the expired hold sweep on a fixed
// interval and the daily volume reset on business day rollover. Both jobs are
// idempotent, so an overlap with the manual maintenance endpoints is harmless.
type Scheduler struct {
	holdSvc       portssvc.HoldSvcFacade
	limitSvc      portssvc.LimitSvcFacade
	sweepInterval time.Duration
	logger        *slog.Logger
}

// New creates a scheduler. sweepInterval must be positive.
func New(holdSvc portssvc.HoldSvcFacade, limitSvc portssvc.LimitSvcFacade, sweepInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		holdSvc:       holdSvc,
		limitSvc:      limitSvc,
		sweepInterval: sweepInterval,
		logger:        logger,
	}
}

// Run blocks until ctx is cancelled. Job failures are logged and retried on the
// next tick; they never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	lastResetDay := time.Now().UTC().Truncate(24 * time.Hour)
	s.logger.Info("Scheduler started", slog.Duration("sweep_interval", s.sweepInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping")
			return
		case now := <-ticker.C:
			now = now.UTC()

			result, err := s.holdSvc.SweepExpired(ctx, now)
			if err != nil {
				s.logger.Error("Expired hold sweep failed", slog.String("error", err.Error()))
			} else if result.SweptCount > 0 {
				s.logger.Info("Expired hold sweep completed",
					slog.Int("swept", result.SweptCount),
					slog.String("total_released", result.TotalReleased.String()))
			}

			if day := now.Truncate(24 * time.Hour); day.After(lastResetDay) {
				if err := s.limitSvc.ResetDaily(ctx); err != nil {
					s.logger.Error("Daily volume reset failed", slog.String("error", err.Error()))
					// Leave lastResetDay unchanged so the reset is retried next tick.
					continue
				}
				lastResetDay = day
			}
		}
	}
}
