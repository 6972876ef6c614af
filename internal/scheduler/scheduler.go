// Package scheduler runs the periodic cache retention purge. The purge is
// also reachable on demand via DELETE /api/cache/clear; this job only keeps
// the table from growing between manual purges.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Purger is implemented by the service layer.
type Purger interface {
	PurgeCache(ctx context.Context) (int, error)
}

// Scheduler periodically purges cache entries past the retention window.
type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a purge Scheduler. interval <= 0 disables it.
func New(purger Purger, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic purge and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("cache purge scheduler disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := s.purger.PurgeCache(ctx)
		if err != nil {
			s.logger.Warn("scheduled cache purge failed", zap.Error(err))
			return
		}
		s.logger.Info("scheduled cache purge complete", zap.Int("removed", removed))
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("cache purge scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
