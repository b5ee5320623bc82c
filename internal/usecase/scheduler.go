package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"EnterpriseRiskNews/internal/ports"
)

// Job is one scheduled execution.
type Job func(ctx context.Context, trigger time.Time) error

// Scheduler wires the cron-like driver with a run job.
type Scheduler struct {
	driver ports.Scheduler
	job    Job
	logger *slog.Logger
	mu     sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, job: job, logger: logger}
}

// Start registers the job with the provided scheduler. A trigger that fires
// while the previous run is still going is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.job == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.fire(ctx, trigger)
	})
}

func (s *Scheduler) fire(ctx context.Context, trigger time.Time) {
	if !s.mu.TryLock() {
		s.logger.Warn("previous run still in progress, trigger skipped", "trigger", trigger)
		return
	}
	defer s.mu.Unlock()

	if err := s.job(ctx, trigger); err != nil {
		s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
