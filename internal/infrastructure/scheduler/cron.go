package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"EnterpriseRiskNews/internal/ports"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CronScheduler triggers a job on a standard 5-field cron expression.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool

	mu      sync.Mutex
	cron    *cron.Cron
	startup sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for spec evaluated in location.
// runOnStart fires the job once right after Start.
func NewCronScheduler(spec string, location *time.Location, runOnStart bool) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, runOnStart: runOnStart}
}

// Validate reports whether the expression parses.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("cron expression %q: %w", spec, err)
	}
	return nil
}

// Start registers job and begins ticking.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return errors.New("scheduler already started")
	}

	schedule, err := parser.Parse(c.spec)
	if err != nil {
		return fmt.Errorf("cron expression %q: %w", c.spec, err)
	}

	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	cr.Schedule(schedule, cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(c.location))
	}))
	cr.Start()
	c.cron = cr

	if c.runOnStart {
		c.startup.Go(func() { job(time.Now().In(c.location)) })
	}
	return nil
}

// Stop halts the cron loop and waits for running jobs, including the
// start-up run, or ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		<-cr.Stop().Done()
		c.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
