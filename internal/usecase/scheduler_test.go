package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsJobOnTrigger(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	var runs atomic.Int32
	s := NewScheduler(driver, func(context.Context, time.Time) error {
		runs.Add(1)
		return errors.New("output unavailable")
	}, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())
	assert.Equal(t, int32(2), runs.Load())

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerSkipsOverlappingTrigger(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	release := make(chan struct{})
	entered := make(chan struct{})
	var runs atomic.Int32
	s := NewScheduler(driver, func(context.Context, time.Time) error {
		runs.Add(1)
		close(entered)
		<-release
		return nil
	}, nil)
	require.NoError(t, s.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		driver.job(time.Now())
		close(done)
	}()
	<-entered

	driver.job(time.Now())
	close(release)
	<-done

	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
