package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate("0 6 * * *"))
	assert.NoError(t, Validate("@every 6h"))
	assert.Error(t, Validate("not a cron"))
	assert.Error(t, Validate("0 0 6 * * *"))
}

func TestStartRejectsBadExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("bogus", nil, false)
	err := s.Start(context.Background(), func(time.Time) {})
	assert.Error(t, err)
}

func TestRunOnStartFiresImmediately(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("0 6 * * *", loc, true)
	require.NoError(t, s.Start(context.Background(), func(at time.Time) {
		fired <- at
	}))
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case at := <-fired:
		assert.Equal(t, loc, at.Location())
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire on start")
	}
}

func TestEveryScheduleFires(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 4)
	s := NewCronScheduler("@every 1s", time.UTC, false)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		fired <- struct{}{}
	}))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStartTwice(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 6 * * *", nil, false)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Error(t, s.Start(context.Background(), func(time.Time) {}))
}

func TestStopWaitsForStartupRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var finished atomic.Bool
	s := NewCronScheduler("0 6 * * *", nil, true)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
	}))

	<-started
	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
}

func TestStopBoundedByContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	s := NewCronScheduler("0 6 * * *", nil, true)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
	}))

	<-started
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}
