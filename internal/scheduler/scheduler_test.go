package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestSchedulerRunsRefresh(t *testing.T) {
	log, _ := test.NewNullLogger()
	refresher := &countingRefresher{}
	s := NewScheduler(refresher, log, time.Second)

	require.NoError(t, s.ScheduleSnapshotRefresh("* * * * * *"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())
	assert.Eventually(t, func() bool { return refresher.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerKeepsRunningAfterFailedRefresh(t *testing.T) {
	log, _ := test.NewNullLogger()
	refresher := &countingRefresher{err: errors.New("database down")}
	s := NewScheduler(refresher, log, time.Second)

	require.NoError(t, s.ScheduleSnapshotRefresh("* * * * * *"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
	assert.True(t, s.IsRunning())
}

func TestSchedulerLifecycleErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewScheduler(&countingRefresher{}, log, 0)

	assert.Error(t, s.Start(), "no jobs")
	assert.Error(t, s.ScheduleSnapshotRefresh("not a cron"))
	assert.Error(t, s.ScheduleSnapshotRefresh("0 0 6 * *"), "five fields lack seconds")

	require.NoError(t, s.ScheduleSnapshotRefresh("0 0 6 * * *"))
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleSnapshotRefresh("0 0 7 * * *"))

	next := s.NextRun()
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, time.UTC, next.Location())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())
	s.Stop()
}
