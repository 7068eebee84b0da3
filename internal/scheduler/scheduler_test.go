package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hourly = cron.Every(time.Hour)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestRunNow(t *testing.T) {
	s := New(Options{})
	done := make(chan struct{})
	s.Upsert("schedule_1", "sig", hourly, func(ctx context.Context) { close(done) })

	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, done)
}

func TestRunNowUnknownJob(t *testing.T) {
	s := New(Options{})
	assert.ErrorIs(t, s.RunNow("schedule_404"), ErrJobNotFound)
}

func TestUpsertDetectsChanges(t *testing.T) {
	s := New(Options{})
	noop := func(context.Context) {}

	assert.True(t, s.Upsert("schedule_1", "0 9 * * *@UTC", hourly, noop))
	assert.False(t, s.Upsert("schedule_1", "0 9 * * *@UTC", hourly, noop))
	assert.True(t, s.Upsert("schedule_1", "0 10 * * *@UTC", hourly, noop))
	assert.True(t, s.Upsert("schedule_2", "0 9 * * *@UTC", hourly, noop))

	assert.Equal(t, []string{"schedule_1", "schedule_2"}, s.JobIDs())
	assert.Len(t, s.cron.Entries(), 2)
}

func TestRemove(t *testing.T) {
	s := New(Options{})
	s.Upsert("schedule_1", "sig", hourly, func(context.Context) {})

	require.NoError(t, s.Remove("schedule_1"))
	assert.False(t, s.Has("schedule_1"))
	assert.Empty(t, s.cron.Entries())
	assert.ErrorIs(t, s.Remove("schedule_1"), ErrJobNotFound)
}

func TestMaxInstancesSkipsOverlap(t *testing.T) {
	s := New(Options{MaxInstances: 1})
	var runs atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	s.Upsert("schedule_1", "sig", hourly, func(ctx context.Context) {
		runs.Add(1)
		started <- struct{}{}
		<-release
	})

	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, started)
	require.NoError(t, s.RunNow("schedule_1"))
	time.Sleep(50 * time.Millisecond)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(1), runs.Load())
}

func TestMisfireGraceSkipsLateRuns(t *testing.T) {
	s := New(Options{Workers: 1, MisfireGrace: 10 * time.Millisecond})
	var lateRuns atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s.Upsert("schedule_1", "a", hourly, func(ctx context.Context) {
		close(started)
		<-release
	})
	s.Upsert("schedule_2", "b", hourly, func(ctx context.Context) {
		lateRuns.Add(1)
	})

	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, started)
	require.NoError(t, s.RunNow("schedule_2"))
	time.Sleep(60 * time.Millisecond)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(0), lateRuns.Load())
}

// pastSchedule plans its first firing lateBy before the time it is asked
// about, as cron sees after the host was suspended past a fire time.
type pastSchedule struct {
	lateBy time.Duration
	calls  atomic.Int32
}

func (p *pastSchedule) Next(t time.Time) time.Time {
	if p.calls.Add(1) == 1 {
		return t.Add(-p.lateBy)
	}
	return t.Add(24 * time.Hour)
}

func TestMisfireGraceSkipsFiringsPastTheirPlannedTime(t *testing.T) {
	s := New(Options{MisfireGrace: 5 * time.Minute})
	sched := &pastSchedule{lateBy: 2 * time.Hour}
	var runs atomic.Int32

	s.Upsert("schedule_1", "sig", sched, func(ctx context.Context) { runs.Add(1) })
	s.Start()

	// the second Next call happens once cron has dispatched the firing
	require.Eventually(t, func() bool { return sched.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(0), runs.Load())
}

func TestMisfireGraceHonoursLateFiringsWithinGrace(t *testing.T) {
	s := New(Options{MisfireGrace: 5 * time.Minute})
	sched := &pastSchedule{lateBy: time.Minute}
	done := make(chan struct{})

	s.Upsert("schedule_1", "sig", sched, func(ctx context.Context) { close(done) })
	s.Start()
	defer s.Stop(context.Background())

	waitFor(t, done)
}

func TestPlannedScheduleDue(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	p := &plannedSchedule{inner: cron.Every(time.Hour)}

	assert.True(t, p.due(base).IsZero())

	first := p.Next(base)
	assert.Equal(t, base.Add(time.Hour), first)

	// dispatched before cron planned the following run
	assert.Equal(t, first, p.due(first.Add(time.Second)))

	// dispatched after cron already planned the following run
	p.Next(first)
	assert.Equal(t, first, p.due(first.Add(time.Second)))
}

func TestPanicDoesNotKillScheduler(t *testing.T) {
	s := New(Options{})
	done := make(chan struct{})
	var calls atomic.Int32

	s.Upsert("schedule_1", "sig", hourly, func(ctx context.Context) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		close(done)
	})

	require.NoError(t, s.RunNow("schedule_1"))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, done)
}

func TestStopWaitsForRunningJobs(t *testing.T) {
	s := New(Options{})
	started := make(chan struct{})
	var finished atomic.Bool

	s.Upsert("schedule_1", "sig", hourly, func(ctx context.Context) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})
	s.Start()

	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, finished.Load())
	assert.ErrorIs(t, s.RunNow("schedule_1"), ErrStopped)
}

func TestStopHonoursDeadline(t *testing.T) {
	s := New(Options{})
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	s.Upsert("schedule_1", "sig", hourly, func(ctx context.Context) {
		close(started)
		<-release
	})

	require.NoError(t, s.RunNow("schedule_1"))
	waitFor(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}

func TestScheduledFiring(t *testing.T) {
	s := New(Options{})
	fired := make(chan struct{}, 1)

	s.Upsert("refresh_schedules", "every:1s", cron.Every(time.Second), func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not fire")
	}

	next, ok := s.NextRun("refresh_schedules")
	assert.True(t, ok)
	assert.True(t, next.After(time.Now().Add(-time.Second)))
}
