// Package scheduler runs keyed jobs on cron schedules with a bounded worker
// pool and a per-job cap on overlapping runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrStopped     = errors.New("scheduler is stopped")
)

// JobFunc is the work a job performs on each firing.
type JobFunc func(ctx context.Context)

type Options struct {
	Location     *time.Location
	Workers      int
	MaxInstances int
	MisfireGrace time.Duration
}

type job struct {
	id        string
	signature string
	entryID   cron.EntryID
	run       JobFunc
	planned   *plannedSchedule
	instances chan struct{}
}

// plannedSchedule remembers the fire times cron asked it for. Cron computes
// the following fire time right after dispatching a run, so both the latest
// and the one before it are kept.
type plannedSchedule struct {
	inner cron.Schedule

	mu         sync.Mutex
	prev, next time.Time
}

func (p *plannedSchedule) Next(t time.Time) time.Time {
	n := p.inner.Next(t)
	p.mu.Lock()
	p.prev, p.next = p.next, n
	p.mu.Unlock()
	return n
}

// due returns the planned fire time a firing observed at now belongs to, or
// the zero time if none has been planned yet.
func (p *plannedSchedule) due(now time.Time) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.next.IsZero() && !p.next.After(now) {
		return p.next
	}
	return p.prev
}

type Scheduler struct {
	cron *cron.Cron
	opts Options
	pool chan struct{}
	now  func() time.Time

	mu       sync.Mutex
	jobs     map[string]*job
	stopped  bool
	inflight sync.WaitGroup
}

func New(opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Workers <= 0 {
		opts.Workers = 20
	}
	if opts.MaxInstances <= 0 {
		opts.MaxInstances = 3
	}
	if opts.MisfireGrace <= 0 {
		opts.MisfireGrace = 5 * time.Minute
	}

	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		opts: opts,
		pool: make(chan struct{}, opts.Workers),
		now:  time.Now,
		jobs: make(map[string]*job),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts new firings and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upsert registers fn under id. An existing job with the same signature is
// left untouched; one with a different signature is rescheduled. It reports
// whether the registration changed.
func (s *Scheduler) Upsert(id, signature string, schedule cron.Schedule, fn JobFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[id]
	if ok && existing.signature == signature {
		return false
	}

	j := &job{
		id:        id,
		signature: signature,
		run:       fn,
		planned:   &plannedSchedule{inner: schedule},
		instances: make(chan struct{}, s.opts.MaxInstances),
	}
	if ok {
		s.cron.Remove(existing.entryID)
		// running instances of the old registration still count
		j.instances = existing.instances
	}
	j.entryID = s.cron.Schedule(j.planned, cron.FuncJob(func() {
		s.fire(j, j.planned.due(s.now()))
	}))
	s.jobs[id] = j
	return true
}

func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.cron.Remove(j.entryID)
	delete(s.jobs, id)
	return nil
}

func (s *Scheduler) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// JobIDs returns the registered job ids in lexical order.
func (s *Scheduler) JobIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextRun returns the next planned firing of id. It is only known once the
// scheduler is running.
func (s *Scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	next := s.cron.Entry(j.entryID).Next
	return next, !next.IsZero()
}

// RunNow fires id immediately, outside its schedule. The run is subject to
// the same instance cap and worker pool as scheduled firings.
func (s *Scheduler) RunNow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.fire(j, s.now())
	}()
	return nil
}

// fire runs j for a firing planned at plannedAt. Lateness counts from the
// planned time, so a firing delivered after a suspend or a clock jump is
// dropped once it exceeds the misfire grace, as is one starved of a worker.
func (s *Scheduler) fire(j *job, plannedAt time.Time) {
	select {
	case j.instances <- struct{}{}:
	default:
		slog.Warn("maximum number of running instances reached, skipping run",
			"job_id", j.id, "max_instances", cap(j.instances))
		return
	}
	defer func() { <-j.instances }()

	if plannedAt.IsZero() {
		plannedAt = s.now()
	}
	s.pool <- struct{}{}
	defer func() { <-s.pool }()

	if late := s.now().Sub(plannedAt); late > s.opts.MisfireGrace {
		slog.Warn("run missed its misfire grace time, skipping", "job_id", j.id, "late_by", late)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job_id", j.id, "panic", r)
		}
	}()

	slog.Debug("running job", "job_id", j.id)
	j.run(context.Background())
}
