package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/internal/scheduler"
	"github.com/maheshrc27/marketing-agent/internal/trigger"
	"github.com/robfig/cron/v3"
)

// RefreshJobID is the id the reconciliation job registers itself under.
const RefreshJobID = "refresh_schedules"

type Executor interface {
	Execute(ctx context.Context, scheduleID int64) error
}

// JobScheduler is the part of *scheduler.Scheduler the reconciler drives.
type JobScheduler interface {
	Upsert(id, signature string, schedule cron.Schedule, fn scheduler.JobFunc) bool
	Remove(id string) error
	JobIDs() []string
}

// ReconcileJob keeps the scheduler's job set equal to the active schedules
// stored in the database.
type ReconcileJob struct {
	sr       repository.ScheduleRepository
	sch      JobScheduler
	ex       Executor
	location *time.Location
	now      func() time.Time
}

func NewReconcileJob(sr repository.ScheduleRepository, sch JobScheduler, ex Executor, location *time.Location) *ReconcileJob {
	return &ReconcileJob{
		sr:       sr,
		sch:      sch,
		ex:       ex,
		location: location,
		now:      time.Now,
	}
}

// Register schedules the job itself at a fixed interval.
func (j *ReconcileJob) Register(interval time.Duration) {
	j.sch.Upsert(RefreshJobID, "every:"+interval.String(), cron.Every(interval), j.Reconcile)
}

type desiredJob struct {
	schedule *models.Schedule
	trigger  *trigger.Trigger
}

func (j *ReconcileJob) Reconcile(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("schedule reconciliation panicked", "panic", r)
		}
	}()

	schedules, err := j.sr.ListActive(ctx)
	if err != nil {
		slog.Error("unable to load active schedules", "error", err)
		return
	}

	desired := make(map[string]desiredJob, len(schedules))
	for _, s := range schedules {
		t, err := j.parse(s)
		if err != nil {
			slog.Error("skipping schedule with invalid trigger", "schedule_id", s.ID, "cron", s.CronExpression, "timezone", s.Timezone, "error", err)
			continue
		}
		desired[models.ScheduleJobID(s.ID)] = desiredJob{schedule: s, trigger: t}
	}

	for _, id := range j.sch.JobIDs() {
		if id == RefreshJobID {
			continue
		}
		if _, ok := desired[id]; ok {
			continue
		}
		if err := j.sch.Remove(id); err != nil {
			slog.Warn("unable to remove job", "job_id", id, "error", err)
			continue
		}
		slog.Info("removed job", "job_id", id)
	}

	for id, d := range desired {
		j.apply(ctx, id, d)
	}
}

func (j *ReconcileJob) parse(s *models.Schedule) (*trigger.Trigger, error) {
	loc, err := trigger.LoadLocation(s.Timezone, j.location)
	if err != nil {
		return nil, err
	}
	return trigger.Parse(s.CronExpression, loc)
}

func (j *ReconcileJob) apply(ctx context.Context, id string, d desiredJob) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduling job panicked", "job_id", id, "panic", r)
		}
	}()

	scheduleID := d.schedule.ID
	changed := j.sch.Upsert(id, d.trigger.Signature(), d.trigger, func(ctx context.Context) {
		if err := j.ex.Execute(ctx, scheduleID); err != nil {
			slog.Error("scheduled execution failed", "schedule_id", scheduleID, "error", err)
		}
	})
	if changed {
		slog.Info("scheduled job", "job_id", id, "cron", d.trigger.Expression(), "timezone", d.trigger.Location().String())
	}

	next, ok := d.trigger.NextFireAfter(j.now())
	if !ok {
		slog.Warn("trigger never fires", "job_id", id, "cron", d.trigger.Expression())
		return
	}
	if d.schedule.NextRun != nil && d.schedule.NextRun.Equal(next) {
		return
	}
	if err := j.sr.UpdateNextRun(ctx, scheduleID, next); err != nil {
		slog.Error("unable to persist next run", "schedule_id", scheduleID, "error", err)
	}
}
