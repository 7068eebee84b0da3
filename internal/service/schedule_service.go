package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/internal/scheduler"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/maheshrc27/marketing-agent/internal/trigger"
)

const nextRunLayout = "02.01.2006 15:04"

var cronExamples = []transfer.CronExample{
	{Expression: "0 9 * * *", Description: "Täglich um 9:00 Uhr"},
	{Expression: "0 9 * * 1-5", Description: "Werktags um 9:00 Uhr"},
	{Expression: "0 9,18 * * *", Description: "Täglich um 9:00 und 18:00 Uhr"},
	{Expression: "*/30 * * * *", Description: "Alle 30 Minuten"},
	{Expression: "0 12 * * 1", Description: "Jeden Montag um 12:00 Uhr"},
	{Expression: "0 9 1 * *", Description: "Am 1. jeden Monats um 9:00 Uhr"},
}

// JobRunner fires a registered job out of schedule.
type JobRunner interface {
	RunNow(id string) error
}

type ScheduleService interface {
	Create(ctx context.Context, userID int64, in *transfer.ScheduleInput) (*models.Schedule, string, error)
	Update(ctx context.Context, userID, scheduleID int64, in *transfer.ScheduleInput) (*models.Schedule, error)
	List(ctx context.Context, userID int64) ([]*models.Schedule, error)
	Toggle(ctx context.Context, userID, scheduleID int64) (*models.Schedule, error)
	Remove(ctx context.Context, userID, scheduleID int64) error
	RunNow(ctx context.Context, userID, scheduleID int64) error
	ValidateCron(expression, timezone string) *transfer.CronValidation
	CronExamples() []transfer.CronExample
}

type scheduleService struct {
	secretKey       string
	defaultTimezone string
	sr              repository.ScheduleRepository
	ur              repository.UserRepository
	runner          JobRunner
	now             func() time.Time
}

func NewScheduleService(cfg config.Config, sr repository.ScheduleRepository, ur repository.UserRepository, runner JobRunner) ScheduleService {
	return &scheduleService{
		secretKey:       cfg.SecretKey,
		defaultTimezone: cfg.Scheduler.Timezone,
		sr:              sr,
		ur:              ur,
		runner:          runner,
		now:             time.Now,
	}
}

// validate normalizes in into a schedule row. An empty timezone becomes the
// configured default.
func (s *scheduleService) validate(in *transfer.ScheduleInput) (*models.Schedule, error) {
	template := strings.TrimSpace(in.ContentTemplate)
	if template == "" {
		return nil, fmt.Errorf("%w: content template is required", ErrInvalidInput)
	}
	channel, err := publisher.ParseChannel(in.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	contentType, err := publisher.ParseContentType(in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	loc, err := trigger.LoadLocation(timezone, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	t, err := trigger.Parse(in.CronExpression, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &models.Schedule{
		CronExpression:  t.Expression(),
		Timezone:        timezone,
		Channel:         string(channel),
		ContentTemplate: template,
		GenerateImage:   in.GenerateImage,
		GenerateVoice:   in.GenerateVoice,
		ContentType:     string(contentType),
		Active:          in.Active == nil || *in.Active,
	}, nil
}

// owned loads a schedule belonging to userID.
func (s *scheduleService) owned(ctx context.Context, userID, scheduleID int64) (*models.Schedule, error) {
	ok, err := s.sr.CheckByUserID(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", scheduleID, ErrNotFound)
	}
	schedule, err := s.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule %d: %w", scheduleID, ErrNotFound)
	}
	return schedule, nil
}

// Create stores a schedule. The returned warning is non-empty when the
// target channel has no credentials yet.
func (s *scheduleService) Create(ctx context.Context, userID int64, in *transfer.ScheduleInput) (*models.Schedule, string, error) {
	schedule, err := s.validate(in)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}
	schedule.UserID = userID

	id, err := s.sr.Create(ctx, schedule)
	if err != nil {
		return nil, "", err
	}
	schedule.ID = id

	warning := ""
	user, exists, err := s.ur.GetByID(ctx, userID)
	if err == nil && exists {
		ch := publisher.Channel(schedule.Channel)
		if !channelCredentials(user, s.secretKey).Configured(ch) {
			warning = fmt.Sprintf("Warnung: %s ist nicht konfiguriert. Content wird generiert, aber nicht automatisch veröffentlicht.", ch.Title())
		}
	}
	return schedule, warning, nil
}

func (s *scheduleService) Update(ctx context.Context, userID, scheduleID int64, in *transfer.ScheduleInput) (*models.Schedule, error) {
	existing, err := s.owned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.validate(in)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if in.Active == nil {
		schedule.Active = existing.Active
	}
	schedule.ID = existing.ID
	schedule.UserID = existing.UserID
	schedule.LastRun = existing.LastRun
	schedule.NextRun = existing.NextRun
	schedule.CreatedAt = existing.CreatedAt

	if err := s.sr.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	schedules, err := s.sr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []*models.Schedule{}
	}
	return schedules, nil
}

func (s *scheduleService) Toggle(ctx context.Context, userID, scheduleID int64) (*models.Schedule, error) {
	schedule, err := s.owned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	schedule.Active = !schedule.Active
	if err := s.sr.SetActive(ctx, schedule.ID, schedule.Active); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) Remove(ctx context.Context, userID, scheduleID int64) error {
	if _, err := s.owned(ctx, userID, scheduleID); err != nil {
		return err
	}
	return s.sr.Remove(ctx, scheduleID)
}

// RunNow fires a registered schedule immediately. It refuses when the
// channel has no credentials.
func (s *scheduleService) RunNow(ctx context.Context, userID, scheduleID int64) error {
	schedule, err := s.owned(ctx, userID, scheduleID)
	if err != nil {
		return err
	}
	if !schedule.Active {
		return fmt.Errorf("%w: schedule %d is inactive", ErrInvalidInput, scheduleID)
	}

	user, exists, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	ch := publisher.Channel(schedule.Channel)
	if !channelCredentials(user, s.secretKey).Configured(ch) {
		return fmt.Errorf("%w: %s", publisher.ErrNotConfigured, ch.Title())
	}

	if err := s.runner.RunNow(models.ScheduleJobID(scheduleID)); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			return fmt.Errorf("schedule %d: %w", scheduleID, ErrNotScheduled)
		}
		return err
	}
	return nil
}

// ValidateCron parses expression and previews the next three runs.
func (s *scheduleService) ValidateCron(expression, timezone string) *transfer.CronValidation {
	if strings.TrimSpace(timezone) == "" {
		timezone = s.defaultTimezone
	}
	loc, err := trigger.LoadLocation(timezone, time.UTC)
	if err != nil {
		return &transfer.CronValidation{Error: err.Error()}
	}
	t, err := trigger.Parse(expression, loc)
	if err != nil {
		return &transfer.CronValidation{Error: err.Error()}
	}

	v := &transfer.CronValidation{Valid: true}
	for _, next := range t.NextN(s.now().In(loc), 3) {
		v.NextRuns = append(v.NextRuns, next.Format(nextRunLayout))
	}
	return v
}

func (s *scheduleService) CronExamples() []transfer.CronExample {
	return append([]transfer.CronExample(nil), cronExamples...)
}
