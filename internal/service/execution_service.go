package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/generator"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/repository"
)

// ExecutionService runs one firing of a schedule: generate, record, publish.
type ExecutionService interface {
	Execute(ctx context.Context, scheduleID int64) error
}

type executionService struct {
	sr repository.ScheduleRepository
	ur repository.UserRepository
	p  *pipeline
}

func NewExecutionService(
	cfg config.Config,
	sr repository.ScheduleRepository,
	ur repository.UserRepository,
	cr repository.ContentRepository,
	gen generator.Generator,
	pubs PublisherResolver,
	media MediaStore) ExecutionService {
	return &executionService{
		sr: sr,
		ur: ur,
		p:  newPipeline(cfg, cr, gen, pubs, media),
	}
}

// Execute returns an error only when the firing was aborted. Publication
// failures are stored on the content row instead.
func (s *executionService) Execute(ctx context.Context, scheduleID int64) error {
	schedule, err := s.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("loading schedule %d: %w", scheduleID, err)
	}
	if schedule == nil || !schedule.Active {
		slog.Warn("schedule not found or inactive, skipping", "schedule_id", scheduleID)
		return nil
	}

	user, exists, err := s.ur.GetByID(ctx, schedule.UserID)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", schedule.UserID, err)
	}
	if !exists || !user.IsActive {
		slog.Warn("schedule owner missing or inactive, skipping", "schedule_id", scheduleID, "user_id", schedule.UserID)
		return nil
	}

	apiKey, err := s.p.apiKey(user)
	if err != nil {
		return fmt.Errorf("schedule %d: %w", scheduleID, err)
	}

	channel, err := publisher.ParseChannel(schedule.Channel)
	if err != nil {
		return fmt.Errorf("schedule %d: %w", scheduleID, err)
	}
	contentType, err := publisher.ParseContentType(schedule.ContentType)
	if err != nil {
		slog.Warn("unknown content type, using post", "schedule_id", scheduleID, "content_type", schedule.ContentType)
		contentType = publisher.Post
	}

	slog.Info("executing schedule", "schedule_id", scheduleID, "user_id", user.ID, "channel", channel)

	id := schedule.ID
	content, media, err := s.p.generate(ctx, user, apiKey, generation{
		scheduleID:  &id,
		topic:       schedule.ContentTemplate,
		channel:     channel,
		contentType: contentType,
		withImage:   schedule.GenerateImage,
		withVoice:   schedule.GenerateVoice,
	})
	if err != nil {
		return fmt.Errorf("schedule %d: %w", scheduleID, err)
	}

	if err := s.p.publish(ctx, user, content, contentType, media); err != nil {
		return fmt.Errorf("schedule %d: %w", scheduleID, err)
	}

	if err := s.sr.UpdateLastRun(ctx, schedule.ID, s.p.now()); err != nil {
		return fmt.Errorf("schedule %d: updating last run: %w", scheduleID, err)
	}

	slog.Info("schedule executed", "schedule_id", scheduleID, "content_id", content.ID, "published", content.Published)
	return nil
}
