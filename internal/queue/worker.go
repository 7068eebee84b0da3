package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
)

// RegisterHandlers binds the task types of q to mux.
func (q *Queue) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeGenerateContent, q.HandleGenerateTask)
	mux.HandleFunc(TaskTypePublishContent, q.HandlePublishTask)
}

func (q *Queue) HandleGenerateTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	content, err := q.cs.Generate(ctx, payload.UserID, &transfer.GenerateContent{
		Topic:         payload.Topic,
		Channel:       payload.Channel,
		ContentType:   payload.ContentType,
		GenerateImage: payload.GenerateImage,
		GenerateVoice: payload.GenerateVoice,
		AutoPublish:   payload.AutoPublish,
	})
	if err != nil {
		slog.Error("manual generation failed", "user_id", payload.UserID, "channel", payload.Channel, "error", err)
		return err
	}

	slog.Info("manual generation done", "user_id", payload.UserID, "content_id", content.ID, "published", content.Published)
	return nil
}

func (q *Queue) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	content, err := q.cs.PublishExisting(ctx, payload.UserID, payload.ContentID, payload.Channel)
	if err != nil {
		slog.Error("manual publish failed", "user_id", payload.UserID, "content_id", payload.ContentID, "error", err)
		return err
	}

	slog.Info("manual publish done", "user_id", payload.UserID, "content_id", content.ID, "channel", content.Channel)
	return nil
}
