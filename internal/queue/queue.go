package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueGenerate queues an ad hoc generation. Manual tasks are never retried.
func EnqueueGenerate(client Enqueuer, payload GenerateContentPayload) (string, error) {
	return enqueue(client, TaskTypeGenerateContent, payload)
}

func EnqueuePublish(client Enqueuer, payload PublishContentPayload) (string, error) {
	return enqueue(client, TaskTypePublishContent, payload)
}

func enqueue(client Enqueuer, taskType string, payload any) (string, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	info, err := client.Enqueue(asynq.NewTask(taskType, taskPayload), asynq.MaxRetry(0))
	if err != nil {
		slog.Error("unable to enqueue task", "type", taskType, "error", err)
		return "", err
	}

	slog.Info("task enqueued", "type", taskType, "task_id", info.ID)
	return info.ID, nil
}
