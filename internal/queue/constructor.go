package queue

import (
	"github.com/maheshrc27/marketing-agent/internal/service"
)

// Queue runs manual content tasks off the request path.
type Queue struct {
	cs service.ContentService
}

func NewQueue(cs service.ContentService) *Queue {
	return &Queue{
		cs: cs,
	}
}

const (
	TaskTypeGenerateContent = "content:generate"
	TaskTypePublishContent  = "content:publish"
)

type GenerateContentPayload struct {
	UserID        int64  `json:"user_id"`
	Topic         string `json:"topic"`
	Channel       string `json:"channel"`
	ContentType   string `json:"content_type"`
	GenerateImage bool   `json:"generate_image"`
	GenerateVoice bool   `json:"generate_voice"`
	AutoPublish   bool   `json:"auto_publish"`
}

type PublishContentPayload struct {
	UserID    int64  `json:"user_id"`
	ContentID int64  `json:"content_id"`
	Channel   string `json:"channel"`
}
