package transfer

import "github.com/maheshrc27/marketing-agent/internal/models"

type GenerateContent struct {
	Topic         string `json:"topic"`
	Channel       string `json:"channel"`
	ContentType   string `json:"content_type"`
	GenerateImage bool   `json:"generate_image"`
	GenerateVoice bool   `json:"generate_voice"`
	AutoPublish   bool   `json:"auto_publish"`
}

type PublishContent struct {
	ContentID int64  `json:"content_id"`
	Channel   string `json:"channel"`
}

type ContentPage struct {
	Items   []*models.GeneratedContent `json:"items"`
	Page    int                        `json:"page"`
	PerPage int                        `json:"per_page"`
	Total   int64                      `json:"total"`
}

type ConnectionStatus struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
