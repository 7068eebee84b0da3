package models

import "time"

// GeneratedContent records one generation and, if attempted, its publication.
type GeneratedContent struct {
	ID                  int64      `db:"id" json:"id"`
	UserID              int64      `db:"user_id" json:"user_id"`
	ScheduleID          *int64     `db:"schedule_id" json:"schedule_id"`
	TextContent         string     `db:"text_content" json:"text_content"`
	ImageURL            string     `db:"image_url" json:"image_url"`
	VoiceURL            string     `db:"voice_url" json:"voice_url"`
	Channel             string     `db:"channel" json:"channel"`
	ContentType         string     `db:"content_type" json:"content_type"`
	Published           bool       `db:"published" json:"published"`
	PublishedAt         *time.Time `db:"published_at" json:"published_at"`
	PublicationResponse string     `db:"publication_response" json:"publication_response"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}
