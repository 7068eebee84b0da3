package models

import (
	"fmt"
	"time"
)

type Schedule struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	CronExpression  string     `db:"cron_expression" json:"cron_expression"`
	Timezone        string     `db:"timezone" json:"timezone"`
	Channel         string     `db:"channel" json:"channel"`
	ContentTemplate string     `db:"content_template" json:"content_template"`
	GenerateImage   bool       `db:"generate_image" json:"generate_image"`
	GenerateVoice   bool       `db:"generate_voice" json:"generate_voice"`
	ContentType     string     `db:"content_type" json:"content_type"`
	Active          bool       `db:"active" json:"active"`
	LastRun         *time.Time `db:"last_run" json:"last_run"`
	NextRun         *time.Time `db:"next_run" json:"next_run"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduleJobID is the scheduler job id a schedule row is registered under.
func ScheduleJobID(scheduleID int64) string {
	return fmt.Sprintf("schedule_%d", scheduleID)
}
