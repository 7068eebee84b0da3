package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/marketing-agent/internal/models"
)

type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	ListActive(ctx context.Context) ([]*models.Schedule, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) (int64, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdateNextRun(ctx context.Context, id int64, nextRun time.Time) error
	UpdateLastRun(ctx context.Context, id int64, lastRun time.Time) error
	CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

const scheduleColumns = `id, user_id, cron_expression, timezone, channel, content_template,
	generate_image, generate_voice, content_type, active, last_run, next_run, created_at, updated_at`

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func scanSchedule(row interface{ Scan(dest ...any) error }) (*models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID, &s.UserID, &s.CronExpression, &s.Timezone, &s.Channel, &s.ContentTemplate,
		&s.GenerateImage, &s.GenerateVoice, &s.ContentType, &s.Active,
		&s.LastRun, &s.NextRun, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = $1"
	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return schedule, nil
}

func (r *scheduleRepository) ListActive(ctx context.Context) ([]*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE active = TRUE ORDER BY id"
	return r.list(ctx, query)
}

func (r *scheduleRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE user_id = $1 ORDER BY created_at DESC"
	return r.list(ctx, query, userID)
}

func (r *scheduleRepository) list(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) Create(ctx context.Context, s *models.Schedule) (int64, error) {
	query := `
		INSERT INTO schedules (user_id, cron_expression, timezone, channel, content_template,
			generate_image, generate_voice, content_type, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.CronExpression, s.Timezone, s.Channel, s.ContentTemplate,
		s.GenerateImage, s.GenerateVoice, s.ContentType, s.Active,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *scheduleRepository) Update(ctx context.Context, s *models.Schedule) error {
	query := `
		UPDATE schedules
		SET cron_expression = $1,
			timezone = $2,
			channel = $3,
			content_template = $4,
			generate_image = $5,
			generate_voice = $6,
			content_type = $7,
			active = $8,
			updated_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		s.CronExpression, s.Timezone, s.Channel, s.ContentTemplate,
		s.GenerateImage, s.GenerateVoice, s.ContentType, s.Active,
		time.Now(), s.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE schedules SET active = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) UpdateNextRun(ctx context.Context, id int64, nextRun time.Time) error {
	query := `UPDATE schedules SET next_run = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, nextRun, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) UpdateLastRun(ctx context.Context, id int64, lastRun time.Time) error {
	query := `UPDATE schedules SET last_run = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, lastRun, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error) {
	query := "SELECT 1 FROM schedules WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, scheduleID, userID).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *scheduleRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM schedules WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
