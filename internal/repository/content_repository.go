package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/marketing-agent/internal/models"
)

type ContentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.GeneratedContent, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	Create(ctx context.Context, content *models.GeneratedContent) (int64, error)
	UpdatePublication(ctx context.Context, content *models.GeneratedContent) error
	CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error)
}

const contentColumns = `id, user_id, schedule_id, text_content, image_url, voice_url, channel, content_type,
	published, published_at, publication_response, created_at`

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

func scanContent(row interface{ Scan(dest ...any) error }) (*models.GeneratedContent, error) {
	var c models.GeneratedContent
	err := row.Scan(
		&c.ID, &c.UserID, &c.ScheduleID, &c.TextContent, &c.ImageURL, &c.VoiceURL,
		&c.Channel, &c.ContentType, &c.Published, &c.PublishedAt, &c.PublicationResponse, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error) {
	query := "SELECT " + contentColumns + " FROM generated_content WHERE id = $1"
	content, err := scanContent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return content, nil
}

func (r *contentRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.GeneratedContent, error) {
	query := "SELECT " + contentColumns + ` FROM generated_content
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.GeneratedContent
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return contents, nil
}

func (r *contentRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	query := "SELECT COUNT(*) FROM generated_content WHERE user_id = $1"
	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *contentRepository) Create(ctx context.Context, c *models.GeneratedContent) (int64, error) {
	query := `
		INSERT INTO generated_content (user_id, schedule_id, text_content, image_url, voice_url,
			channel, content_type, published, published_at, publication_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.UserID, c.ScheduleID, c.TextContent, c.ImageURL, c.VoiceURL,
		c.Channel, c.ContentType, c.Published, c.PublishedAt, c.PublicationResponse,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return c.ID, nil
}

func (r *contentRepository) UpdatePublication(ctx context.Context, c *models.GeneratedContent) error {
	query := `
		UPDATE generated_content
		SET channel = $1,
			published = $2,
			published_at = $3,
			publication_response = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, c.Channel, c.Published, c.PublishedAt, c.PublicationResponse, c.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	query := "SELECT 1 FROM generated_content WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, contentID, userID).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}
