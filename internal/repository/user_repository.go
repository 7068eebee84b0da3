package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/marketing-agent/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error)
	UpdateChannelCredentials(ctx context.Context, user *models.User) error
	UpdateAISettings(ctx context.Context, user *models.User) error
	Remove(ctx context.Context, id int64) error
}

const userColumns = `id, email, password_hash, is_active, telegram_token, telegram_chat_id,
	linkedin_access_token, linkedin_urn, meta_access_token, facebook_page_id, instagram_business_id,
	openai_api_key, openai_system_prompt, openai_vector_store_id, plan, plan_expires_at, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.IsActive,
		&user.TelegramToken, &user.TelegramChatID,
		&user.LinkedInAccessToken, &user.LinkedInURN,
		&user.MetaAccessToken, &user.FacebookPageID, &user.InstagramBusinessID,
		&user.OpenAIAPIKey, &user.OpenAISystemPrompt, &user.OpenAIVectorStoreID,
		&user.Plan, &user.PlanExpiresAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

func (r *userRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	query := "INSERT INTO users (email, password_hash, is_active, plan) VALUES ($1, $2, $3, $4) RETURNING id"

	plan := user.Plan
	if plan == "" {
		plan = models.PlanFree
	}

	var err error
	var id int64

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.IsActive, plan).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.IsActive, plan).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *userRepository) UpdateChannelCredentials(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET telegram_token = $1,
			telegram_chat_id = $2,
			linkedin_access_token = $3,
			linkedin_urn = $4,
			meta_access_token = $5,
			facebook_page_id = $6,
			instagram_business_id = $7,
			updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		user.TelegramToken, user.TelegramChatID,
		user.LinkedInAccessToken, user.LinkedInURN,
		user.MetaAccessToken, user.FacebookPageID, user.InstagramBusinessID,
		time.Now(), user.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) UpdateAISettings(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET openai_api_key = $1,
			openai_system_prompt = $2,
			openai_vector_store_id = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, user.OpenAIAPIKey, user.OpenAISystemPrompt, user.OpenAIVectorStoreID, time.Now(), user.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
