package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/marketing-agent/internal/models"
)

type ApiKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*models.ApiKey, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	CountByUserID(ctx context.Context, userID int64) (int, error)
	Create(ctx context.Context, apiKey *models.ApiKey) error
	RemoveOwned(ctx context.Context, keyID, userID int64) (bool, error)
}

const apiKeyColumns = "id, user_id, api_key, created_at"

type apiKeyRepository struct {
	db *sql.DB
}

func NewApiKeyRepository(db *sql.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func scanApiKey(row interface{ Scan(dest ...any) error }) (*models.ApiKey, error) {
	var k models.ApiKey
	if err := row.Scan(&k.ID, &k.UserID, &k.ApiKey, &k.CreatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

// GetByKey returns nil when no row carries key.
func (r *apiKeyRepository) GetByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	query := "SELECT " + apiKeyColumns + " FROM api_keys WHERE api_key = $1"
	apiKey, err := scanApiKey(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return apiKey, nil
}

func (r *apiKeyRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	query := "SELECT " + apiKeyColumns + " FROM api_keys WHERE user_id = $1 ORDER BY created_at, id"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	apiKeys := []*models.ApiKey{}
	for rows.Next() {
		apiKey, err := scanApiKey(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		apiKeys = append(apiKeys, apiKey)
	}
	return apiKeys, rows.Err()
}

func (r *apiKeyRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM api_keys WHERE user_id = $1"
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return n, nil
}

// Create stores apiKey and fills in its id and creation time.
func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) error {
	query := "INSERT INTO api_keys (user_id, api_key) VALUES ($1, $2) RETURNING id, created_at"
	err := r.db.QueryRowContext(ctx, query, apiKey.UserID, apiKey.ApiKey).Scan(&apiKey.ID, &apiKey.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// RemoveOwned deletes keyID only if it belongs to userID and reports whether
// a row was deleted.
func (r *apiKeyRepository) RemoveOwned(ctx context.Context, keyID, userID int64) (bool, error) {
	query := "DELETE FROM api_keys WHERE id = $1 AND user_id = $2"
	res, err := r.db.ExecContext(ctx, query, keyID, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
