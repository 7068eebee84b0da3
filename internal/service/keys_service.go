package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
)

// MaxApiKeys is the number of API keys a user may hold at once.
const MaxApiKeys = 5

const apiKeyBytes = 16

type ApiKeyService interface {
	Create(ctx context.Context, userID int64) (*models.ApiKey, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	Authenticate(ctx context.Context, key string) (int64, error)
	Revoke(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	kr repository.ApiKeyRepository
}

func NewApiKeyService(kr repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{kr: kr}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) (*models.ApiKey, error) {
	n, err := s.kr.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n >= MaxApiKeys {
		err := fmt.Errorf("%w: user %d already holds %d keys", ErrApiKeyLimit, userID, MaxApiKeys)
		slog.Info(err.Error())
		return nil, err
	}

	key, err := utils.GenerateRandomKey(apiKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	apiKey := &models.ApiKey{UserID: userID, ApiKey: key}
	if err := s.kr.Create(ctx, apiKey); err != nil {
		return nil, err
	}
	slog.Info("api key created", "user_id", userID, "key_id", apiKey.ID)
	return apiKey, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	return s.kr.ListByUserID(ctx, userID)
}

// Authenticate resolves key to the id of the user holding it.
func (s *apiKeyService) Authenticate(ctx context.Context, key string) (int64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, fmt.Errorf("%w: api key is empty", ErrInvalidInput)
	}
	apiKey, err := s.kr.GetByKey(ctx, key)
	if err != nil {
		return 0, err
	}
	if apiKey == nil {
		return 0, fmt.Errorf("api key: %w", ErrNotFound)
	}
	return apiKey.UserID, nil
}

// Revoke deletes keyID when it belongs to userID. Keys of other users are
// reported as not found.
func (s *apiKeyService) Revoke(ctx context.Context, userID, keyID int64) error {
	if keyID <= 0 {
		return fmt.Errorf("%w: key id must be positive", ErrInvalidInput)
	}
	removed, err := s.kr.RemoveOwned(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !removed {
		err := fmt.Errorf("api key %d: %w", keyID, ErrNotFound)
		slog.Info(err.Error())
		return err
	}
	return nil
}
