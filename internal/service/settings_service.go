package service

import (
	"context"
	"fmt"
	"strings"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
)

type SettingsService interface {
	ChannelStatus(ctx context.Context, userID int64) ([]transfer.ChannelStatus, error)
	UpdateCredentials(ctx context.Context, userID int64, in *transfer.CredentialsUpdate) error
	UpdateAISettings(ctx context.Context, userID int64, in *transfer.AISettingsUpdate) error
}

type settingsService struct {
	secretKey string
	ur        repository.UserRepository
}

func NewSettingsService(cfg config.Config, ur repository.UserRepository) SettingsService {
	return &settingsService{
		secretKey: cfg.SecretKey,
		ur:        ur,
	}
}

func (s *settingsService) user(ctx context.Context, userID int64) (*models.User, error) {
	user, exists, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return user, nil
}

// ChannelStatus reports which channels have complete credentials.
func (s *settingsService) ChannelStatus(ctx context.Context, userID int64) ([]transfer.ChannelStatus, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	creds := channelCredentials(user, s.secretKey)

	statuses := make([]transfer.ChannelStatus, 0, len(publisher.Channels()))
	for _, ch := range publisher.Channels() {
		statuses = append(statuses, transfer.ChannelStatus{Channel: string(ch), Configured: creds.Configured(ch)})
	}
	return statuses, nil
}

func (s *settingsService) UpdateCredentials(ctx context.Context, userID int64, in *transfer.CredentialsUpdate) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.setSecret(&user.TelegramToken, in.TelegramToken); err != nil {
		return err
	}
	if err := s.setSecret(&user.LinkedInAccessToken, in.LinkedInAccessToken); err != nil {
		return err
	}
	if err := s.setSecret(&user.MetaAccessToken, in.MetaAccessToken); err != nil {
		return err
	}
	setPlain(&user.TelegramChatID, in.TelegramChatID)
	setPlain(&user.LinkedInURN, in.LinkedInURN)
	setPlain(&user.FacebookPageID, in.FacebookPageID)
	setPlain(&user.InstagramBusinessID, in.InstagramBusinessID)

	return s.ur.UpdateChannelCredentials(ctx, user)
}

func (s *settingsService) UpdateAISettings(ctx context.Context, userID int64, in *transfer.AISettingsUpdate) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.setSecret(&user.OpenAIAPIKey, in.APIKey); err != nil {
		return err
	}
	if in.SystemPrompt != nil {
		user.OpenAISystemPrompt = strings.TrimSpace(*in.SystemPrompt)
	}
	setPlain(&user.OpenAIVectorStoreID, in.VectorStoreID)

	return s.ur.UpdateAISettings(ctx, user)
}

// setSecret encrypts value into dst. An empty value clears the secret.
func (s *settingsService) setSecret(dst *string, value *string) error {
	if value == nil {
		return nil
	}
	encrypted, err := utils.EncryptSecret(strings.TrimSpace(*value), s.secretKey)
	if err != nil {
		return fmt.Errorf("encrypting secret: %w", err)
	}
	*dst = encrypted
	return nil
}

func setPlain(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
