package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestChannelStatus(t *testing.T) {
	svc := NewSettingsService(testConfig(), newFakeUserRepo(telegramUser(1)))

	statuses, err := svc.ChannelStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []transfer.ChannelStatus{
		{Channel: "telegram", Configured: true},
		{Channel: "linkedin", Configured: false},
		{Channel: "facebook", Configured: false},
		{Channel: "instagram", Configured: false},
	}, statuses)

	_, err = svc.ChannelStatus(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCredentialsEncryptsSecrets(t *testing.T) {
	ur := newFakeUserRepo(&models.User{ID: 1, IsActive: true, TelegramChatID: "@old"})
	svc := NewSettingsService(testConfig(), ur)

	err := svc.UpdateCredentials(context.Background(), 1, &transfer.CredentialsUpdate{
		MetaAccessToken: strPtr(" EAAB-token "),
		FacebookPageID:  strPtr("12345"),
	})
	require.NoError(t, err)

	stored, _, _ := ur.GetByID(context.Background(), 1)
	assert.NotEqual(t, "EAAB-token", stored.MetaAccessToken)
	plain, err := utils.DecryptSecret(stored.MetaAccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "EAAB-token", plain)
	assert.Equal(t, "12345", stored.FacebookPageID)
	assert.Equal(t, "@old", stored.TelegramChatID)

	statuses, err := svc.ChannelStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, statuses[2].Configured)
}

func TestUpdateCredentialsClearsWithEmptyValue(t *testing.T) {
	ur := newFakeUserRepo(telegramUser(1))
	svc := NewSettingsService(testConfig(), ur)

	require.NoError(t, svc.UpdateCredentials(context.Background(), 1, &transfer.CredentialsUpdate{TelegramToken: strPtr("")}))

	stored, _, _ := ur.GetByID(context.Background(), 1)
	assert.Empty(t, stored.TelegramToken)
}

func TestUpdateAISettings(t *testing.T) {
	ur := newFakeUserRepo(&models.User{ID: 1, IsActive: true})
	svc := NewSettingsService(testConfig(), ur)

	err := svc.UpdateAISettings(context.Background(), 1, &transfer.AISettingsUpdate{
		APIKey:       strPtr("sk-new"),
		SystemPrompt: strPtr("  Sprich Du-Form.  "),
	})
	require.NoError(t, err)

	stored, _, _ := ur.GetByID(context.Background(), 1)
	key, err := utils.DecryptSecret(stored.OpenAIAPIKey, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "sk-new", key)
	assert.Equal(t, "Sprich Du-Form.", stored.OpenAISystemPrompt)
	assert.Empty(t, stored.OpenAIVectorStoreID)
}
