package service

import (
	"fmt"
	"log/slog"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
)

// channelCredentials decrypts the stored channel secrets of u. A secret that
// cannot be decrypted is treated as absent.
func channelCredentials(u *models.User, key string) publisher.Credentials {
	return publisher.Credentials{
		TelegramBotToken:    decryptField(u, "telegram_token", u.TelegramToken, key),
		TelegramChatID:      u.TelegramChatID,
		LinkedInAccessToken: decryptField(u, "linkedin_access_token", u.LinkedInAccessToken, key),
		LinkedInURN:         u.LinkedInURN,
		MetaAccessToken:     decryptField(u, "meta_access_token", u.MetaAccessToken, key),
		FacebookPageID:      u.FacebookPageID,
		InstagramBusinessID: u.InstagramBusinessID,
	}
}

// resolveAPIKey prefers the tenant's own OpenAI key over the system key.
func resolveAPIKey(u *models.User, key, systemKey string) (string, error) {
	if own := decryptField(u, "openai_api_key", u.OpenAIAPIKey, key); own != "" {
		return own, nil
	}
	if systemKey != "" {
		return systemKey, nil
	}
	return "", ErrAIKeyMissing
}

func decryptField(u *models.User, field, stored, key string) string {
	plain, err := utils.DecryptSecret(stored, key)
	if err != nil {
		slog.Warn("unable to decrypt stored secret", "user_id", u.ID, "field", field, "error", err)
		return ""
	}
	return plain
}

func notConfiguredNote(ch publisher.Channel) string {
	return fmt.Sprintf("%s ist nicht konfiguriert. Content wurde nur generiert.", ch.Title())
}
