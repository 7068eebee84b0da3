package models

import "time"

const PlanFree = "free"

// User is a tenant. Channel tokens and the OpenAI key are stored encrypted.
type User struct {
	ID                  int64      `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	TelegramToken       string     `db:"telegram_token" json:"-"`
	TelegramChatID      string     `db:"telegram_chat_id" json:"telegram_chat_id"`
	LinkedInAccessToken string     `db:"linkedin_access_token" json:"-"`
	LinkedInURN         string     `db:"linkedin_urn" json:"linkedin_urn"`
	MetaAccessToken     string     `db:"meta_access_token" json:"-"`
	FacebookPageID      string     `db:"facebook_page_id" json:"facebook_page_id"`
	InstagramBusinessID string     `db:"instagram_business_id" json:"instagram_business_id"`
	OpenAIAPIKey        string     `db:"openai_api_key" json:"-"`
	OpenAISystemPrompt  string     `db:"openai_system_prompt" json:"openai_system_prompt"`
	OpenAIVectorStoreID string     `db:"openai_vector_store_id" json:"openai_vector_store_id"`
	Plan                string     `db:"plan" json:"plan"`
	PlanExpiresAt       *time.Time `db:"plan_expires_at" json:"plan_expires_at"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}
