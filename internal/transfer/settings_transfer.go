package transfer

// CredentialsUpdate replaces the channel credentials of a user. Nil fields are left untouched.
type CredentialsUpdate struct {
	TelegramToken       *string `json:"telegram_token"`
	TelegramChatID      *string `json:"telegram_chat_id"`
	LinkedInAccessToken *string `json:"linkedin_access_token"`
	LinkedInURN         *string `json:"linkedin_urn"`
	MetaAccessToken     *string `json:"meta_access_token"`
	FacebookPageID      *string `json:"facebook_page_id"`
	InstagramBusinessID *string `json:"instagram_business_id"`
}

type AISettingsUpdate struct {
	APIKey        *string `json:"openai_api_key"`
	SystemPrompt  *string `json:"openai_system_prompt"`
	VectorStoreID *string `json:"openai_vector_store_id"`
}

type ChannelStatus struct {
	Channel    string `json:"channel"`
	Configured bool   `json:"configured"`
}
