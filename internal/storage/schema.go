package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email VARCHAR(320) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	telegram_token TEXT NOT NULL DEFAULT '',
	telegram_chat_id VARCHAR(128) NOT NULL DEFAULT '',
	linkedin_access_token TEXT NOT NULL DEFAULT '',
	linkedin_urn VARCHAR(255) NOT NULL DEFAULT '',
	meta_access_token TEXT NOT NULL DEFAULT '',
	facebook_page_id VARCHAR(128) NOT NULL DEFAULT '',
	instagram_business_id VARCHAR(128) NOT NULL DEFAULT '',
	openai_api_key TEXT NOT NULL DEFAULT '',
	openai_system_prompt TEXT NOT NULL DEFAULT '',
	openai_vector_store_id VARCHAR(128) NOT NULL DEFAULT '',
	plan VARCHAR(32) NOT NULL DEFAULT 'free',
	plan_expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS schedules (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	cron_expression VARCHAR(100) NOT NULL,
	timezone VARCHAR(64) NOT NULL DEFAULT '',
	channel VARCHAR(32) NOT NULL,
	content_template TEXT NOT NULL,
	generate_image BOOLEAN NOT NULL DEFAULT FALSE,
	generate_voice BOOLEAN NOT NULL DEFAULT FALSE,
	content_type VARCHAR(32) NOT NULL DEFAULT 'post',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	last_run TIMESTAMPTZ,
	next_run TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_schedules_user_id ON schedules (user_id);
CREATE INDEX IF NOT EXISTS idx_schedules_active ON schedules (active);

CREATE TABLE IF NOT EXISTS generated_content (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	schedule_id BIGINT REFERENCES schedules(id) ON DELETE SET NULL,
	text_content TEXT NOT NULL,
	image_url VARCHAR(500) NOT NULL DEFAULT '',
	voice_url VARCHAR(500) NOT NULL DEFAULT '',
	channel VARCHAR(32) NOT NULL,
	content_type VARCHAR(32) NOT NULL DEFAULT 'post',
	published BOOLEAN NOT NULL DEFAULT FALSE,
	published_at TIMESTAMPTZ,
	publication_response TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_generated_content_user_created ON generated_content (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS api_keys (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	api_key VARCHAR(64) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// RunMigrations creates the tables if they do not exist yet.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
