package database

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           BIGSERIAL PRIMARY KEY,
		username     VARCHAR(150) NOT NULL,
		email        VARCHAR(254) NOT NULL,
		password     VARCHAR(255) NOT NULL,
		phone_number VARCHAR(20),
		role         VARCHAR(20)  NOT NULL DEFAULT 'customer',
		is_active    BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		deleted_at   TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email)) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         UUID PRIMARY KEY,
		user_id    BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		token      UUID        NOT NULL UNIQUE,
		user_agent TEXT,
		ip_address VARCHAR(64),
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id)`,
	`CREATE TABLE IF NOT EXISTS books (
		id         BIGSERIAL PRIMARY KEY,
		title      VARCHAR(255) NOT NULL,
		author     VARCHAR(255) NOT NULL,
		genre      VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS books_genre_idx ON books (genre)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id              BIGSERIAL PRIMARY KEY,
		book_id         BIGINT      NOT NULL REFERENCES books (id) ON DELETE CASCADE,
		account_user_id BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		rating          SMALLINT    NOT NULL CHECK (rating BETWEEN 1 AND 5),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reviews_book_user_key UNIQUE (book_id, account_user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_account_user_id_idx ON reviews (account_user_id)`,
}

// Migrate creates the tables the service needs if they are missing.
func Migrate(ctx context.Context, db PgxIface) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
