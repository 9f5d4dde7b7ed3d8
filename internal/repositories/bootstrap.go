package repositories

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables if they don't already exist.
// Safe to call on every startup.
func EnsureSchema(db *sql.DB) error {
	const q = `
		CREATE TABLE IF NOT EXISTS subscribers (
			id            BIGSERIAL PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			subscribed_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pending_subscriptions (
			email      TEXT PRIMARY KEY,
			code_hash  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			attempts   INT NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_pending_subscriptions_expires_at
			ON pending_subscriptions (expires_at);
	`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
