package database

import (
	"context"

	"github.com/shopsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/shopsense/backend/pkg/errors"
)

// Conversation tables are owned by this service. Catalog tables hold the
// read-only snapshot; they are created here so a fresh database boots, but
// population happens out of band.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS conversation_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT 'New Chat',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES conversation_sessions(id),
		sender TEXT NOT NULL CHECK (sender IN ('user', 'ai')),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_session_created
		ON messages (session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS distribution_centers (
		id BIGINT PRIMARY KEY,
		name TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		cost DOUBLE PRECISION,
		category TEXT,
		name TEXT,
		brand TEXT,
		retail_price DOUBLE PRECISION,
		department TEXT,
		sku TEXT,
		distribution_center_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id BIGINT PRIMARY KEY,
		product_id BIGINT,
		created_at TIMESTAMPTZ,
		sold_at TIMESTAMPTZ,
		cost DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		age INTEGER,
		gender TEXT,
		state TEXT,
		street_address TEXT,
		postal_code TEXT,
		city TEXT,
		country TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		traffic_source TEXT,
		created_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		user_id BIGINT,
		status TEXT,
		gender TEXT,
		created_at TIMESTAMPTZ,
		returned_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		num_of_item INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT PRIMARY KEY,
		order_id TEXT,
		user_id BIGINT,
		product_id BIGINT,
		inventory_item_id BIGINT,
		status TEXT,
		created_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		returned_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates all tables if they do not exist.
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	for _, stmt := range schemaStatements {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewInternalError("failed to apply schema", err)
		}
	}
	return nil
}
