package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS speech_requests (
	id UUID PRIMARY KEY,
	kind TEXT NOT NULL,
	language TEXT NOT NULL,
	engine TEXT NOT NULL,
	source TEXT NOT NULL,
	audio_format TEXT,
	audio_duration_ms INTEGER,
	audio_size_bytes BIGINT,
	transcript TEXT,
	confidence DOUBLE PRECISION,
	status TEXT NOT NULL,
	error_message TEXT,
	processing_time_ms INTEGER,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS speech_requests_created_at_idx ON speech_requests (created_at DESC);
CREATE INDEX IF NOT EXISTS speech_requests_kind_idx ON speech_requests (kind);
`

// Open connects to PostgreSQL, verifies the connection and creates the
// schema if needed.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate creates the request history table and indexes.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
