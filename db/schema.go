// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix milliseconds so the same schema runs on SQLite and
// PostgreSQL.
const schema = `
-- Elections (one row per deployment)
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    coordinator_id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

-- Event journal, replayed on startup
CREATE TABLE IF NOT EXISTS election_event (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    seq BIGINT NOT NULL,
    event_id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,
    payload TEXT NOT NULL,
    occurred_at BIGINT NOT NULL,
    PRIMARY KEY (election_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_election_event_kind ON election_event(election_id, kind);
`
