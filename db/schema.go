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

// Timestamps are unix nanoseconds so ordering is identical on SQLite and
// PostgreSQL. The schema avoids dialect-specific defaults for the same reason.
const schema = `
-- Teams (identity + credentials)
CREATE TABLE IF NOT EXISTS team (
    team_id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

-- Team scores, created on the first correct submission
CREATE TABLE IF NOT EXISTS team_score (
    team_id TEXT PRIMARY KEY,
    points INTEGER NOT NULL CHECK (points >= 0),
    last_updated BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_team_score_rank ON team_score(points DESC, last_updated ASC);

-- Completed challenges; the primary key makes an award happen at most once
CREATE TABLE IF NOT EXISTS completed_challenge (
    team_id TEXT NOT NULL,
    challenge_id TEXT NOT NULL,
    completed_at BIGINT NOT NULL,
    PRIMARY KEY (team_id, challenge_id)
);

CREATE INDEX IF NOT EXISTS idx_completed_challenge_team ON completed_challenge(team_id, completed_at);
`
