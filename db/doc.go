// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db manages the SQL schema.

# Schema Creation

CreateSchema creates all tables if they don't exist:

	err := db.CreateSchema(sqlDB)

Safe to call on every startup. The same DDL runs on SQLite and PostgreSQL.

# Tables

	team                 - Team identity (team_id, email, password_hash)
	team_score           - Points and last update per team
	completed_challenge  - One row per (team_id, challenge_id)

team and team_score are linked by team_id only; there is no foreign key,
matching the document layout of the MongoDB backend.

# Key Constraints

  - team.email is UNIQUE (one team per email)
  - completed_challenge (team_id, challenge_id) is the PRIMARY KEY, which
    is what makes awarding a challenge idempotent under concurrency
  - team_score.points is never negative

# Timestamps

created_at, last_updated and completed_at are BIGINT unix nanoseconds.
*/
package db
