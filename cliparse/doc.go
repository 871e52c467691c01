// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (github.com/caarlos0/env), then CLI
flags override them. main loads a .env file before calling ParseFlags.

# Settings

	PORT                   -p           4000
	DATABASE_URL           -d           (required)
	DATABASE_TYPE          -t           sqlite | postgres | mongo
	DATABASE_NAME          -db-name     ctf (mongo only)
	JWT_SECRET             -jwt-secret  (required)
	TOKEN_TTL              -token-ttl   24h, 0 = tokens never expire
	ALLOWED_ORIGINS        -origins     http://localhost:3000, "*" = any
	ANSWER_KEY_FILE        -answer-key  built-in challenge set
	REDIS_URL              -redis       leaderboard cache off
	LEADERBOARD_CACHE_TTL               30s
	LOG_LEVEL                           info
	DB_TIMEOUT                          5s per store call

# Validation

ParseFlags returns an error if DATABASE_URL or JWT_SECRET is missing, the
database type is unknown, or a duration or log level does not parse.
*/
package cliparse
