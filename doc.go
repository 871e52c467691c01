// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the CTF scoreboard API server.

Teams sign up, log in, and submit flags for challenges. Each correct flag
is worth a fixed number of points and is awarded once per team. The
leaderboard ranks teams by points, then by who reached their score first.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ctf.db JWT_SECRET=change-me go run .

Or with flags:

	go run . -p 4000 -t postgres -d "postgres://..." -jwt-secret change-me

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path, PostgreSQL or MongoDB connection string
  - JWT_SECRET (-jwt-secret): Secret for signing team tokens

Optional settings:

  - PORT (-p): Server port (default: 4000)
  - DATABASE_TYPE (-t): sqlite, postgres or mongo (default: sqlite)
  - ANSWER_KEY_FILE (-answer-key): challenge set JSON (default: built in)
  - REDIS_URL (-redis): enables the leaderboard cache

See package cliparse for the full list.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, scores)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, team token gate, JSON helpers
  - scoring: Flag checking, awards, leaderboard
  - answerkey: Challenge flags and points
  - store: Persistence interfaces (sqlstore, mongostore backends)
  - cache: Redis leaderboard cache
  - auth: Password hashing and team tokens
  - apperr: Error kinds and HTTP status mapping
  - models: Request/response and domain types
  - db: SQL schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
