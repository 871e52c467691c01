// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sqlstore implements store.Store on database/sql for SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/ctf-scoreboard/db"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// Database types accepted by Open
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Store is a SQL-backed store.Store
type Store struct {
	db      *sql.DB
	timeout time.Duration
	// readTx is used for reads that span team_score and completed_challenge
	readTx *sql.TxOptions
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ store.Store = (*Store)(nil)

// Open connects to the database, verifies the connection, and creates the schema.
func Open(dbType, url string, timeout time.Duration) (*Store, error) {
	var driver string
	switch dbType {
	case TypeSQLite:
		driver = "sqlite"
	case TypePostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	sqlDB, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the lifetime of the pool.
	if dbType == TypeSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	st := New(sqlDB, timeout)
	if dbType == TypePostgres {
		// Both tables are read from one snapshot
		st.readTx.Isolation = sql.LevelRepeatableRead
	}
	return st, nil
}

// New wraps an existing connection whose schema is already in place.
// A zero timeout leaves deadlines to the caller's context.
func New(sqlDB *sql.DB, timeout time.Duration) *Store {
	return &Store{db: sqlDB, timeout: timeout, readTx: &sql.TxOptions{ReadOnly: true}}
}

// DB exposes the underlying connection (used by tests and startup stats)
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// CreateTeam inserts a team identity
func (s *Store) CreateTeam(ctx context.Context, team models.Team) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team (team_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, team.TeamID, team.Email, team.PasswordHash, team.CreatedAt.UnixNano())

	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return store.ErrDuplicateEmail
			}
			return store.ErrDuplicateTeam
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}

	return nil
}

// GetTeamByEmail looks up a team by its login email
func (s *Store) GetTeamByEmail(ctx context.Context, email string) (models.Team, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var team models.Team
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT team_id, email, password_hash, created_at
		FROM team
		WHERE email = $1
	`, email).Scan(&team.TeamID, &team.Email, &team.PasswordHash, &createdAt)

	if err == sql.ErrNoRows {
		return models.Team{}, store.ErrNotFound
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("failed to query team: %w", err)
	}

	team.CreatedAt = fromNanos(createdAt)
	return team, nil
}

// GetTeamScore returns a team's points and completed challenges, read in
// one transaction so the two always agree.
func (s *Store) GetTeamScore(ctx context.Context, teamID string) (models.TeamScore, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, s.readTx)
	if err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	score := models.TeamScore{TeamID: teamID}
	var lastUpdated int64
	err = tx.QueryRowContext(ctx, `
		SELECT points, last_updated FROM team_score WHERE team_id = $1
	`, teamID).Scan(&score.Points, &lastUpdated)

	if err == sql.ErrNoRows {
		return models.TeamScore{}, store.ErrNotFound
	}
	if err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to query team score: %w", err)
	}
	score.LastUpdated = fromNanos(lastUpdated)

	rows, err := tx.QueryContext(ctx, `
		SELECT challenge_id FROM completed_challenge
		WHERE team_id = $1
		ORDER BY completed_at, challenge_id
	`, teamID)
	if err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to query completed challenges: %w", err)
	}
	defer rows.Close()

	score.CompletedChallenges = []string{}
	for rows.Next() {
		var challengeID string
		if err := rows.Scan(&challengeID); err != nil {
			return models.TeamScore{}, fmt.Errorf("failed to scan completed challenge: %w", err)
		}
		score.CompletedChallenges = append(score.CompletedChallenges, challengeID)
	}
	if err := rows.Err(); err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to read completed challenges: %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to finish read: %w", err)
	}
	return score, nil
}

// AwardChallenge records a solve and adds its points in one transaction.
// The insert into completed_challenge is the guard: if the (team, challenge)
// row already exists nothing else is written.
func (s *Store) AwardChallenge(ctx context.Context, teamID, challengeID string, points int, at time.Time) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO completed_challenge (team_id, challenge_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, challenge_id) DO NOTHING
	`, teamID, challengeID, at.UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to insert completed challenge: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_score (team_id, points, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id) DO UPDATE
		SET points = team_score.points + excluded.points,
		    last_updated = excluded.last_updated
	`, teamID, points, at.UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to update team score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit award: %w", err)
	}

	return true, nil
}

// ListTeamScores returns all team scores in leaderboard order. Scores and
// completed challenges come from the same transaction.
func (s *Store) ListTeamScores(ctx context.Context) ([]models.TeamScore, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, s.readTx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	scores, err := queryScores(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(scores) > 0 {
		if err := attachChallenges(ctx, tx, scores); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish read: %w", err)
	}
	return scores, nil
}

func queryScores(ctx context.Context, q querier) ([]models.TeamScore, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT team_id, points, last_updated
		FROM team_score
		ORDER BY points DESC, last_updated ASC, team_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team scores: %w", err)
	}
	defer rows.Close()

	scores := []models.TeamScore{}
	for rows.Next() {
		var score models.TeamScore
		var lastUpdated int64
		if err := rows.Scan(&score.TeamID, &score.Points, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan team score: %w", err)
		}
		score.LastUpdated = fromNanos(lastUpdated)
		score.CompletedChallenges = []string{}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read team scores: %w", err)
	}

	return scores, nil
}

func attachChallenges(ctx context.Context, q querier, scores []models.TeamScore) error {
	rows, err := q.QueryContext(ctx, `
		SELECT team_id, challenge_id FROM completed_challenge
		ORDER BY team_id, completed_at, challenge_id
	`)
	if err != nil {
		return fmt.Errorf("failed to query completed challenges: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int, len(scores))
	for i := range scores {
		index[scores[i].TeamID] = i
	}

	for rows.Next() {
		var teamID, challengeID string
		if err := rows.Scan(&teamID, &challengeID); err != nil {
			return fmt.Errorf("failed to scan completed challenge: %w", err)
		}
		i, ok := index[teamID]
		if !ok {
			slog.Warn("completed challenge without score row", "teamid", teamID, "challenge_id", challengeID)
			continue
		}
		scores[i].CompletedChallenges = append(scores[i].CompletedChallenges, challengeID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read completed challenges: %w", err)
	}
	return nil
}

// Counts returns the number of teams and team scores (logged at startup)
func (s *Store) Counts(ctx context.Context) (teams, scores int, err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team`).Scan(&teams); err != nil {
		return 0, 0, fmt.Errorf("failed to count teams: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_score`).Scan(&scores); err != nil {
		return 0, 0, fmt.Errorf("failed to count team scores: %w", err)
	}
	return teams, scores, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
