// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store defines persistence for teams and their scores. Backends
// live in subpackages (sqlstore, mongostore).
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateTeam  = errors.New("team id already exists")
)

// TeamStore persists team identities.
type TeamStore interface {
	// CreateTeam returns ErrDuplicateEmail or ErrDuplicateTeam on conflicts.
	CreateTeam(ctx context.Context, team models.Team) error
	// GetTeamByEmail returns ErrNotFound for unknown emails.
	GetTeamByEmail(ctx context.Context, email string) (models.Team, error)
}

// ScoreStore persists team progress.
type ScoreStore interface {
	// GetTeamScore returns ErrNotFound when the team has never scored.
	GetTeamScore(ctx context.Context, teamID string) (models.TeamScore, error)

	// AwardChallenge atomically adds challengeID to the team's completed set
	// and adds points, creating the record if needed. It returns false and
	// changes nothing when the challenge was already completed. Concurrent
	// calls for the same (team, challenge) award at most once.
	AwardChallenge(ctx context.Context, teamID, challengeID string, points int, at time.Time) (bool, error)

	// ListTeamScores returns every record in leaderboard order.
	ListTeamScores(ctx context.Context) ([]models.TeamScore, error)
}

// Store is a full backend.
type Store interface {
	TeamStore
	ScoreStore
	// Counts reports how many teams and team scores exist.
	Counts(ctx context.Context) (teams, scores int, err error)
	Ping(ctx context.Context) error
	Close() error
}

// CompareRank orders team scores for the leaderboard: points descending,
// then earlier lastUpdated first, then team id for a stable result.
func CompareRank(a, b models.TeamScore) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := a.LastUpdated.Compare(b.LastUpdated); c != 0 {
		return c
	}
	return cmp.Compare(a.TeamID, b.TeamID)
}

// SortLeaderboard sorts scores in place by CompareRank.
func SortLeaderboard(scores []models.TeamScore) {
	slices.SortStableFunc(scores, CompareRank)
}
