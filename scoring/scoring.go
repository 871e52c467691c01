// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/answerkey"
	"github.com/danielhkuo/ctf-scoreboard/apperr"
	"github.com/danielhkuo/ctf-scoreboard/cache"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// Verdict is the outcome of a flag submission
type Verdict struct {
	// Correct is true when the flag matches the answer key
	Correct bool
	// Awarded is true only on the team's first correct submission
	Awarded bool
	// Points is the challenge's value (0 when incorrect)
	Points int
}

// Service implements flag submission and the leaderboard
type Service struct {
	key    *answerkey.Key
	scores store.ScoreStore
	cache  cache.Leaderboard
	now    func() time.Time
}

type Option func(*Service)

// WithCache serves the leaderboard through c
func WithCache(c cache.Leaderboard) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(key *answerkey.Key, scores store.ScoreStore, opts ...Option) *Service {
	s := &Service{
		key:    key,
		scores: scores,
		cache:  cache.Noop{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the answer key the service checks against
func (s *Service) Key() *answerkey.Key {
	return s.key
}

// Submit checks a flag and awards the challenge on the team's first
// correct submission. A wrong flag or unknown challenge is a negative
// verdict, not an error. Only persistence failures return an error.
func (s *Service) Submit(ctx context.Context, teamID, challengeID, flag string) (Verdict, error) {
	if teamID == "" {
		return Verdict{}, apperr.Unauthenticated("Not authenticated")
	}

	entry, ok := s.key.Check(challengeID, flag)
	if !ok {
		slog.Info("incorrect flag", "teamid", teamID, "challenge_id", challengeID)
		return Verdict{}, nil
	}

	awarded, err := s.scores.AwardChallenge(ctx, teamID, entry.ChallengeID, entry.Points, s.now().UTC())
	if err != nil {
		slog.Error("failed to award challenge", "error", err, "teamid", teamID, "challenge_id", challengeID)
		return Verdict{}, apperr.Persistence("Error saving team score", err)
	}

	if !awarded {
		slog.Info("challenge already completed", "teamid", teamID, "challenge_id", challengeID)
		return Verdict{Correct: true, Points: entry.Points}, nil
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate leaderboard cache", "error", err)
	}

	slog.Info("challenge awarded", "teamid", teamID, "challenge_id", challengeID, "points", entry.Points)
	return Verdict{Correct: true, Awarded: true, Points: entry.Points}, nil
}

// Leaderboard returns every team score, points descending and earlier
// lastUpdated first on ties. Teams that never scored are not listed.
func (s *Service) Leaderboard(ctx context.Context) ([]models.TeamScore, error) {
	cached, gen, ok, cacheErr := s.cache.Get(ctx)
	if cacheErr != nil {
		slog.Warn("failed to read leaderboard cache", "error", cacheErr)
	}
	if ok {
		return cached, nil
	}

	scores, err := s.scores.ListTeamScores(ctx)
	if err != nil {
		slog.Error("failed to list team scores", "error", err)
		return nil, apperr.Persistence("Error fetching leaderboard", err)
	}
	store.SortLeaderboard(scores)

	// Without a generation the fill could overwrite a newer invalidation
	if cacheErr != nil {
		return scores, nil
	}
	// The cache drops this fill if an award invalidated it after the miss
	if err := s.cache.Set(ctx, gen, scores); err != nil {
		slog.Warn("failed to write leaderboard cache", "error", err)
	}

	return scores, nil
}

// TeamScore returns the team's progress, or an empty score if the team
// has not solved anything yet.
func (s *Service) TeamScore(ctx context.Context, teamID string) (models.TeamScore, error) {
	score, err := s.scores.GetTeamScore(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return models.EmptyTeamScore(teamID), nil
	}
	if err != nil {
		slog.Error("failed to fetch team score", "error", err, "teamid", teamID)
		return models.TeamScore{}, apperr.Persistence("Error fetching team score", err)
	}
	return score, nil
}
