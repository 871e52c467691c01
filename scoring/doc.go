// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scoring decides flag submissions and ranks teams.

# Submissions

	svc := scoring.NewService(key, st, scoring.WithCache(c))
	verdict, err := svc.Submit(ctx, teamID, "easy-1", "CTF{crypto_123}")

Submit never errors on a wrong flag; it returns Verdict{Correct: false}.
Unknown challenge ids are always incorrect. A correct flag calls
store.AwardChallenge, which adds the challenge and its points in one
atomic step, so repeating a correct submission (even concurrently) awards
once. Verdict.Awarded tells the two cases apart.

# Leaderboard

	scores, err := svc.Leaderboard(ctx)

Ordered by points descending, then lastUpdated ascending (reaching a score
first ranks higher), then team id. Teams without a score record are
absent. When a cache is configured it is invalidated on every award.

# Team Score

	score, err := svc.TeamScore(ctx, teamID)

Teams that have not solved anything get {points: 0, completedChallenges: []}.

# Errors

Storage failures come back as apperr.Persistence and are not retried.
*/
package scoring
