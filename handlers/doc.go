// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the CTF scoreboard API.

# Handler Types

Each handler is a struct with its dependencies injected:

  - AuthHandler: signup, login and logout (store.TeamStore, auth.TokenIssuer)
  - ScoreHandler: team score, flag submission, leaderboard (scoring.Service)

	authHandler := handlers.NewAuthHandler(st, issuer)
	scoreHandler := handlers.NewScoreHandler(svc)

# Identity

	POST /signup → Signup (returns teamid)
	POST /login  → Login (returns token, sets ctf_token cookie)
	POST /logout → Logout (clears the cookie)

Duplicate emails answer 400. Unknown emails and wrong passwords answer 401.

# Scoring

	GET  /team-score  → TeamScore (team token)
	POST /submit-flag → SubmitFlag (team token)
	GET  /leaderboard → Leaderboard

SubmitFlag answers {"status": true} for a correct flag, including repeats
that award nothing, and {"status": false} otherwise. Only a missing
challengeId or flag is a 400.

Errors are classified with apperr and written by middleware.WriteError.
*/
package handlers
