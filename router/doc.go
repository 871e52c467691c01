// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the CTF scoreboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{
		Teams:   st,
		Scoring: svc,
		Issuer:  issuer,
		Health:  st,
	})

# Endpoints

Every endpoint except /health is also served under /api, which is where
the frontend calls it.

	GET  /health       - "OK", 503 when the store is unreachable
	POST /signup       - Register a team
	POST /login        - Get a team token
	POST /logout       - Clear the session cookie
	GET  /team-score   - Caller's score (team token)
	POST /submit-flag  - Submit a flag (team token)
	GET  /leaderboard  - Ranked team scores

Team-token routes go through middleware.RequireTeam. All API routes are
wrapped with middleware.WithLogging.
*/
package router
