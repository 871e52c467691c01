// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ctf-scoreboard/auth"
	"github.com/danielhkuo/ctf-scoreboard/handlers"
	"github.com/danielhkuo/ctf-scoreboard/middleware"
	"github.com/danielhkuo/ctf-scoreboard/scoring"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// Every API route is served at the root and under /api
var prefixes = []string{"", "/api"}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Teams   store.TeamStore
	Scoring *scoring.Service
	Issuer  *auth.TokenIssuer
	// Health is optional; when set, /health pings it
	Health Pinger
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Teams, deps.Issuer)
	scoreHandler := handlers.NewScoreHandler(deps.Scoring)
	requireTeam := middleware.RequireTeam(deps.Issuer)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health.Ping(r.Context()); err != nil {
				slog.Error("health check failed", "error", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	for _, p := range prefixes {
		// Identity (public)
		mux.HandleFunc("POST "+p+"/signup", middleware.WithLogging(authHandler.Signup))
		mux.HandleFunc("POST "+p+"/login", middleware.WithLogging(authHandler.Login))
		mux.HandleFunc("POST "+p+"/logout", middleware.WithLogging(authHandler.Logout))

		// Scoring (team token)
		mux.HandleFunc("GET "+p+"/team-score", middleware.WithLogging(requireTeam(scoreHandler.TeamScore)))
		mux.HandleFunc("POST "+p+"/submit-flag", middleware.WithLogging(requireTeam(scoreHandler.SubmitFlag)))

		// Leaderboard (public)
		mux.HandleFunc("GET "+p+"/leaderboard", middleware.WithLogging(scoreHandler.Leaderboard))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ctf-scoreboard API v1"))
	})

	return mux
}
