// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/ctf-scoreboard/answerkey"
	"github.com/danielhkuo/ctf-scoreboard/auth"
	"github.com/danielhkuo/ctf-scoreboard/cache"
	"github.com/danielhkuo/ctf-scoreboard/cliparse"
	"github.com/danielhkuo/ctf-scoreboard/middleware"
	"github.com/danielhkuo/ctf-scoreboard/router"
	"github.com/danielhkuo/ctf-scoreboard/scoring"
	"github.com/danielhkuo/ctf-scoreboard/store"
	"github.com/danielhkuo/ctf-scoreboard/store/mongostore"
	"github.com/danielhkuo/ctf-scoreboard/store/sqlstore"
)

func main() {
	var err error

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, _ := cliparse.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Answer key
	key, err := answerkey.Load(cfg.AnswerKeyFile)
	if err != nil {
		slog.Error("failed to load answer key", "error", err, "file", cfg.AnswerKeyFile)
		os.Exit(1)
	}
	slog.Info("Answer key loaded", "challenges", key.Len(), "total_points", key.TotalPoints())

	// Connect to the database and create the schema
	st, err := openStore(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer st.Close()

	teams, scores, err := st.Counts(context.Background())
	if err != nil {
		slog.Warn("failed to count records", "error", err)
	} else {
		slog.Info("Database ready", "type", cfg.DatabaseType, "teams", teams, "team_scores", scores)
	}

	// Leaderboard cache (optional)
	var lb cache.Leaderboard = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.RedisURL, cfg.LeaderboardCacheTTL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		lb = rc
		slog.Info("Leaderboard cache enabled", "ttl", cfg.LeaderboardCacheTTL)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		slog.Error("invalid token settings", "error", err)
		os.Exit(1)
	}

	svc := scoring.NewService(key, st, scoring.WithCache(lb))

	// Create router
	mux := router.NewRouter(router.Deps{
		Teams:   st,
		Scoring: svc,
		Issuer:  issuer,
		Health:  st,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.AllowedOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openStore(cfg cliparse.Config) (store.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongostore.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.DBTimeout)
	default:
		return sqlstore.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DBTimeout)
	}
}
