// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported DATABASE_TYPE values
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

type Config struct {
	Port         int    `env:"PORT"          envDefault:"4000"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"ctf"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Empty uses the built-in challenge set
	AnswerKeyFile string `env:"ANSWER_KEY_FILE"`

	// Empty disables the leaderboard cache
	RedisURL            string        `env:"REDIS_URL"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`

	LogLevel  string        `env:"LOG_LEVEL"  envDefault:"info"`
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	// "a, b" in the environment reads the same as -origins "a, b"
	cfg.AllowedOrigins = splitList(strings.Join(cfg.AllowedOrigins, ","))

	fs := flag.NewFlagSet("ctf-scoreboard", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite, postgres or mongo)")
	fs.StringVar(&cfg.DatabaseName, "db-name", cfg.DatabaseName, "Database name (mongo only)")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for the leaderboard cache")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "JWT signing secret (prefer env)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Token lifetime, 0 for no expiry")

	fs.StringVar(&cfg.AnswerKeyFile, "answer-key", cfg.AnswerKeyFile, "Answer key JSON file")
	fs.Func("origins", "Comma-separated allowed CORS origins", func(s string) error {
		cfg.AllowedOrigins = splitList(s)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and ranges
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo:
	default:
		return fmt.Errorf("unsupported database type %q (sqlite, postgres or mongo)", c.DatabaseType)
	}
	if c.DatabaseType == DatabaseMongo && c.DatabaseName == "" {
		return errors.New("DATABASE_NAME required for mongo")
	}

	// Secrets - MUST be provided
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.DBTimeout < 0 {
		return errors.New("DB_TIMEOUT must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
