// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"log/slog"
	"reflect"
	"testing"
	"time"
)

// setRequired sets the env vars every valid config needs and clears the rest
func setRequired(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_TYPE", "DATABASE_NAME", "TOKEN_TTL", "ALLOWED_ORIGINS",
		"ANSWER_KEY_FILE", "REDIS_URL", "LEADERBOARD_CACHE_TTL", "LOG_LEVEL", "DB_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 4000 {
		t.Errorf("expected port 4000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.DatabaseName != "ctf" {
		t.Errorf("expected database name ctf, got %s", cfg.DatabaseName)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.LeaderboardCacheTTL != 30*time.Second {
		t.Errorf("expected 30s cache ttl, got %s", cfg.LeaderboardCacheTTL)
	}
	if cfg.DBTimeout != 5*time.Second {
		t.Errorf("expected 5s db timeout, got %s", cfg.DBTimeout)
	}
	if cfg.RedisURL != "" || cfg.AnswerKeyFile != "" {
		t.Errorf("expected optional settings empty, got %+v", cfg)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("TOKEN_TTL", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://ctf.example.org,http://localhost:5173")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.TokenTTL != 0 {
		t.Errorf("expected no expiry, got %s", cfg.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://ctf.example.org", "http://localhost:5173"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis url %s", cfg.RedisURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestParseFlags_EnvOriginsTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,,")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://a.example", "http://b.example"}) {
		t.Errorf("unexpected origins %q", cfg.AllowedOrigins)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{
		"-p", "8080",
		"-d", "postgres://localhost/ctf",
		"-t", "postgres",
		"-jwt-secret", "cli-secret",
		"-token-ttl", "1h",
		"-origins", "https://a.example, https://b.example",
		"-answer-key", "flags.json",
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/ctf" {
		t.Errorf("unexpected database url %s", cfg.DatabaseURL)
	}
	if cfg.JWTSecret != "cli-secret" {
		t.Errorf("expected cli secret, got %s", cfg.JWTSecret)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h, got %s", cfg.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.AnswerKeyFile != "flags.json" {
		t.Errorf("unexpected answer key file %s", cfg.AnswerKeyFile)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}, nil},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}, nil},
		{"unknown database type", map[string]string{"DATABASE_TYPE": "mysql"}, nil},
		{"bad port env", map[string]string{"PORT": "abc"}, nil},
		{"port out of range", nil, []string{"-p", "70000"}},
		{"negative ttl", nil, []string{"-token-ttl", "-1h"}},
		{"bad ttl env", map[string]string{"TOKEN_TTL": "soon"}, nil},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, nil},
		{"unknown flag", nil, []string{"-nope"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			if _, err := ParseFlags(tc.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tc := range testCases {
		got, err := ParseLogLevel(tc.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
