// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/answerkey"
	"github.com/danielhkuo/ctf-scoreboard/auth"
	"github.com/danielhkuo/ctf-scoreboard/cliparse"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store/sqlstore"
)

// TestJWTSecret signs every token issued in tests
const TestJWTSecret = "test-jwt-secret"

// SetupTestStore opens a fresh in-memory SQLite store with the full schema
func SetupTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	st, err := sqlstore.Open(sqlstore.TypeSQLite, ":memory:", 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                4000,
		DatabaseURL:         ":memory:",
		DatabaseType:        cliparse.DatabaseSQLite,
		DatabaseName:        "ctf_test",
		JWTSecret:           TestJWTSecret,
		TokenTTL:            time.Hour,
		AllowedOrigins:      []string{"http://localhost:3000"},
		LeaderboardCacheTTL: 30 * time.Second,
		LogLevel:            "info",
		DBTimeout:           5 * time.Second,
	}
}

// NewTestIssuer returns a token issuer using the test secret
func NewTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	return issuer
}

// TestKey returns the built-in answer key
func TestKey(t *testing.T) *answerkey.Key {
	t.Helper()

	key, err := answerkey.Default()
	if err != nil {
		t.Fatalf("Failed to load answer key: %v", err)
	}
	return key
}

// CreateTestTeam registers a team directly in the store and returns its
// id and a valid bearer token
func CreateTestTeam(t *testing.T, st *sqlstore.Store, issuer *auth.TokenIssuer, email, password string) (teamID, token string) {
	t.Helper()

	teamID, err := auth.GenerateTeamID()
	if err != nil {
		t.Fatalf("Failed to generate team id: %v", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	err = st.CreateTeam(context.Background(), models.Team{
		TeamID:       teamID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}

	token, err = issuer.Issue(auth.Identity{TeamID: teamID, Email: email})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	return teamID, token
}

// BearerHeader builds the headers map for an authenticated request
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
