// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/apperr"
	"github.com/danielhkuo/ctf-scoreboard/auth"
	"github.com/danielhkuo/ctf-scoreboard/middleware"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// team ids are random; a collision just draws again
const maxTeamIDAttempts = 3

type AuthHandler struct {
	teams  store.TeamStore
	issuer *auth.TokenIssuer
}

func NewAuthHandler(teams store.TeamStore, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{teams: teams, issuer: issuer}
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, apperr.Validation("Missing required fields"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		middleware.WriteError(w, apperr.Validation("Password must be at most 72 bytes"))
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.WriteError(w, apperr.Persistence("Error signing up", err))
		return
	}

	team := models.Team{
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		team.TeamID, err = auth.GenerateTeamID()
		if err != nil {
			slog.Error("failed to generate team id", "error", err)
			middleware.WriteError(w, apperr.Persistence("Error signing up", err))
			return
		}

		err = h.teams.CreateTeam(r.Context(), team)
		if errors.Is(err, store.ErrDuplicateTeam) && attempt < maxTeamIDAttempts {
			slog.Warn("team id collision, retrying", "teamid", team.TeamID)
			continue
		}
		break
	}

	if errors.Is(err, store.ErrDuplicateEmail) {
		slog.Info("signup for existing email", "email", req.Email)
		middleware.WriteError(w, apperr.Conflict("User already exists"))
		return
	}
	if err != nil {
		slog.Error("failed to create team", "error", err, "email", req.Email)
		middleware.WriteError(w, apperr.Persistence("Error signing up", err))
		return
	}

	slog.Info("team created", "teamid", team.TeamID, "email", team.Email)

	middleware.JSONResponse(w, http.StatusOK, models.SignupResponse{
		Message: "Signup successful",
		Status:  models.StatusSuccess,
		TeamID:  team.TeamID,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, apperr.Validation("Missing required fields"))
		return
	}

	team, err := h.teams.GetTeamByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("login for unknown email", "email", req.Email)
		middleware.WriteError(w, apperr.Unauthenticated("User not found"))
		return
	}
	if err != nil {
		slog.Error("failed to look up team", "error", err, "email", req.Email)
		middleware.WriteError(w, apperr.Persistence("Error during login", err))
		return
	}

	if err := auth.CheckPassword(team.PasswordHash, req.Password); err != nil {
		slog.Info("incorrect password", "email", req.Email)
		middleware.WriteError(w, apperr.Unauthenticated("Incorrect password"))
		return
	}

	token, err := h.issuer.Issue(auth.Identity{TeamID: team.TeamID, Email: team.Email})
	if err != nil {
		slog.Error("failed to issue token", "error", err, "teamid", team.TeamID)
		middleware.WriteError(w, apperr.Persistence("Error during login", err))
		return
	}

	http.SetCookie(w, h.sessionCookie(r, token))

	slog.Info("team logged in", "teamid", team.TeamID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		Status:  models.StatusSuccess,
		TeamID:  team.TeamID,
		Token:   token,
	})
}

// Logout handles POST /logout. Tokens are stateless, so this only clears
// the session cookie; clients drop any bearer token they hold.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie(r, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Logout successful",
		Status:  models.StatusSuccess,
	})
}

func (h *AuthHandler) sessionCookie(r *http.Request, token string) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	// Zero ttl keeps it a session cookie
	if ttl := h.issuer.TTL(); ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}
