// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ctf-scoreboard/apperr"
	"github.com/danielhkuo/ctf-scoreboard/middleware"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/scoring"
)

type ScoreHandler struct {
	svc *scoring.Service
}

func NewScoreHandler(svc *scoring.Service) *ScoreHandler {
	return &ScoreHandler{svc: svc}
}

// TeamScore handles GET /team-score (requires team token)
func (h *ScoreHandler) TeamScore(w http.ResponseWriter, r *http.Request) {
	team, ok := middleware.TeamFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, apperr.Unauthenticated("Not authenticated"))
		return
	}

	score, err := h.svc.TeamScore(r.Context(), team.TeamID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, score)
}

// SubmitFlag handles POST /submit-flag (requires team token)
func (h *ScoreHandler) SubmitFlag(w http.ResponseWriter, r *http.Request) {
	team, ok := middleware.TeamFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, apperr.Unauthenticated("Not authenticated"))
		return
	}

	var req models.SubmitFlagRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ChallengeID == "" || req.Flag == "" {
		middleware.WriteError(w, apperr.Validation("Missing required fields"))
		return
	}

	slog.Info("flag submitted", "teamid", team.TeamID, "challenge_id", req.ChallengeID)

	verdict, err := h.svc.Submit(r.Context(), team.TeamID, req.ChallengeID, req.Flag)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if !verdict.Correct {
		middleware.JSONResponse(w, http.StatusOK, models.SubmitFlagResponse{
			Message: "Incorrect flag",
			Status:  false,
		})
		return
	}

	// Same answer whether or not this submission awarded points
	middleware.JSONResponse(w, http.StatusOK, models.SubmitFlagResponse{
		Message: "Flag submitted successfully!",
		Status:  true,
	})
}

// Leaderboard handles GET /leaderboard (public)
func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.Leaderboard(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if scores == nil {
		scores = []models.TeamScore{}
	}

	slog.Debug("leaderboard served", "entries", len(scores))
	middleware.JSONResponse(w, http.StatusOK, scores)
}
