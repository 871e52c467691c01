// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Response status values used by the identity endpoints
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request types

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SubmitFlagRequest struct {
	ChallengeID string `json:"challengeId"`
	Flag        string `json:"flag"`
}

// Response types

type MessageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type SignupResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	TeamID  string `json:"teamid"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	TeamID  string `json:"teamid"`
	Token   string `json:"token"`
}

// Status is a bool here: true for an accepted flag, false otherwise.
type SubmitFlagResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// Domain types

type Team struct {
	TeamID       string    `json:"teamid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// TeamScore is a team's progress. It only exists once the team has solved
// at least one challenge.
type TeamScore struct {
	TeamID              string    `json:"teamid"`
	Points              int       `json:"points"`
	CompletedChallenges []string  `json:"completedChallenges"`
	LastUpdated         time.Time `json:"lastUpdated,omitzero"`
}

// EmptyTeamScore is what a team without any solve sees.
func EmptyTeamScore(teamID string) TeamScore {
	return TeamScore{
		TeamID:              teamID,
		Points:              0,
		CompletedChallenges: []string{},
	}
}

// HasCompleted reports whether challengeID is already in the completed set.
func (s TeamScore) HasCompleted(challengeID string) bool {
	for _, id := range s.CompletedChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}
