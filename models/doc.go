// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
scoreboard API.

# Request Types

Incoming JSON bodies:

  - SignupRequest: email and password for a new team
  - LoginRequest: email and password for an existing team
  - SubmitFlagRequest: challengeId and flag

# Response Types

  - MessageResponse: {message, status} for signup-style acknowledgements
  - SignupResponse: adds the assigned teamid
  - LoginResponse: adds teamid and the bearer token
  - SubmitFlagResponse: {message, status} where status is a boolean verdict
  - ErrorResponse: {error, message, status: "error"}

# Domain Types

Team is the identity record. PasswordHash never leaves the server:

	type Team struct {
		TeamID       string
		Email        string
		PasswordHash string `json:"-"`
		CreatedAt    time.Time
	}

TeamScore is a team's progress:

	type TeamScore struct {
		TeamID              string    `json:"teamid"`
		Points              int       `json:"points"`
		CompletedChallenges []string  `json:"completedChallenges"`
		LastUpdated         time.Time `json:"lastUpdated,omitzero"`
	}

Points always equals the sum of the answer-key points of every id in
CompletedChallenges. A team that has never solved anything has no
TeamScore record; EmptyTeamScore builds the zero value served to it.
*/
package models
