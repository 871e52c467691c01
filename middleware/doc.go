// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Authentication Gate

RequireTeam verifies the team token before the handler runs:

	gate := middleware.RequireTeam(issuer)
	mux.HandleFunc("POST /submit-flag", middleware.WithLogging(gate(h.SubmitFlag)))

The token is read from "Authorization: Bearer <jwt>", falling back to the
ctf_token cookie. No credential answers 401, a bad or expired one 403.
Handlers read the caller with TeamFromContext.

# CORS Middleware

Enable cross-origin requests for the configured frontend origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type, Authorization
and credentials. Preflight requests answer 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err) // status from apperr kind

Parse JSON request bodies:

	var req models.SubmitFlagRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used for request and auth logs.
*/
package middleware
