// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/ctf-scoreboard/apperr"
	"github.com/danielhkuo/ctf-scoreboard/auth"
)

// TokenCookie is the session cookie set on login
const TokenCookie = "ctf_token"

type contextKey struct{}

var teamKey contextKey

// RequireTeam rejects requests without a valid team token and stores the
// resolved identity in the request context.
//
// A missing credential is 401; a present but bad one is 403.
func RequireTeam(issuer *auth.TokenIssuer) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, err := issuer.Verify(TokenFromRequest(r))
			if errors.Is(err, auth.ErrMissingToken) {
				WriteError(w, apperr.Unauthenticated("Not authenticated"))
				return
			}
			if err != nil {
				slog.Info("rejected token", "error", err, "remote", GetClientIP(r))
				WriteError(w, apperr.InvalidCredential("Token invalid", err))
				return
			}

			next(w, r.WithContext(WithTeam(r.Context(), id)))
		}
	}
}

// TokenFromRequest returns the bearer token, or the session cookie when no
// Authorization header is sent.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithTeam(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, teamKey, id)
}

// TeamFromContext returns the identity set by RequireTeam
func TeamFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(teamKey).(auth.Identity)
	return id, ok
}
