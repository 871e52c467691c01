// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("token secret must not be empty")
)

// Identity is the caller a credential resolves to
type Identity struct {
	TeamID string
	Email  string
}

// Claims is the JWT payload
type Claims struct {
	TeamID string `json:"teamid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 team tokens.
// A zero ttl issues tokens without an expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", ttl)
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for the team
func (i *TokenIssuer) Issue(id Identity) (string, error) {
	now := i.now()
	claims := Claims{
		TeamID: id.TeamID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  id.TeamID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the team identity.
// An empty token yields ErrMissingToken; anything else that fails yields
// an error wrapping ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.TeamID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{TeamID: claims.TeamID, Email: claims.Email}, nil
}

// TTL returns the configured token lifetime (0 = never expires)
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}
