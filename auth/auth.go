// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
)

const teamIDPrefix = "team-"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateTeamID creates an opaque team identifier like "team-3f9a0c1b2d4e".
// Uniqueness is also enforced by the team table's primary key.
func GenerateTeamID() (string, error) {
	id, err := GenerateID(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate team ID: %w", err)
	}
	return teamIDPrefix + id, nil
}

// HashPassword returns a salted bcrypt hash of the password
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password against a bcrypt hash in constant time
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return ErrIncorrectPassword
	}
	return nil
}
