// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"6 bytes", 6, 12},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateTeamID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateTeamID()
		if err != nil {
			t.Fatalf("GenerateTeamID() error = %v", err)
		}
		if !strings.HasPrefix(id, "team-") {
			t.Errorf("expected team- prefix, got %q", id)
		}
		if len(id) != len("team-")+12 {
			t.Errorf("unexpected team ID length %d for %q", len(id), id)
		}
		if seen[id] {
			t.Errorf("duplicate team ID %q", id)
		}
		seen[id] = true
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "hunter22" {
		t.Error("hash must not equal the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}

	// Salted: hashing twice gives different outputs
	hash2, _ := HashPassword("hunter22")
	if hash == hash2 {
		t.Error("expected different hashes for the same password")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}

	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword() with correct password error = %v", err)
	}

	tests := []string{"", "correct", "Correct horse", "correct horse "}
	for _, pw := range tests {
		if err := CheckPassword(hash, pw); !errors.Is(err, ErrIncorrectPassword) {
			t.Errorf("CheckPassword(%q) error = %v, want ErrIncorrectPassword", pw, err)
		}
	}

	if err := CheckPassword("not-a-hash", "anything"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("expected ErrIncorrectPassword for malformed hash, got %v", err)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNewTokenIssuer(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
	if _, err := NewTokenIssuer("secret", -time.Second); err == nil {
		t.Error("expected error for negative ttl")
	}
	if _, err := NewTokenIssuer("secret", 0); err != nil {
		t.Errorf("zero ttl should be allowed, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := issuer.Issue(Identity{TeamID: "team-abc", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a JWT with three segments, got %q", token)
	}

	id, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.TeamID != "team-abc" || id.Email != "a@example.com" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestVerify_Missing(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)
	if _, err := issuer.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestVerify_Invalid(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)
	other, _ := NewTokenIssuer("other-secret", time.Hour)

	foreign, _ := other.Issue(Identity{TeamID: "team-abc"})
	valid, _ := issuer.Issue(Identity{TeamID: "team-abc"})
	evil, _ := issuer.Issue(Identity{TeamID: "team-evil"})
	validParts := strings.Split(valid, ".")
	evilParts := strings.Split(evil, ".")
	tampered := validParts[0] + "." + evilParts[1] + "." + validParts[2]

	// HS512 with the right secret is still rejected: only HS256 is accepted
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{TeamID: "team-abc"}).
		SignedString([]byte("test-secret"))
	noTeam, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "x@example.com"}).
		SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"tampered payload", tampered},
		{"wrong algorithm", hs512},
		{"missing team id", noTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue(Identity{TeamID: "team-abc"})
	if err != nil {
		t.Fatal(err)
	}

	issuer.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("token should still be valid, got %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be invalid, got %v", err)
	}
}

func TestVerify_NoExpiry(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", 0)
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, _ := issuer.Issue(Identity{TeamID: "team-abc"})

	issuer.now = func() time.Time { return issued.AddDate(5, 0, 0) }
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("token without ttl should never expire, got %v", err)
	}
}
