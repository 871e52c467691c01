// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides team identity: IDs, password hashing, and tokens.

# Team IDs

Teams get an opaque random identifier at signup:

	teamID, err := auth.GenerateTeamID() // "team-3f9a0c1b2d4e"

Random hex IDs of any length:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Passwords

Passwords are stored as salted bcrypt hashes and compared in constant time:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, password) // ErrIncorrectPassword on mismatch

bcrypt only looks at the first 72 bytes, so longer passwords are rejected
with ErrPasswordTooLong rather than silently truncated.

# Tokens

Credentials are stateless HS256 JWTs carrying the team ID and email:

	issuer, err := auth.NewTokenIssuer(secret, 24*time.Hour)
	token, err := issuer.Issue(auth.Identity{TeamID: id, Email: email})
	identity, err := issuer.Verify(token)

A zero TTL issues tokens that never expire. Verify returns ErrMissingToken
for an empty string and wraps ErrInvalidToken for anything malformed,
expired, signed with another secret, or using another algorithm.

Nothing is stored server-side, so logging out only discards the token on
the client (and clears the session cookie).
*/
package auth
