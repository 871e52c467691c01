// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package answerkey holds the challenge → flag/points mapping.

The key is loaded once at startup and handed to the scoring service; it is
never mutated afterwards.

	key, err := answerkey.Load(cfg.AnswerKeyFile) // "" loads the built-in set

# File Format

A JSON array of entries:

	[
	  {"challengeId": "easy-1", "flag": "CTF{crypto_123}", "points": 100}
	]

Ids must be unique and non-empty, flags non-empty, points non-negative.
Missing points default to 0.

# Checking Flags

	entry, ok := key.Check("easy-1", submitted)

Comparison is exact (case and whitespace sensitive). Unknown ids never
match.
*/
package answerkey
