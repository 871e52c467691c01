// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package answerkey

import (
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed default.json
var defaultKey []byte

var (
	ErrEmptyKey         = errors.New("answer key has no challenges")
	ErrInvalidEntry     = errors.New("invalid answer key entry")
	ErrDuplicateID      = errors.New("duplicate challenge id")
	ErrUnknownChallenge = errors.New("unknown challenge")
)

// Entry is one challenge in the answer key.
type Entry struct {
	ChallengeID string `json:"challengeId"`
	Flag        string `json:"flag"`
	Points      int    `json:"points"`
}

// Key is the read-only challenge → flag/points mapping. The zero value is
// an empty key; build one with New, Load or Default.
type Key struct {
	entries map[string]Entry
}

// New validates entries and builds a Key. Entries are copied.
func New(entries []Entry) (*Key, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyKey
	}

	m := make(map[string]Entry, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.ChallengeID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d has no challengeId", ErrInvalidEntry, i)
		}
		if e.Flag == "" {
			return nil, fmt.Errorf("%w: %s has no flag", ErrInvalidEntry, id)
		}
		if e.Points < 0 {
			return nil, fmt.Errorf("%w: %s has negative points", ErrInvalidEntry, id)
		}
		if _, exists := m[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		m[id] = Entry{ChallengeID: id, Flag: e.Flag, Points: e.Points}
	}

	return &Key{entries: m}, nil
}

// Parse decodes a JSON array of entries.
func Parse(r io.Reader) (*Key, error) {
	var entries []Entry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode answer key: %w", err)
	}
	return New(entries)
}

// Load reads the answer key from a JSON file. An empty path loads the
// built-in challenge set.
func Load(path string) (*Key, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open answer key: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Default returns the built-in challenge set.
func Default() (*Key, error) {
	return Parse(strings.NewReader(string(defaultKey)))
}

// Check reports whether flag is the exact flag for challengeID.
// Unknown challenges never match.
func (k *Key) Check(challengeID, flag string) (Entry, bool) {
	e, ok := k.entries[challengeID]
	if !ok {
		return Entry{}, false
	}
	if subtle.ConstantTimeCompare([]byte(e.Flag), []byte(flag)) != 1 {
		return e, false
	}
	return e, true
}

// Points returns the point value of a challenge.
func (k *Key) Points(challengeID string) (int, error) {
	e, ok := k.entries[challengeID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownChallenge, challengeID)
	}
	return e.Points, nil
}

// Len returns the number of challenges.
func (k *Key) Len() int {
	return len(k.entries)
}

// IDs returns all challenge ids, sorted.
func (k *Key) IDs() []string {
	ids := make([]string, 0, len(k.entries))
	for id := range k.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalPoints is the maximum score a team can reach.
func (k *Key) TotalPoints() int {
	total := 0
	for _, e := range k.entries {
		total += e.Points
	}
	return total
}
