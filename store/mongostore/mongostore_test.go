// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongostore

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/auth"
	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// These tests need a running MongoDB, e.g.
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./store/mongostore
func newTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	suffix, _ := auth.GenerateID(6)
	ctx := context.Background()
	s, err := Open(ctx, uri, "ctf_test_"+suffix, 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to open mongo store: %v", err)
	}
	t.Cleanup(func() {
		s.Drop(context.Background())
		s.Close()
	})
	return s
}

func TestOpen_RequiresDatabase(t *testing.T) {
	if _, err := Open(context.Background(), "mongodb://localhost:27017", "", time.Second); err == nil {
		t.Error("expected error for empty database name")
	}
}

func TestCreateTeam(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	team := models.Team{TeamID: "team-abc", Email: "abc@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := s.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	got, err := s.GetTeamByEmail(ctx, "abc@example.com")
	if err != nil {
		t.Fatalf("GetTeamByEmail() error = %v", err)
	}
	if got.TeamID != "team-abc" {
		t.Errorf("expected team-abc, got %s", got.TeamID)
	}

	dup := models.Team{TeamID: "team-def", Email: "abc@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := s.CreateTeam(ctx, dup); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	if _, err := s.GetTeamByEmail(ctx, "none@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAwardChallenge_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := s.GetTeamScore(ctx, "team-abc"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any award, got %v", err)
	}

	awarded, err := s.AwardChallenge(ctx, "team-abc", "easy-1", 100, at)
	if err != nil || !awarded {
		t.Fatalf("first award: awarded=%v err=%v", awarded, err)
	}

	awarded, err = s.AwardChallenge(ctx, "team-abc", "easy-1", 100, at.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if awarded {
		t.Error("second award must be a no-op")
	}

	s.AwardChallenge(ctx, "team-abc", "medium-1", 200, at.Add(time.Minute))

	score, err := s.GetTeamScore(ctx, "team-abc")
	if err != nil {
		t.Fatal(err)
	}
	if score.Points != 300 {
		t.Errorf("expected 300 points, got %d", score.Points)
	}
	if len(score.CompletedChallenges) != 2 {
		t.Errorf("expected 2 completed challenges, got %v", score.CompletedChallenges)
	}
}

func TestAwardChallenge_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var awardedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			awarded, err := s.AwardChallenge(ctx, "team-race", "easy-1", 100, time.Now())
			if err != nil {
				t.Errorf("AwardChallenge() error = %v", err)
				return
			}
			if awarded {
				awardedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if awardedCount.Load() != 1 {
		t.Errorf("expected exactly 1 award, got %d", awardedCount.Load())
	}
	score, _ := s.GetTeamScore(ctx, "team-race")
	if score.Points != 100 {
		t.Errorf("expected 100 points, got %d", score.Points)
	}
}

func TestListTeamScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	s.AwardChallenge(ctx, "team-b", "medium-1", 200, t2)
	s.AwardChallenge(ctx, "team-a", "medium-2", 200, t1)
	s.AwardChallenge(ctx, "team-c", "easy-1", 100, t1)

	scores, err := s.ListTeamScores(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"team-a", "team-b", "team-c"}
	if len(scores) != len(want) {
		t.Fatalf("expected %d scores, got %d", len(want), len(scores))
	}
	for i, id := range want {
		if scores[i].TeamID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, scores[i].TeamID)
		}
	}

	teams, count, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if teams != 0 || count != 3 {
		t.Errorf("Counts() = (%d, %d), want (0, 3)", teams, count)
	}
}
