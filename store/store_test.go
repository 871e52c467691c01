// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"testing"
	"time"

	"github.com/danielhkuo/ctf-scoreboard/models"
)

func TestSortLeaderboard(t *testing.T) {
	t1 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	scores := []models.TeamScore{
		{TeamID: "team-b", Points: 200, LastUpdated: t2},
		{TeamID: "team-low", Points: 100, LastUpdated: t1},
		{TeamID: "team-a", Points: 200, LastUpdated: t1},
		{TeamID: "team-top", Points: 400, LastUpdated: t2},
		{TeamID: "team-c", Points: 200, LastUpdated: t2},
	}

	SortLeaderboard(scores)

	want := []string{"team-top", "team-a", "team-b", "team-c", "team-low"}
	for i, id := range want {
		if scores[i].TeamID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, scores[i].TeamID)
		}
	}
}

func TestCompareRank(t *testing.T) {
	t1 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	tests := []struct {
		name string
		a, b models.TeamScore
		want int
	}{
		{"more points first", models.TeamScore{Points: 300}, models.TeamScore{Points: 200}, -1},
		{"fewer points last", models.TeamScore{Points: 100}, models.TeamScore{Points: 200}, 1},
		{"earlier wins tie", models.TeamScore{Points: 200, LastUpdated: t1}, models.TeamScore{Points: 200, LastUpdated: t2}, -1},
		{"later loses tie", models.TeamScore{Points: 200, LastUpdated: t2}, models.TeamScore{Points: 200, LastUpdated: t1}, 1},
		{"identical", models.TeamScore{TeamID: "x", Points: 200, LastUpdated: t1}, models.TeamScore{TeamID: "x", Points: 200, LastUpdated: t1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareRank(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareRank() = %d, want %d", got, tt.want)
			}
		})
	}
}
