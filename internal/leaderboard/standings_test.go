package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codr1/matchtrack/internal/db/store"
)

type fakeRows struct {
	rows []store.BowlingLeaderboardRow
	err  error
}

func (f fakeRows) ListBowlingLeaderboardRows(context.Context) ([]store.BowlingLeaderboardRow, error) {
	return f.rows, f.err
}

func row(matchID string, playerID int64, name string, total int64) store.BowlingLeaderboardRow {
	return store.BowlingLeaderboardRow{
		MatchID:    matchID,
		PlayerID:   playerID,
		PlayerName: name,
		Total:      total,
		PlayedAt:   time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC),
	}
}

func TestBuildBowlingStandings(t *testing.T) {
	rows := []store.BowlingLeaderboardRow{
		row("m1", 1, "Alice", 180),
		row("m1", 2, "Bob", 150),
		row("m2", 1, "Alice", 120),
		row("m2", 2, "Bob", 200),
		row("m3", 3, "Cara", 175),
	}

	got := BuildBowlingStandings(rows)
	// Bob and Cara share an average; the higher game ranks first.
	want := []BowlingStanding{
		{Rank: 1, PlayerID: 2, PlayerName: "Bob", Games: 2, Wins: 1, Average: 175, HighGame: 200, TotalPins: 350},
		{Rank: 2, PlayerID: 3, PlayerName: "Cara", Games: 1, Wins: 0, Average: 175, HighGame: 175, TotalPins: 175},
		{Rank: 3, PlayerID: 1, PlayerName: "Alice", Games: 2, Wins: 1, Average: 150, HighGame: 180, TotalPins: 300},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBowlingStandingsTiedWinners(t *testing.T) {
	rows := []store.BowlingLeaderboardRow{
		row("m1", 1, "Alice", 160),
		row("m1", 2, "Bob", 160),
		row("m1", 3, "Cara", 90),
	}

	got := BuildBowlingStandings(rows)
	wins := map[string]int{}
	for _, s := range got {
		wins[s.PlayerName] = s.Wins
	}
	if diff := cmp.Diff(map[string]int{"Alice": 1, "Bob": 1, "Cara": 0}, wins); diff != "" {
		t.Fatalf("wins mismatch (-want +got):\n%s", diff)
	}
	if got[0].PlayerName != "Alice" || got[1].PlayerName != "Bob" {
		t.Fatalf("tie should fall back to name order, got %s then %s", got[0].PlayerName, got[1].PlayerName)
	}
}

func TestBuildBowlingStandingsAverageTruncates(t *testing.T) {
	rows := []store.BowlingLeaderboardRow{
		row("m1", 1, "Alice", 100),
		row("m2", 1, "Alice", 101),
		row("m3", 1, "Alice", 101),
	}
	got := BuildBowlingStandings(rows)
	if len(got) != 1 {
		t.Fatalf("standings = %d, want 1", len(got))
	}
	if got[0].Average != 100.66 {
		t.Fatalf("average = %v, want 100.66", got[0].Average)
	}
}

func TestCalculateBowlingStandingsErrors(t *testing.T) {
	if _, err := CalculateBowlingStandings(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil queries")
	}

	boom := errors.New("boom")
	if _, err := CalculateBowlingStandings(context.Background(), fakeRows{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}

	got, err := CalculateBowlingStandings(context.Background(), fakeRows{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("standings = %d, want empty", len(got))
	}
}
