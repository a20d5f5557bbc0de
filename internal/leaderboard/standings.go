// Package leaderboard ranks bowlers by their completed games.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/codr1/matchtrack/internal/db/store"
)

type BowlingStanding struct {
	Rank       int     `json:"rank"`
	PlayerID   int64   `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	Average    float64 `json:"average"`
	HighGame   int     `json:"highGame"`
	TotalPins  int     `json:"totalPins"`
}

// RowSource is the query the standings are built from.
type RowSource interface {
	ListBowlingLeaderboardRows(ctx context.Context) ([]store.BowlingLeaderboardRow, error)
}

func CalculateBowlingStandings(ctx context.Context, q RowSource) ([]BowlingStanding, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	rows, err := q.ListBowlingLeaderboardRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard rows: %w", err)
	}
	return BuildBowlingStandings(rows), nil
}

// BuildBowlingStandings aggregates completed game totals per player. A win is
// the highest total in a match with at least two entries; tied leaders each
// take the win.
func BuildBowlingStandings(rows []store.BowlingLeaderboardRow) []BowlingStanding {
	players := make(map[int64]*BowlingStanding)
	byMatch := make(map[string][]store.BowlingLeaderboardRow)
	var matchOrder []string

	for _, row := range rows {
		entry, ok := players[row.PlayerID]
		if !ok {
			entry = &BowlingStanding{PlayerID: row.PlayerID, PlayerName: row.PlayerName}
			players[row.PlayerID] = entry
		}
		total := int(row.Total)
		entry.Games++
		entry.TotalPins += total
		if total > entry.HighGame {
			entry.HighGame = total
		}

		if _, seen := byMatch[row.MatchID]; !seen {
			matchOrder = append(matchOrder, row.MatchID)
		}
		byMatch[row.MatchID] = append(byMatch[row.MatchID], row)
	}

	for _, matchID := range matchOrder {
		entries := byMatch[matchID]
		if len(entries) < 2 {
			continue
		}
		best := entries[0].Total
		for _, e := range entries[1:] {
			if e.Total > best {
				best = e.Total
			}
		}
		for _, e := range entries {
			if e.Total == best {
				players[e.PlayerID].Wins++
			}
		}
	}

	ordered := make([]BowlingStanding, 0, len(players))
	for _, player := range players {
		player.Average = average(player.TotalPins, player.Games)
		ordered = append(ordered, *player)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.HighGame != b.HighGame {
			return a.HighGame > b.HighGame
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.PlayerID < b.PlayerID
	})

	for i := range ordered {
		ordered[i].Rank = i + 1
	}
	return ordered
}

// average truncates to two decimal places.
func average(pins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(pins*100/games) / 100
}
