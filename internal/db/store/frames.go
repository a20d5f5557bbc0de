package store

import (
	"context"
	"database/sql"
)

type UpsertBowlingFrameParams struct {
	EntryID     int64
	FrameNumber int64
	Roll1       string
	Roll2       string
	Roll3       string
	Score       sql.NullInt64
}

func (q *Queries) UpsertBowlingFrame(ctx context.Context, arg UpsertBowlingFrameParams) error {
	const query = `
		INSERT INTO bowling_frames (entry_id, frame_number, roll1, roll2, roll3, score)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (entry_id, frame_number) DO UPDATE SET
			roll1 = excluded.roll1,
			roll2 = excluded.roll2,
			roll3 = excluded.roll3,
			score = excluded.score`
	_, err := q.db.ExecContext(ctx, query, arg.EntryID, arg.FrameNumber, arg.Roll1, arg.Roll2, arg.Roll3, arg.Score)
	return err
}

// ListBowlingFrames returns every stored frame of a match ordered by entry position and frame number.
func (q *Queries) ListBowlingFrames(ctx context.Context, matchID string) ([]BowlingFrame, error) {
	const query = `
		SELECT f.entry_id, f.frame_number, f.roll1, f.roll2, f.roll3, f.score
		FROM bowling_frames f
		JOIN match_entries e ON e.id = f.entry_id
		WHERE e.match_id = ?
		ORDER BY e.position, f.frame_number`
	var frames []BowlingFrame
	err := q.selectAll(ctx, &frames, query, matchID)
	return frames, err
}

// ListBowlingLeaderboardRows returns the totals of every completed bowling match.
func (q *Queries) ListBowlingLeaderboardRows(ctx context.Context) ([]BowlingLeaderboardRow, error) {
	const query = `
		SELECT e.match_id, e.player_id, p.name AS player_name, e.total, m.played_at
		FROM match_entries e
		JOIN matches m ON m.id = e.match_id
		JOIN players p ON p.id = e.player_id
		WHERE m.sport = ? AND m.status = ? AND e.total IS NOT NULL
		ORDER BY m.played_at, e.match_id, e.position`
	var rows []BowlingLeaderboardRow
	err := q.selectAll(ctx, &rows, query, SportBowling, MatchStatusCompleted)
	return rows, err
}
