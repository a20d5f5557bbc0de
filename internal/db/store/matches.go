package store

import (
	"context"
	"database/sql"
	"time"
)

const matchColumns = `id, sport, status, played_at, created_at, updated_at, completed_at`

type CreateMatchParams struct {
	ID       string
	Sport    string
	Status   string
	PlayedAt time.Time
	Now      time.Time
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error) {
	const query = `
		INSERT INTO matches (id, sport, status, played_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + matchColumns
	var match Match
	err := q.get(ctx, &match, query, arg.ID, arg.Sport, arg.Status, arg.PlayedAt, arg.Now, arg.Now)
	return match, err
}

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`
	var match Match
	err := q.get(ctx, &match, query, id)
	return match, err
}

type ListMatchesParams struct {
	Sport  string
	Status string
	Limit  int64
}

// ListMatches returns the most recently played matches. Empty filters match everything.
func (q *Queries) ListMatches(ctx context.Context, arg ListMatchesParams) ([]Match, error) {
	const query = `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE (? = '' OR sport = ?)
		  AND (? = '' OR status = ?)
		ORDER BY played_at DESC, id
		LIMIT ?`
	var matches []Match
	err := q.selectAll(ctx, &matches, query, arg.Sport, arg.Sport, arg.Status, arg.Status, arg.Limit)
	return matches, err
}

func (q *Queries) TouchMatch(ctx context.Context, id string, now time.Time) error {
	return q.execOne(ctx, `UPDATE matches SET updated_at = ? WHERE id = ?`, now, id)
}

func (q *Queries) CompleteMatch(ctx context.Context, id string, now time.Time) error {
	const query = `
		UPDATE matches
		SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`
	return q.execOne(ctx, query, MatchStatusCompleted, now, now, id)
}

func (q *Queries) DeleteMatch(ctx context.Context, id string) error {
	return q.execOne(ctx, `DELETE FROM matches WHERE id = ?`, id)
}

// DeleteStaleMatches removes matches in status that were last touched before cutoff.
func (q *Queries) DeleteStaleMatches(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM matches WHERE status = ? AND updated_at < ?`, status, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type CreateMatchEntryParams struct {
	MatchID  string
	PlayerID int64
	Position int64
	Label    string
}

func (q *Queries) CreateMatchEntry(ctx context.Context, arg CreateMatchEntryParams) (int64, error) {
	const query = `
		INSERT INTO match_entries (match_id, player_id, position, label)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	var id int64
	err := q.get(ctx, &id, query, arg.MatchID, arg.PlayerID, arg.Position, arg.Label)
	return id, err
}

func (q *Queries) ListMatchEntries(ctx context.Context, matchID string) ([]MatchEntry, error) {
	const query = `
		SELECT e.id, e.match_id, e.player_id, p.name AS player_name, e.position, e.label, e.total
		FROM match_entries e
		JOIN players p ON p.id = e.player_id
		WHERE e.match_id = ?
		ORDER BY e.position`
	var entries []MatchEntry
	err := q.selectAll(ctx, &entries, query, matchID)
	return entries, err
}

func (q *Queries) UpdateEntryTotal(ctx context.Context, entryID int64, total sql.NullInt64) error {
	return q.execOne(ctx, `UPDATE match_entries SET total = ? WHERE id = ?`, total, entryID)
}
