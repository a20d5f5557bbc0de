package store

import (
	"context"
	"time"
)

const playerColumns = `id, name, phone, locale, timezone, created_at, updated_at`

type CreatePlayerParams struct {
	Name     string
	Phone    string
	Locale   string
	Timezone string
	Now      time.Time
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) (Player, error) {
	const query = `
		INSERT INTO players (name, phone, locale, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + playerColumns
	var player Player
	err := q.get(ctx, &player, query, arg.Name, arg.Phone, arg.Locale, arg.Timezone, arg.Now, arg.Now)
	return player, err
}

func (q *Queries) GetPlayer(ctx context.Context, id int64) (Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players WHERE id = ?`
	var player Player
	err := q.get(ctx, &player, query, id)
	return player, err
}

func (q *Queries) ListPlayers(ctx context.Context) ([]Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players ORDER BY name`
	var players []Player
	err := q.selectAll(ctx, &players, query)
	return players, err
}
