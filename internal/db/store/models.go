package store

import (
	"database/sql"
	"time"
)

const (
	SportBowling        = "bowling"
	SportPadel          = "padel"
	SportPickleball     = "pickleball"
	SportTableTennis    = "table_tennis"
	SportPadelAmericano = "padel_americano"

	MatchStatusInProgress = "in_progress"
	MatchStatusCompleted  = "completed"
)

type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Locale    string    `db:"locale" json:"locale,omitempty"`
	Timezone  string    `db:"timezone" json:"timezone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Match struct {
	ID          string       `db:"id"`
	Sport       string       `db:"sport"`
	Status      string       `db:"status"`
	PlayedAt    time.Time    `db:"played_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

type MatchEntry struct {
	ID         int64         `db:"id"`
	MatchID    string        `db:"match_id"`
	PlayerID   int64         `db:"player_id"`
	PlayerName string        `db:"player_name"`
	Position   int64         `db:"position"`
	Label      string        `db:"label"`
	Total      sql.NullInt64 `db:"total"`
}

type BowlingFrame struct {
	EntryID     int64         `db:"entry_id"`
	FrameNumber int64         `db:"frame_number"`
	Roll1       string        `db:"roll1"`
	Roll2       string        `db:"roll2"`
	Roll3       string        `db:"roll3"`
	Score       sql.NullInt64 `db:"score"`
}

type BowlingLeaderboardRow struct {
	MatchID    string    `db:"match_id"`
	PlayerID   int64     `db:"player_id"`
	PlayerName string    `db:"player_name"`
	Total      int64     `db:"total"`
	PlayedAt   time.Time `db:"played_at"`
}
