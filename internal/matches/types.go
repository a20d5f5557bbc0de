package matches

import (
	"errors"
	"fmt"
	"time"

	"github.com/codr1/matchtrack/internal/bowling"
)

const maxEntries = 6

var (
	ErrNotFound       = errors.New("match not found")
	ErrUnknownPlayer  = errors.New("player not found")
	ErrMatchCompleted = errors.New("match is already completed")
	ErrRollRejected   = errors.New("roll must be a whole number from 0 to 10")
	ErrWrongSport     = errors.New("match is not a bowling match")
)

// FieldError reports an input field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type EntryInput struct {
	PlayerID int64          `json:"playerId"`
	Label    string         `json:"label"`
	Frames   bowling.Frames `json:"frames"`
}

type CreateBowlingInput struct {
	PlayedAt       time.Time
	Entries        []EntryInput
	Complete       bool
	FillIncomplete bool
}

type SetRollInput struct {
	Entry int    `json:"entry"` // 0-based position in the match
	Frame int    `json:"frame"` // 1-based
	Roll  int    `json:"roll"`  // 1-based
	Value string `json:"value"`
}

type MatchView struct {
	ID            string      `json:"id"`
	Sport         string      `json:"sport"`
	Status        string      `json:"status"`
	PlayedAt      time.Time   `json:"playedAt"`
	PlayedAtLocal string      `json:"playedAtLocal,omitempty"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
	Entries       []EntryView `json:"entries"`
}

type EntryView struct {
	ID            int64                    `json:"-"`
	PlayerID      int64                    `json:"playerId"`
	PlayerName    string                   `json:"playerName"`
	Label         string                   `json:"label"`
	Position      int                      `json:"position"`
	Frames        bowling.Frames           `json:"frames"`
	RunningTotals [bowling.FrameCount]*int `json:"runningTotals"`
	PreviewTotal  int                      `json:"previewTotal"`
	Total         *int                     `json:"total"`
	Message       string                   `json:"message,omitempty"`
}

func (e EntryView) entry() bowling.Entry {
	return bowling.Entry{PlayerID: e.PlayerID, Label: e.Label, Frames: e.Frames}
}
