package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/codr1/matchtrack/internal/bowling"
	"github.com/codr1/matchtrack/internal/db/store"
)

func matchView(row store.Match) MatchView {
	view := MatchView{
		ID:       row.ID,
		Sport:    row.Sport,
		Status:   row.Status,
		PlayedAt: row.PlayedAt,
		Entries:  []EntryView{},
	}
	if row.CompletedAt.Valid {
		completedAt := row.CompletedAt.Time
		view.CompletedAt = &completedAt
	}
	return view
}

func loadMatch(ctx context.Context, q *store.Queries, id string) (MatchView, error) {
	row, err := q.GetMatch(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return MatchView{}, ErrNotFound
		}
		return MatchView{}, fmt.Errorf("load match %s: %w", id, err)
	}
	entries, err := q.ListMatchEntries(ctx, id)
	if err != nil {
		return MatchView{}, fmt.Errorf("load entries for match %s: %w", id, err)
	}
	frameRows, err := q.ListBowlingFrames(ctx, id)
	if err != nil {
		return MatchView{}, fmt.Errorf("load frames for match %s: %w", id, err)
	}

	byEntry := make(map[int64]bowling.Frames, len(entries))
	for _, f := range frameRows {
		index := int(f.FrameNumber) - 1
		if index < 0 || index >= bowling.FrameCount {
			continue
		}
		frames := byEntry[f.EntryID]
		frame := bowling.Frame{f.Roll1, f.Roll2}
		if index == bowling.FrameCount-1 {
			frame = append(frame, f.Roll3)
		}
		frames[index] = frame
		byEntry[f.EntryID] = frames
	}

	view := matchView(row)
	for _, entry := range entries {
		ev := EntryView{
			ID:         entry.ID,
			PlayerID:   entry.PlayerID,
			PlayerName: entry.PlayerName,
			Label:      entry.Label,
			Position:   int(entry.Position),
			Frames:     byEntry[entry.ID],
			Total:      store.IntFromNull(entry.Total),
		}
		for i := range ev.Frames {
			if ev.Frames[i] == nil {
				ev.Frames[i] = make(bowling.Frame, bowling.MaxRolls(i))
			}
		}
		view.Entries = append(view.Entries, withPreview(ev))
	}
	return view, nil
}

// withPreview fills in running totals. Completed entries keep their stored total.
func withPreview(entry EntryView) EntryView {
	preview := bowling.Preview(entry.Frames, entry.Label)
	entry.RunningTotals = preview.Frames
	entry.PreviewTotal = preview.Total
	entry.Message = preview.Message()
	return entry
}

func savePreviewEntry(ctx context.Context, q *store.Queries, entry EntryView) error {
	preview := bowling.Preview(entry.Frames, entry.Label)
	for i, frame := range entry.Frames {
		if err := q.UpsertBowlingFrame(ctx, store.UpsertBowlingFrameParams{
			EntryID:     entry.ID,
			FrameNumber: int64(i + 1),
			Roll1:       frame.Roll(0),
			Roll2:       frame.Roll(1),
			Roll3:       frame.Roll(2),
			Score:       store.NullInt64(preview.Frames[i]),
		}); err != nil {
			return fmt.Errorf("save frame %d for entry %d: %w", i+1, entry.ID, err)
		}
	}
	return nil
}

func saveScoredEntry(ctx context.Context, q *store.Queries, entry EntryView, result bowling.EntryResult) error {
	for i, frame := range entry.Frames {
		score := result.Frames[i].Score
		if err := q.UpsertBowlingFrame(ctx, store.UpsertBowlingFrameParams{
			EntryID:     entry.ID,
			FrameNumber: int64(i + 1),
			Roll1:       frame.Roll(0),
			Roll2:       frame.Roll(1),
			Roll3:       frame.Roll(2),
			Score:       store.NullInt64(&score),
		}); err != nil {
			return fmt.Errorf("save frame %d for entry %d: %w", i+1, entry.ID, err)
		}
	}
	total := result.Total
	if err := q.UpdateEntryTotal(ctx, entry.ID, store.NullInt64(&total)); err != nil {
		return fmt.Errorf("save total for entry %d: %w", entry.ID, err)
	}
	return nil
}
