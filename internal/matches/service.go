// Package matches records bowling matches and keeps their scores current as rolls come in.
package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/bowling"
	appdb "github.com/codr1/matchtrack/internal/db"
	"github.com/codr1/matchtrack/internal/db/store"
)

type Service struct {
	db    *appdb.DB
	now   func() time.Time
	newID func() string
}

func NewService(database *appdb.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("match service requires a database")
	}
	return &Service{
		db:    database,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID: uuid.NewString,
	}, nil
}

// CreateBowlingMatch stores a new match. With Complete set every entry is
// scored strictly and the match is closed; otherwise it stays in progress
// and entries carry live preview totals.
func (s *Service) CreateBowlingMatch(ctx context.Context, input CreateBowlingInput) (MatchView, error) {
	if len(input.Entries) == 0 || len(input.Entries) > maxEntries {
		return MatchView{}, FieldError{Field: "entries", Reason: fmt.Sprintf("must contain between 1 and %d players", maxEntries)}
	}

	logger := log.Ctx(ctx).With().Str("component", "matches_service").Logger()
	now := s.now()
	playedAt := input.PlayedAt
	if playedAt.IsZero() {
		playedAt = now
	}

	entries := make([]EntryView, 0, len(input.Entries))
	seen := make(map[int64]struct{}, len(input.Entries))
	for i, in := range input.Entries {
		if in.PlayerID <= 0 {
			return MatchView{}, FieldError{Field: fmt.Sprintf("entries[%d].playerId", i), Reason: "is required"}
		}
		if _, dup := seen[in.PlayerID]; dup {
			return MatchView{}, FieldError{Field: fmt.Sprintf("entries[%d].playerId", i), Reason: "appears more than once"}
		}
		seen[in.PlayerID] = struct{}{}

		player, err := s.db.Queries.GetPlayer(ctx, in.PlayerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return MatchView{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, in.PlayerID)
			}
			return MatchView{}, fmt.Errorf("load player %d: %w", in.PlayerID, err)
		}

		frames, err := sanitizeEntryFrames(i, in.Frames)
		if err != nil {
			return MatchView{}, err
		}
		label := in.Label
		if label == "" {
			label = player.Name
		}
		entries = append(entries, EntryView{
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Label:      label,
			Position:   i,
			Frames:     frames,
		})
	}

	results := make([]bowling.EntryResult, len(entries))
	for i := range entries {
		entry := entries[i].entry()
		if err := bowling.ValidateEntry(entry); err != nil {
			return MatchView{}, err
		}
		if !input.Complete {
			continue
		}
		result, err := bowling.BuildResult(entry, bowling.SummaryOptions{FillIncomplete: input.FillIncomplete})
		if err != nil {
			return MatchView{}, labelError(entry.Label, err)
		}
		results[i] = result
		if input.FillIncomplete {
			entries[i].Frames = bowling.Normalize(entries[i].Frames)
		}
	}

	matchID := s.newID()
	status := store.MatchStatusInProgress
	if input.Complete {
		status = store.MatchStatusCompleted
	}

	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		if _, err := txdb.Queries.CreateMatch(ctx, store.CreateMatchParams{
			ID:       matchID,
			Sport:    store.SportBowling,
			Status:   store.MatchStatusInProgress,
			PlayedAt: playedAt,
			Now:      now,
		}); err != nil {
			return fmt.Errorf("create match: %w", err)
		}

		for i := range entries {
			entryID, err := txdb.Queries.CreateMatchEntry(ctx, store.CreateMatchEntryParams{
				MatchID:  matchID,
				PlayerID: entries[i].PlayerID,
				Position: int64(entries[i].Position),
				Label:    entries[i].Label,
			})
			if err != nil {
				return fmt.Errorf("create entry %d: %w", i, err)
			}
			entries[i].ID = entryID

			if input.Complete {
				if err := saveScoredEntry(ctx, txdb.Queries, entries[i], results[i]); err != nil {
					return err
				}
				continue
			}
			if err := savePreviewEntry(ctx, txdb.Queries, entries[i]); err != nil {
				return err
			}
		}

		if input.Complete {
			if err := txdb.Queries.CompleteMatch(ctx, matchID, now); err != nil {
				return fmt.Errorf("complete match: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to create bowling match")
		return MatchView{}, err
	}

	logger.Info().
		Str("match_id", matchID).
		Str("status", status).
		Int("entry_count", len(entries)).
		Msg("Bowling match created")

	return s.GetMatch(ctx, matchID)
}

// GetMatch loads a match with its entries, frames and live preview totals.
func (s *Service) GetMatch(ctx context.Context, id string) (MatchView, error) {
	return loadMatch(ctx, s.db.Queries, id)
}

// ListMatches returns recent matches with entry totals but without live previews.
func (s *Service) ListMatches(ctx context.Context, params store.ListMatchesParams) ([]MatchView, error) {
	rows, err := s.db.Queries.ListMatches(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	views := make([]MatchView, 0, len(rows))
	for _, row := range rows {
		entries, err := s.db.Queries.ListMatchEntries(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("list entries for match %s: %w", row.ID, err)
		}
		view := matchView(row)
		for _, entry := range entries {
			view.Entries = append(view.Entries, EntryView{
				ID:         entry.ID,
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Label:      entry.Label,
				Position:   int(entry.Position),
				Total:      store.IntFromNull(entry.Total),
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// SetRoll writes a single roll. Input that does not sanitize is rejected and
// the stored roll is left unchanged. A sanitized value is always stored; any
// rule it breaks is reported on the returned entry until it is corrected.
func (s *Service) SetRoll(ctx context.Context, matchID string, input SetRollInput) (EntryView, error) {
	value, ok := bowling.SanitizeRoll(input.Value)
	if !ok {
		return EntryView{}, ErrRollRejected
	}
	if input.Frame < 1 || input.Frame > bowling.FrameCount {
		return EntryView{}, FieldError{Field: "frame", Reason: "must be between 1 and 10"}
	}
	frameIndex := input.Frame - 1
	if input.Roll < 1 || input.Roll > bowling.MaxRolls(frameIndex) {
		return EntryView{}, FieldError{Field: "roll", Reason: fmt.Sprintf("must be between 1 and %d", bowling.MaxRolls(frameIndex))}
	}

	var updated EntryView
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		match, err := loadMatch(ctx, txdb.Queries, matchID)
		if err != nil {
			return err
		}
		if match.Sport != store.SportBowling {
			return ErrWrongSport
		}
		if match.Status == store.MatchStatusCompleted {
			return ErrMatchCompleted
		}
		if input.Entry < 0 || input.Entry >= len(match.Entries) {
			return FieldError{Field: "entry", Reason: "does not exist in this match"}
		}

		entry := match.Entries[input.Entry]
		frames := entry.Frames.Clone()
		frame := make(bowling.Frame, bowling.MaxRolls(frameIndex))
		copy(frame, frames[frameIndex])
		frame[input.Roll-1] = value
		frames[frameIndex] = frame
		entry.Frames = frames

		if err := savePreviewEntry(ctx, txdb.Queries, entry); err != nil {
			return err
		}
		if err := txdb.Queries.TouchMatch(ctx, matchID, s.now()); err != nil {
			return fmt.Errorf("touch match: %w", err)
		}
		updated = withPreview(entry)
		return nil
	})
	if err != nil {
		return EntryView{}, err
	}

	log.Ctx(ctx).Debug().
		Str("match_id", matchID).
		Int("entry", input.Entry).
		Int("frame", input.Frame).
		Int("roll", input.Roll).
		Msg("Roll recorded")
	return updated, nil
}

// CompleteMatch scores every entry strictly and closes the match. Nothing is
// written unless every entry scores.
func (s *Service) CompleteMatch(ctx context.Context, matchID string, opts bowling.SummaryOptions) (MatchView, error) {
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		match, err := loadMatch(ctx, txdb.Queries, matchID)
		if err != nil {
			return err
		}
		if match.Sport != store.SportBowling {
			return ErrWrongSport
		}
		if match.Status == store.MatchStatusCompleted {
			return ErrMatchCompleted
		}

		for _, entry := range match.Entries {
			result, err := bowling.BuildResult(entry.entry(), opts)
			if err != nil {
				return labelError(entry.Label, err)
			}
			if opts.FillIncomplete {
				entry.Frames = bowling.Normalize(entry.Frames)
			}
			if err := saveScoredEntry(ctx, txdb.Queries, entry, result); err != nil {
				return err
			}
		}
		if err := txdb.Queries.CompleteMatch(ctx, matchID, s.now()); err != nil {
			return fmt.Errorf("complete match: %w", err)
		}
		return nil
	})
	if err != nil {
		return MatchView{}, err
	}

	log.Ctx(ctx).Info().Str("match_id", matchID).Msg("Bowling match completed")
	return s.GetMatch(ctx, matchID)
}

func (s *Service) DeleteMatch(ctx context.Context, matchID string) error {
	if err := s.db.Queries.DeleteMatch(ctx, matchID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete match: %w", err)
	}
	log.Ctx(ctx).Info().Str("match_id", matchID).Msg("Match deleted")
	return nil
}

// PurgeStale deletes in-progress matches nobody has touched for olderThan.
func (s *Service) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("stale age must be positive")
	}
	cutoff := s.now().Add(-olderThan)
	deleted, err := s.db.Queries.DeleteStaleMatches(ctx, store.MatchStatusInProgress, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale matches: %w", err)
	}
	return deleted, nil
}

func sanitizeEntryFrames(entryIndex int, raw bowling.Frames) (bowling.Frames, error) {
	var frames bowling.Frames
	for i, frame := range raw {
		if len(frame) > bowling.MaxRolls(i) {
			return frames, FieldError{
				Field:  fmt.Sprintf("entries[%d].frames[%d]", entryIndex, i),
				Reason: fmt.Sprintf("holds at most %d rolls", bowling.MaxRolls(i)),
			}
		}
		cleaned := make(bowling.Frame, bowling.MaxRolls(i))
		for j, roll := range frame {
			value, ok := bowling.SanitizeRoll(roll)
			if !ok {
				return frames, FieldError{
					Field:  fmt.Sprintf("entries[%d].frames[%d][%d]", entryIndex, i, j),
					Reason: "must be a whole number from 0 to 10",
				}
			}
			cleaned[j] = value
		}
		frames[i] = cleaned
	}
	return frames, nil
}

// labelError names the player on incomplete-game errors. Frame errors
// already carry the label.
func labelError(label string, err error) error {
	var frameErr *bowling.FrameError
	if errors.As(err, &frameErr) {
		return err
	}
	return fmt.Errorf("%s, %w", label, err)
}
