package bowling

import (
	"errors"
	"fmt"
)

// ErrIncompleteGame is returned by Summarize when a frame still has rolls to throw.
var ErrIncompleteGame = errors.New("game is incomplete")

// SummaryOptions controls how Summarize treats unfinished games.
type SummaryOptions struct {
	// FillIncomplete scores rolls that have not been thrown as zero.
	FillIncomplete bool
}

// Summary holds the cumulative score after each frame and the game total.
type Summary struct {
	Frames [FrameCount]int `json:"frames"`
	Total  int             `json:"total"`
}

// Summarize scores a finished game. Every frame is validated with the same
// rules as ValidateFrame before scoring. Unless opts.FillIncomplete is set, a
// frame with missing rolls yields ErrIncompleteGame.
func Summarize(frames Frames, opts SummaryOptions) (Summary, error) {
	return summarize(frames, "", opts)
}

func summarize(frames Frames, label string, opts SummaryOptions) (Summary, error) {
	var summary Summary

	for i := range frames {
		if err := ValidateFrame(frames, i, label); err != nil {
			return summary, err
		}
	}

	cleaned := sanitizeFrames(frames)
	if opts.FillIncomplete {
		cleaned = Normalize(cleaned)
	}
	for i := range cleaned {
		if !FrameComplete(cleaned, i) {
			return summary, fmt.Errorf("frame %d: %w", i+1, ErrIncompleteGame)
		}
	}

	l := layOut(cleaned)
	running := 0
	for i := range cleaned {
		points, ok := l.frameScore(i)
		if !ok {
			// Complete, valid frames always resolve.
			return summary, fmt.Errorf("frame %d: %w", i+1, ErrIncompleteGame)
		}
		running += points
		summary.Frames[i] = running
	}
	summary.Total = running
	return summary, nil
}
