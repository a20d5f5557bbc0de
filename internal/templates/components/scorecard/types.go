package scorecard

import (
	"strconv"

	"github.com/codr1/matchtrack/internal/bowling"
)

// CardData is one player's line on the scorecard.
type CardData struct {
	Label   string
	Frames  bowling.Frames
	Totals  [bowling.FrameCount]string
	Total   string
	Message string
}

// NewCardData renders the running totals of a preview for display.
func NewCardData(label string, frames bowling.Frames, preview bowling.PreviewResult) CardData {
	card := CardData{
		Label:   label,
		Frames:  frames,
		Message: preview.Message(),
	}
	for i, total := range preview.Frames {
		card.Totals[i] = bowling.FormatRunningTotal(total)
	}
	if preview.Complete {
		card.Total = bowling.FormatRunningTotal(&preview.Total)
	} else {
		card.Total = bowling.Placeholder
	}
	return card
}

// rollMarks renders rolls the way they are written on a paper scorecard.
// A roll that clears a fresh rack is X, one that clears the rest of it is /.
func rollMarks(frame bowling.Frame) []string {
	marks := make([]string, len(frame))
	fresh := true
	previous := 0
	for i, raw := range frame {
		value, ok := bowling.SanitizeRoll(raw)
		if !ok || value == "" {
			fresh = false
			continue
		}
		pins, _ := strconv.Atoi(value)
		switch {
		case fresh && pins == bowling.MaxPins:
			marks[i] = "X"
			fresh = true
		case !fresh && previous+pins == bowling.MaxPins:
			marks[i] = "/"
			fresh = true
		case pins == 0:
			marks[i] = "-"
			fresh = !fresh
		default:
			marks[i] = value
			fresh = !fresh
		}
		previous = pins
	}
	return marks
}
