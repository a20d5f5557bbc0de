package bowling

// FrameDetail is the per-frame part of a submitted bowling result.
type FrameDetail struct {
	Frame int   `json:"frame"`
	Rolls []int `json:"rolls"`
	Score int   `json:"score"`
}

// EntryResult is the scored line for one player, as posted with a match.
type EntryResult struct {
	PlayerID int64         `json:"playerId"`
	Total    int           `json:"total"`
	Frames   []FrameDetail `json:"frames"`
}

// BuildResult scores the entry and expands it into per-frame detail.
func BuildResult(entry Entry, opts SummaryOptions) (EntryResult, error) {
	summary, err := summarize(entry.Frames, entry.Label, opts)
	if err != nil {
		return EntryResult{}, err
	}

	frames := sanitizeFrames(entry.Frames)
	if opts.FillIncomplete {
		frames = Normalize(frames)
	}

	result := EntryResult{
		PlayerID: entry.PlayerID,
		Total:    summary.Total,
		Frames:   make([]FrameDetail, 0, FrameCount),
	}
	for i, frame := range frames {
		detail := FrameDetail{Frame: i + 1, Score: summary.Frames[i]}
		for _, roll := range frame {
			if pins, present, _ := pinCount(roll); present {
				detail.Rolls = append(detail.Rolls, pins)
			}
		}
		result.Frames = append(result.Frames, detail)
	}
	return result, nil
}
