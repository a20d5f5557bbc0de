package bowling

import "strconv"

// Placeholder is shown in place of a running total that cannot be computed yet.
const Placeholder = "—"

// PreviewResult is the best-effort score of a game that may still be in progress.
type PreviewResult struct {
	// Frames holds the running total after each frame, nil where it is not known yet.
	Frames [FrameCount]*int `json:"frames"`
	// Total is the last known running total.
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
	// Err is the first rule violation, if any. Frames from the offending one onward are nil.
	Err error `json:"-"`
}

// Message returns the validation message for display, or "" when the frames are valid.
func (p PreviewResult) Message() string {
	if p.Err == nil {
		return ""
	}
	return p.Err.Error()
}

// Preview computes running totals for frames that may be incomplete or
// contain bad input. It never fails: unparseable rolls count as not thrown
// and scoring stops at the first frame that breaks a rule or cannot be resolved.
func Preview(frames Frames, label string) PreviewResult {
	var result PreviewResult

	cleaned := sanitizeFrames(frames)
	limit := FrameCount
	for i := range cleaned {
		if err := ValidateFrame(cleaned, i, label); err != nil {
			result.Err = err
			limit = i
			break
		}
	}
	// Rolls at or past the offending frame must not feed bonus lookahead.
	for i := limit; i < FrameCount; i++ {
		cleaned[i] = nil
	}

	l := layOut(cleaned)
	running := 0
	resolved := 0
	for i := 0; i < limit; i++ {
		points, ok := l.frameScore(i)
		if !ok {
			break
		}
		running += points
		total := running
		result.Frames[i] = &total
		resolved++
	}
	result.Total = running
	result.Complete = resolved == FrameCount
	return result
}

// FormatRunningTotal renders a preview total, using Placeholder when it is unknown.
func FormatRunningTotal(total *int) string {
	if total == nil {
		return Placeholder
	}
	return strconv.Itoa(*total)
}
