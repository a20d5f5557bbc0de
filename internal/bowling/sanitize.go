package bowling

import (
	"strconv"
	"strings"
)

// SanitizeRoll normalizes raw roll input into a canonical pin count.
// It returns ("", true) when the input clears the roll and ("", false) when
// the input is not a whole number from 0 to MaxPins. Callers keep the
// previously stored value on rejection.
func SanitizeRoll(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	// Digits only, so the only failure left is overflow.
	value, err := strconv.Atoi(raw)
	if err != nil || value > MaxPins {
		return "", false
	}
	return strconv.Itoa(value), true
}

// pinCount reads a stored roll. present is false for a roll that has not been thrown.
func pinCount(raw string) (pins int, present bool, ok bool) {
	canonical, ok := SanitizeRoll(raw)
	if !ok {
		return 0, false, false
	}
	if canonical == "" {
		return 0, false, true
	}
	pins, _ = strconv.Atoi(canonical)
	return pins, true, true
}

// sanitizeFrames returns a copy of frames with every roll canonicalized.
// Rolls that do not sanitize are dropped to empty.
func sanitizeFrames(frames Frames) Frames {
	var out Frames
	for i, frame := range frames {
		cleaned := make(Frame, len(frame))
		for j, roll := range frame {
			if canonical, ok := SanitizeRoll(roll); ok {
				cleaned[j] = canonical
			}
		}
		out[i] = cleaned
	}
	return out
}
