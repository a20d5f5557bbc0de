package bowling

import (
	"fmt"
	"strings"
)

// FrameError describes the first bowling rule a frame breaks.
type FrameError struct {
	Label  string
	Frame  int // 1-based
	Roll   int // 1-based, 0 when the rule spans rolls
	Reason string
}

func (e *FrameError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("Frame %d: %s", e.Frame, e.Reason)
	}
	return fmt.Sprintf("%s, frame %d: %s", e.Label, e.Frame, e.Reason)
}

// ValidateFrame checks the frame at index against the bowling rules and
// returns nil when it is valid. Frames that are only partly thrown are valid.
// label names the player in the error message.
func ValidateFrame(frames Frames, index int, label string) error {
	if index < 0 || index >= FrameCount {
		return fmt.Errorf("frame index %d out of range", index)
	}

	frame := frames[index]
	fail := func(roll int, reason string) error {
		return &FrameError{Label: label, Frame: index + 1, Roll: roll, Reason: reason}
	}

	limit := MaxRolls(index)
	for i := limit; i < len(frame); i++ {
		if strings.TrimSpace(frame[i]) != "" {
			return fail(i+1, fmt.Sprintf("only %d rolls are allowed", limit))
		}
	}

	first, hasFirst, ok := pinCount(frame.Roll(0))
	if !ok {
		return fail(1, rangeReason(1))
	}

	rawSecond := strings.TrimSpace(frame.Roll(1))
	if index != finalFrame && hasFirst && first == MaxPins && rawSecond != "" {
		return fail(2, "leave roll 2 empty after a strike")
	}
	second, hasSecond, ok := pinCount(rawSecond)
	if !ok {
		return fail(2, rangeReason(2))
	}
	if hasSecond && !hasFirst {
		return fail(2, "enter roll 1 before roll 2")
	}
	if hasSecond && first != MaxPins && first+second > MaxPins {
		return fail(0, "rolls 1 and 2 cannot exceed 10 pins")
	}

	if index != finalFrame {
		return nil
	}

	rawThird := strings.TrimSpace(frame.Roll(2))
	if rawThird == "" {
		return nil
	}
	if !hasSecond {
		return fail(3, "enter roll 2 before roll 3")
	}
	if first != MaxPins && first+second != MaxPins {
		return fail(3, "roll 3 is only available after a strike or spare")
	}
	third, _, ok := pinCount(rawThird)
	if !ok {
		return fail(3, rangeReason(3))
	}
	// After a strike the rack is only reset when roll 2 is also a strike.
	if first == MaxPins && second != MaxPins && second+third > MaxPins {
		return fail(0, "rolls 2 and 3 cannot exceed 10 pins")
	}
	return nil
}

// ValidateEntry validates every frame of the entry in order and returns the first violation.
func ValidateEntry(entry Entry) error {
	for i := range entry.Frames {
		if err := ValidateFrame(entry.Frames, i, entry.Label); err != nil {
			return err
		}
	}
	return nil
}

func rangeReason(roll int) string {
	return fmt.Sprintf("roll %d must be a whole number from 0 to 10", roll)
}
