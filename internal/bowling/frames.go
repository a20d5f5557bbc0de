// Package bowling validates and scores ten-pin bowling frames entered roll by roll.
package bowling

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// FrameCount is the number of frames in a game.
	FrameCount = 10
	// MaxPins is the number of pins in a rack.
	MaxPins = 10

	finalFrame = FrameCount - 1
)

// Frame holds the raw roll strings of one frame. An empty string is a roll
// that has not been thrown yet.
type Frame []string

// Roll returns the roll at index i, or "" when the frame has no such roll.
func (f Frame) Roll(i int) string {
	if i < 0 || i >= len(f) {
		return ""
	}
	return f[i]
}

// Frames is a full game for one player.
type Frames [FrameCount]Frame

// ErrTooManyFrames is returned when decoding a game with more than FrameCount frames.
var ErrTooManyFrames = errors.New("a game has at most 10 frames")

// UnmarshalJSON accepts up to FrameCount frames. Missing trailing frames are
// left empty, meaning not thrown yet.
func (f *Frames) UnmarshalJSON(data []byte) error {
	var frames []Frame
	if err := json.Unmarshal(data, &frames); err != nil {
		return err
	}
	if len(frames) > FrameCount {
		return fmt.Errorf("%w, got %d", ErrTooManyFrames, len(frames))
	}
	*f = Frames{}
	copy(f[:], frames)
	return nil
}

// Clone returns a deep copy so callers can edit rolls without touching the original.
func (f Frames) Clone() Frames {
	var out Frames
	for i, frame := range f {
		out[i] = append(Frame(nil), frame...)
	}
	return out
}

// Entry is one player's line in a bowling match.
type Entry struct {
	PlayerID int64  `json:"playerId"`
	Label    string `json:"label,omitempty"`
	Frames   Frames `json:"frames"`
}

// MaxRolls returns how many rolls the frame at index may hold.
func MaxRolls(index int) int {
	if index == finalFrame {
		return 3
	}
	return 2
}

// FrameComplete reports whether every roll the frame needs has been thrown.
// It assumes the frame already passed ValidateFrame.
func FrameComplete(frames Frames, index int) bool {
	if index < 0 || index >= FrameCount {
		return false
	}
	frame := frames[index]
	first, hasFirst, _ := pinCount(frame.Roll(0))
	second, hasSecond, _ := pinCount(frame.Roll(1))
	if !hasFirst {
		return false
	}
	if index != finalFrame {
		return first == MaxPins || hasSecond
	}
	if !hasSecond {
		return false
	}
	if first == MaxPins || first+second == MaxPins {
		_, hasThird, _ := pinCount(frame.Roll(2))
		return hasThird
	}
	return true
}

// Normalize fills rolls that have not been thrown with zero so an unfinished
// game can be submitted. Roll 2 after a strike in frames 1-9 and an unearned
// roll 3 in the final frame stay empty. Input must already be valid.
func Normalize(frames Frames) Frames {
	cleaned := sanitizeFrames(frames)
	var out Frames
	for i, frame := range cleaned {
		first := fill(frame.Roll(0))
		second := frame.Roll(1)
		if i != finalFrame {
			if first != "10" {
				second = fill(second)
			}
			out[i] = Frame{first, second}
			continue
		}

		second = fill(second)
		third := frame.Roll(2)
		firstPins, _, _ := pinCount(first)
		secondPins, _, _ := pinCount(second)
		if firstPins == MaxPins || firstPins+secondPins == MaxPins {
			third = fill(third)
		}
		out[i] = Frame{first, second, third}
	}
	return out
}

func fill(roll string) string {
	if roll == "" {
		return "0"
	}
	return roll
}
