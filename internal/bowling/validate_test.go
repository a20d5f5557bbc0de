package bowling

import (
	"errors"
	"testing"
)

func framesWith(index int, frame Frame) Frames {
	var frames Frames
	frames[index] = frame
	return frames
}

func TestValidateFrame(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		frame   Frame
		wantErr string
	}{
		{"not thrown", 0, nil, ""},
		{"open frame", 0, Frame{"3", "4"}, ""},
		{"spare", 4, Frame{"3", "7"}, ""},
		{"strike alone", 2, Frame{"10", ""}, ""},
		{"first roll only", 5, Frame{"6"}, ""},
		{"roll after strike", 2, Frame{"10", "3"}, "Player 1, frame 3: leave roll 2 empty after a strike"},
		{"roll after strike even when bad", 2, Frame{"10", "x"}, "Player 1, frame 3: leave roll 2 empty after a strike"},
		{"too many pins", 3, Frame{"6", "5"}, "Player 1, frame 4: rolls 1 and 2 cannot exceed 10 pins"},
		{"roll 1 out of range", 0, Frame{"11"}, "Player 1, frame 1: roll 1 must be a whole number from 0 to 10"},
		{"roll 2 not a number", 0, Frame{"4", "abc"}, "Player 1, frame 1: roll 2 must be a whole number from 0 to 10"},
		{"roll 2 before roll 1", 1, Frame{"", "5"}, "Player 1, frame 2: enter roll 1 before roll 2"},
		{"third roll mid game", 1, Frame{"1", "2", "3"}, "Player 1, frame 2: only 2 rolls are allowed"},
		{"final open", 9, Frame{"4", "3"}, ""},
		{"final bonus without mark", 9, Frame{"4", "3", "2"}, "Player 1, frame 10: roll 3 is only available after a strike or spare"},
		{"final spare bonus", 9, Frame{"4", "6", "2"}, ""},
		{"final strike pending", 9, Frame{"10", "7"}, ""},
		{"final three strikes", 9, Frame{"10", "10", "10"}, ""},
		{"final strike then spare", 9, Frame{"10", "4", "6"}, ""},
		{"final strike then too many", 9, Frame{"10", "4", "7"}, "Player 1, frame 10: rolls 2 and 3 cannot exceed 10 pins"},
		{"final too many pins", 9, Frame{"7", "5"}, "Player 1, frame 10: rolls 1 and 2 cannot exceed 10 pins"},
		{"final roll 3 before roll 2", 9, Frame{"10", "", "5"}, "Player 1, frame 10: enter roll 2 before roll 3"},
		{"final roll 3 out of range", 9, Frame{"10", "10", "12"}, "Player 1, frame 10: roll 3 must be a whole number from 0 to 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFrame(framesWith(tt.index, tt.frame), tt.index, "Player 1")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateFrame() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateFrame() error = nil, want %q", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("ValidateFrame() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateFrameErrorFields(t *testing.T) {
	err := ValidateFrame(framesWith(6, Frame{"10", "1"}), 6, "")

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %T", err)
	}
	if frameErr.Frame != 7 || frameErr.Roll != 2 {
		t.Fatalf("frame error = frame %d roll %d, want frame 7 roll 2", frameErr.Frame, frameErr.Roll)
	}
	if err.Error() != "Frame 7: leave roll 2 empty after a strike" {
		t.Fatalf("unlabelled message = %q", err.Error())
	}
}

func TestValidateFrameIndexOutOfRange(t *testing.T) {
	var frames Frames
	if err := ValidateFrame(frames, FrameCount, "Player 1"); err == nil {
		t.Fatal("expected error for out of range index")
	}
}

func TestValidateEntryReportsFirstViolation(t *testing.T) {
	entry := Entry{Label: "Sam"}
	entry.Frames[1] = Frame{"9", "9"}
	entry.Frames[4] = Frame{"10", "1"}

	err := ValidateEntry(entry)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Error() != "Sam, frame 2: rolls 1 and 2 cannot exceed 10 pins" {
		t.Fatalf("ValidateEntry() error = %q", err.Error())
	}
}

// Every legal non-final frame satisfies the strike and pin-sum rules, and
// roll 3 of the final frame is allowed exactly after a strike or spare.
func TestValidateFrameExhaustive(t *testing.T) {
	for first := 0; first <= MaxPins; first++ {
		for second := 0; second <= MaxPins; second++ {
			frame := Frame{itoaTest(first), itoaTest(second)}
			err := ValidateFrame(framesWith(0, frame), 0, "P")
			valid := first != MaxPins && first+second <= MaxPins
			if (err == nil) != valid {
				t.Fatalf("frame (%d,%d): err = %v, want valid=%v", first, second, err, valid)
			}

			if first != MaxPins && first+second > MaxPins {
				continue
			}
			final := Frame{itoaTest(first), itoaTest(second), "0"}
			err = ValidateFrame(framesWith(finalFrame, final), finalFrame, "P")
			earned := first == MaxPins || first+second == MaxPins
			if (err == nil) != earned {
				t.Fatalf("final (%d,%d,0): err = %v, want valid=%v", first, second, err, earned)
			}
		}
	}
}
