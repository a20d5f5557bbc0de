package bowling

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func itoaTest(n int) string {
	return strconv.Itoa(n)
}

func game(frames ...Frame) Frames {
	var out Frames
	copy(out[:], frames)
	return out
}

func perfectGame() Frames {
	var frames Frames
	for i := 0; i < finalFrame; i++ {
		frames[i] = Frame{"10"}
	}
	frames[finalFrame] = Frame{"10", "10", "10"}
	return frames
}

// X, 7/, 9-, X, -8, 8/, -6, X, X, X81
func sampleGame() Frames {
	return game(
		Frame{"10"},
		Frame{"7", "3"},
		Frame{"9", "0"},
		Frame{"10"},
		Frame{"0", "8"},
		Frame{"8", "2"},
		Frame{"0", "6"},
		Frame{"10"},
		Frame{"10"},
		Frame{"10", "8", "1"},
	)
}

func filled(frame Frame) Frames {
	var frames Frames
	for i := range frames {
		frames[i] = frame
	}
	return frames
}

func TestSummarizePerfectGame(t *testing.T) {
	summary, err := Summarize(perfectGame(), SummaryOptions{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := Summary{
		Frames: [FrameCount]int{30, 60, 90, 120, 150, 180, 210, 240, 270, 300},
		Total:  300,
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeGutterGame(t *testing.T) {
	summary, err := Summarize(filled(Frame{"0", "0"}), SummaryOptions{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Total != 0 {
		t.Fatalf("Summarize() total = %d, want 0", summary.Total)
	}
}

func TestSummarizeAllSpares(t *testing.T) {
	frames := filled(Frame{"5", "5"})
	frames[finalFrame] = Frame{"5", "5", "5"}

	summary, err := Summarize(frames, SummaryOptions{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Total != 150 {
		t.Fatalf("Summarize() total = %d, want 150", summary.Total)
	}
}

func TestSummarizeSpareBonusCountedOnce(t *testing.T) {
	frames := filled(Frame{"0", "0"})
	frames[0] = Frame{"3", "7"}
	frames[1] = Frame{"4", "0"}

	summary, err := Summarize(frames, SummaryOptions{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Frames[0] != 14 {
		t.Fatalf("spare frame = %d, want 14", summary.Frames[0])
	}
	if summary.Frames[1] != 18 || summary.Total != 18 {
		t.Fatalf("cumulative = %d total = %d, want 18 and 18", summary.Frames[1], summary.Total)
	}
}

func TestSummarizeSampleGame(t *testing.T) {
	summary, err := Summarize(sampleGame(), SummaryOptions{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := [FrameCount]int{20, 39, 48, 66, 74, 84, 90, 120, 148, 167}
	if diff := cmp.Diff(want, summary.Frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	if summary.Total != 167 {
		t.Fatalf("total = %d, want 167", summary.Total)
	}
}

func TestSummarizeIncompleteGame(t *testing.T) {
	frames := game(Frame{"10"}, Frame{"3"})

	_, err := Summarize(frames, SummaryOptions{})
	if !errors.Is(err, ErrIncompleteGame) {
		t.Fatalf("Summarize() error = %v, want ErrIncompleteGame", err)
	}
	if err.Error() != "frame 2: game is incomplete" {
		t.Fatalf("Summarize() error = %q", err.Error())
	}
}

func TestSummarizeFillIncomplete(t *testing.T) {
	frames := game(Frame{"10"}, Frame{"3"})

	summary, err := Summarize(frames, SummaryOptions{FillIncomplete: true})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := [FrameCount]int{13, 16, 16, 16, 16, 16, 16, 16, 16, 16}
	if diff := cmp.Diff(want, summary.Frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	if summary.Total != 16 {
		t.Fatalf("total = %d, want 16", summary.Total)
	}
}

func TestSummarizeRejectsInvalidFrame(t *testing.T) {
	frames := filled(Frame{"0", "0"})
	frames[3] = Frame{"8", "5"}

	_, err := Summarize(frames, SummaryOptions{FillIncomplete: true})
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("Summarize() error = %v, want *FrameError", err)
	}
	if frameErr.Frame != 4 {
		t.Fatalf("frame = %d, want 4", frameErr.Frame)
	}
}

func TestNormalize(t *testing.T) {
	frames := game(Frame{"10"}, Frame{"07"}, Frame{})
	frames[finalFrame] = Frame{"4", "6"}

	got := Normalize(frames)
	want := filled(Frame{"0", "0"})
	want[0] = Frame{"10", ""}
	want[1] = Frame{"7", "0"}
	want[finalFrame] = Frame{"4", "6", "0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeLeavesUnearnedBonusEmpty(t *testing.T) {
	frames := filled(Frame{"1", "1"})
	frames[finalFrame] = Frame{"3"}

	got := Normalize(frames)
	if diff := cmp.Diff(Frame{"3", "0", ""}, got[finalFrame]); diff != "" {
		t.Fatalf("final frame mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildResult(t *testing.T) {
	result, err := BuildResult(Entry{PlayerID: 7, Label: "Sam", Frames: sampleGame()}, SummaryOptions{})
	if err != nil {
		t.Fatalf("BuildResult() error = %v", err)
	}
	if result.PlayerID != 7 || result.Total != 167 {
		t.Fatalf("result = player %d total %d, want 7 and 167", result.PlayerID, result.Total)
	}
	if len(result.Frames) != FrameCount {
		t.Fatalf("frame count = %d, want %d", len(result.Frames), FrameCount)
	}
	if diff := cmp.Diff(FrameDetail{Frame: 1, Rolls: []int{10}, Score: 20}, result.Frames[0]); diff != "" {
		t.Fatalf("first frame mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(FrameDetail{Frame: 10, Rolls: []int{10, 8, 1}, Score: 167}, result.Frames[9]); diff != "" {
		t.Fatalf("final frame mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildResultUsesLabelInErrors(t *testing.T) {
	frames := filled(Frame{"0", "0"})
	frames[0] = Frame{"10", "0"}

	_, err := BuildResult(Entry{Label: "Alex", Frames: frames}, SummaryOptions{})
	if err == nil || err.Error() != "Alex, frame 1: leave roll 2 empty after a strike" {
		t.Fatalf("BuildResult() error = %v", err)
	}
}
