package bowling

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFramesUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Frames
		wantErr error
	}{
		{
			name:  "partial game leaves later frames empty",
			input: `{"frames":[["3","7"],["10"]]}`,
			want:  game(Frame{"3", "7"}, Frame{"10"}),
		},
		{
			name:  "full game",
			input: `{"frames":[["10"],["10"],["10"],["10"],["10"],["10"],["10"],["10"],["10"],["10","10","10"]]}`,
			want:  perfectGame(),
		},
		{
			name:    "eleven frames rejected",
			input:   `{"frames":[` + strings.Repeat(`["1","1"],`, 10) + `["10","10"]]}`,
			wantErr: ErrTooManyFrames,
		},
		{
			name:  "null frames",
			input: `{"frames":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry Entry
			err := json.Unmarshal([]byte(tt.input), &entry)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, entry.Frames); diff != "" {
				t.Fatalf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFramesUnmarshalReplacesPreviousRolls(t *testing.T) {
	frames := game(Frame{"5", "4"}, Frame{"6", "2"})
	if err := json.Unmarshal([]byte(`[["1","1"]]`), &frames); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(game(Frame{"1", "1"}), frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}
