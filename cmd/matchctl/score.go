// cmd/matchctl/score.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/matchtrack/internal/bowling"
)

type scoreOptions struct {
	fill    bool
	preview bool
	asJSON  bool
	label   string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a bowling line given as JSON",
		Long: `Reads one bowling line from a file, or stdin when no file or "-" is given.

The input is either an array of frames, e.g. [["10"],["3","7"],["4","2"]],
or an entry object {"label": "...", "frames": [...]}.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runScore(cmd, path, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.fill, "fill", false, "Score rolls that have not been thrown as zero")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "Print running totals for an unfinished game instead of failing")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&opts.label, "label", "", "Player label used in error messages")
	return cmd
}

func runScore(cmd *cobra.Command, path string, opts scoreOptions) error {
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	entry, err := parseEntry(data)
	if err != nil {
		return err
	}
	if opts.label != "" {
		entry.Label = opts.label
	}
	if entry.Label == "" {
		entry.Label = "Player 1"
	}
	log.Debug().Str("label", entry.Label).Bool("preview", opts.preview).Msg("Scoring line")

	out := cmd.OutOrStdout()
	if opts.preview {
		return printPreview(out, entry, bowling.Preview(entry.Frames, entry.Label), opts.asJSON)
	}

	result, err := bowling.BuildResult(entry, bowling.SummaryOptions{FillIncomplete: opts.fill})
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(out, result)
	}
	for _, frame := range result.Frames {
		fmt.Fprintf(out, "%2d  %-8s %3d\n", frame.Frame, joinRolls(frame.Rolls), frame.Score)
	}
	fmt.Fprintf(out, "Total: %d\n", result.Total)
	return nil
}

func printPreview(out io.Writer, entry bowling.Entry, preview bowling.PreviewResult, asJSON bool) error {
	if asJSON {
		totals := make([]string, 0, bowling.FrameCount)
		for _, total := range preview.Frames {
			totals = append(totals, bowling.FormatRunningTotal(total))
		}
		return writeJSON(out, map[string]any{
			"label":         entry.Label,
			"runningTotals": totals,
			"total":         preview.Total,
			"complete":      preview.Complete,
			"message":       preview.Message(),
		})
	}
	for i, total := range preview.Frames {
		fmt.Fprintf(out, "%2d  %-8s %3s\n", i+1, strings.Join(entry.Frames[i], " "), bowling.FormatRunningTotal(total))
	}
	fmt.Fprintf(out, "Total: %d\n", preview.Total)
	if msg := preview.Message(); msg != "" {
		fmt.Fprintln(out, msg)
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func parseEntry(data []byte) (bowling.Entry, error) {
	var entry bowling.Entry
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return entry, fmt.Errorf("no frames given")
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entry.Frames); err != nil {
			return entry, fmt.Errorf("invalid frames: %w", err)
		}
		return entry, nil
	}
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return entry, fmt.Errorf("invalid entry: %w", err)
	}
	return entry, nil
}

func joinRolls(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = fmt.Sprint(r)
	}
	return strings.Join(parts, " ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
