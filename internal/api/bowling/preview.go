// internal/api/bowling/preview.go
package bowling

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/api/apiutil"
	"github.com/codr1/matchtrack/internal/api/htmx"
	"github.com/codr1/matchtrack/internal/bowling"
	"github.com/codr1/matchtrack/internal/templates/components/scorecard"
)

const maxPreviewEntries = 6

type PreviewEntry struct {
	Label  string         `json:"label"`
	Frames bowling.Frames `json:"frames"`
}

type PreviewRequest struct {
	Entries []PreviewEntry `json:"entries"`
}

type PreviewEntryResult struct {
	Label         string                   `json:"label"`
	RunningTotals [bowling.FrameCount]*int `json:"runningTotals"`
	Display       []string                 `json:"display"`
	Total         int                      `json:"total"`
	Complete      bool                     `json:"complete"`
	Message       string                   `json:"message,omitempty"`
}

type PreviewResponse struct {
	Entries []PreviewEntryResult `json:"entries"`
}

// BuildPreview scores every entry for live display. Bad rolls never fail
// the request; they surface as a message on the entry.
func BuildPreview(req PreviewRequest) (PreviewResponse, []scorecard.CardData, error) {
	if len(req.Entries) == 0 || len(req.Entries) > maxPreviewEntries {
		return PreviewResponse{}, nil, apiutil.FieldError{
			Field:  "entries",
			Reason: fmt.Sprintf("must contain between 1 and %d players", maxPreviewEntries),
		}
	}

	resp := PreviewResponse{Entries: make([]PreviewEntryResult, 0, len(req.Entries))}
	cards := make([]scorecard.CardData, 0, len(req.Entries))
	for i, entry := range req.Entries {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			label = fmt.Sprintf("Player %d", i+1)
		}
		preview := bowling.Preview(entry.Frames, label)

		result := PreviewEntryResult{
			Label:         label,
			RunningTotals: preview.Frames,
			Display:       make([]string, 0, bowling.FrameCount),
			Total:         preview.Total,
			Complete:      preview.Complete,
			Message:       preview.Message(),
		}
		for _, total := range preview.Frames {
			result.Display = append(result.Display, bowling.FormatRunningTotal(total))
		}
		resp.Entries = append(resp.Entries, result)
		cards = append(cards, scorecard.NewCardData(label, entry.Frames, preview))
	}
	return resp, cards, nil
}

// POST /api/v1/bowling/preview
func HandlePreview(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req PreviewRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	resp, cards, err := BuildPreview(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, scorecard.Scorecard(cards), nil,
			"Failed to render scorecard", "Failed to render scorecard")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write preview response")
	}
}
