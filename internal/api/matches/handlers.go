// internal/api/matches/handlers.go
package matches

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/api/apiutil"
	"github.com/codr1/matchtrack/internal/api/htmx"
	"github.com/codr1/matchtrack/internal/bowling"
	"github.com/codr1/matchtrack/internal/db/store"
	"github.com/codr1/matchtrack/internal/locale"
	"github.com/codr1/matchtrack/internal/matches"
	"github.com/codr1/matchtrack/internal/ratelimit"
	"github.com/codr1/matchtrack/internal/templates/components/scorecard"
)

const (
	matchesQueryTimeout = 5 * time.Second
	createLimitKey      = "matches:create"
)

// Publisher pushes match changes to live viewers.
type Publisher interface {
	PublishMatch(ctx context.Context, view matches.MatchView)
}

type Options struct {
	Limiter        *ratelimit.Limiter
	TrustProxy     bool
	FillIncomplete bool
	Publisher      Publisher
}

var (
	service *matches.Service
	options Options
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *matches.Service, opts Options) {
	service = svc
	options = opts
}

type createMatchRequest struct {
	PlayedAt       string               `json:"playedAt"`
	Entries        []matches.EntryInput `json:"entries"`
	Complete       bool                 `json:"complete"`
	FillIncomplete *bool                `json:"fillIncomplete"`
}

type completeMatchRequest struct {
	FillIncomplete *bool `json:"fillIncomplete"`
}

// POST /api/v1/matches/bowling
func HandleCreateBowlingMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createMatchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	pref := locale.FromContext(r.Context())
	playedAt, err := apiutil.ParsePlayedAt(req.PlayedAt, time.Now(), pref.Timezone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientIP := ratelimit.GetClientIP(r, options.TrustProxy)
	if !allowWrite(w, r, createLimitKey, clientIP) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	view, err := service.CreateBowlingMatch(ctx, matches.CreateBowlingInput{
		PlayedAt:       playedAt.Truncate(time.Second),
		Entries:        req.Entries,
		Complete:       req.Complete,
		FillIncomplete: fillIncomplete(req.FillIncomplete),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	recordWrite(createLimitKey, clientIP)

	writeMatch(w, r, http.StatusCreated, view)
}

// GET /api/v1/matches
func HandleListMatches(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	limit, err := apiutil.LimitFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := r.URL.Query()
	params := store.ListMatchesParams{
		Sport:  strings.TrimSpace(query.Get("sport")),
		Status: strings.TrimSpace(query.Get("status")),
		Limit:  limit,
	}
	if params.Status != "" && params.Status != store.MatchStatusInProgress && params.Status != store.MatchStatusCompleted {
		http.Error(w, "status must be in_progress or completed", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	views, err := service.ListMatches(ctx, params)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	pref := locale.FromContext(r.Context())
	for i := range views {
		views[i].PlayedAtLocal = pref.LocalTime(views[i].PlayedAt)
	}
	if views == nil {
		views = []matches.MatchView{}
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"matches": views}); err != nil {
		logger.Error().Err(err).Msg("Failed to write matches response")
	}
}

// GET /api/v1/matches/{id}
func HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	view, err := service.GetMatch(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeMatch(w, r, http.StatusOK, view)
}

// PUT /api/v1/matches/{id}/rolls
func HandleSetRoll(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	matchID := r.PathValue("id")
	var input matches.SetRollInput
	if err := apiutil.DecodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	key := "match:" + matchID
	clientIP := ratelimit.GetClientIP(r, options.TrustProxy)
	if !allowWrite(w, r, key, clientIP) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	entry, err := service.SetRoll(ctx, matchID, input)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	recordWrite(key, clientIP)

	if htmx.IsRequest(r) || options.Publisher != nil {
		view, err := service.GetMatch(ctx, matchID)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}
		publish(r.Context(), view)
		if htmx.IsRequest(r) {
			writeMatch(w, r, http.StatusOK, view)
			return
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, entry); err != nil {
		logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to write roll response")
	}
}

// POST /api/v1/matches/{id}/complete
func HandleCompleteMatch(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req completeMatchRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	matchID := r.PathValue("id")
	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	view, err := service.CompleteMatch(ctx, matchID, bowling.SummaryOptions{
		FillIncomplete: fillIncomplete(req.FillIncomplete),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	if options.Limiter != nil {
		options.Limiter.Reset("match:" + matchID)
	}
	publish(r.Context(), view)
	writeMatch(w, r, http.StatusOK, view)
}

// DELETE /api/v1/matches/{id}
func HandleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	matchID := r.PathValue("id")
	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := service.DeleteMatch(ctx, matchID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	if options.Limiter != nil {
		options.Limiter.Reset("match:" + matchID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func fillIncomplete(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return options.FillIncomplete
}

func allowWrite(w http.ResponseWriter, r *http.Request, key, clientIP string) bool {
	if options.Limiter == nil {
		return true
	}
	result := options.Limiter.CheckWrite(key, clientIP)
	if result.Allowed {
		return true
	}
	ratelimit.LogRateLimitExceeded(r.Context(), key, clientIP, result)
	seconds := int(result.RetryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	http.Error(w, "Too many requests, slow down", http.StatusTooManyRequests)
	return false
}

func recordWrite(key, clientIP string) {
	if options.Limiter != nil {
		options.Limiter.RecordWrite(key, clientIP)
	}
}

func publish(ctx context.Context, view matches.MatchView) {
	if options.Publisher != nil {
		options.Publisher.PublishMatch(ctx, view)
	}
}

func writeMatch(w http.ResponseWriter, r *http.Request, status int, view matches.MatchView) {
	view.PlayedAtLocal = locale.FromContext(r.Context()).LocalTime(view.PlayedAt)

	if htmx.IsRequest(r) {
		cards := make([]scorecard.CardData, 0, len(view.Entries))
		for _, entry := range view.Entries {
			cards = append(cards, scorecard.NewCardData(entry.Label, entry.Frames, bowling.Preview(entry.Frames, entry.Label)))
		}
		headers := htmx.TriggerHeaders("matchUpdated", map[string]string{
			"matchId": view.ID,
			"status":  view.Status,
		})
		apiutil.RenderHTMLComponentStatus(r.Context(), w, status, scorecard.Scorecard(cards), headers,
			"Failed to render match scorecard", "Failed to render scorecard")
		return
	}
	if err := apiutil.WriteJSON(w, status, view); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("match_id", view.ID).Msg("Failed to write match response")
	}
}

// writeServiceError maps match service errors onto HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var fieldErr matches.FieldError
	var frameErr *bowling.FrameError
	switch {
	case errors.Is(err, matches.ErrNotFound):
		err = apiutil.HandlerError{Status: http.StatusNotFound, Message: "Match not found", Err: err}
	case errors.Is(err, matches.ErrUnknownPlayer):
		err = apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	case errors.Is(err, matches.ErrRollRejected), errors.As(err, &fieldErr):
		err = apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	case errors.Is(err, matches.ErrMatchCompleted), errors.Is(err, matches.ErrWrongSport):
		err = apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.As(err, &frameErr), errors.Is(err, bowling.ErrIncompleteGame):
		err = apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		err = apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Request timed out", Err: err}
	}
	apiutil.WriteError(ctx, w, err)
}
