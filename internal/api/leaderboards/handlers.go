// internal/api/leaderboards/handlers.go
package leaderboards

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/api/apiutil"
	"github.com/codr1/matchtrack/internal/leaderboard"
)

const leaderboardQueryTimeout = 5 * time.Second

var rows leaderboard.RowSource

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(source leaderboard.RowSource) {
	rows = source
}

// GET /api/v1/leaderboards/bowling
func HandleBowlingLeaderboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if rows == nil {
		logger.Error().Msg("Leaderboard queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	limit, err := apiutil.LimitFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leaderboardQueryTimeout)
	defer cancel()

	standings, err := leaderboard.CalculateBowlingStandings(ctx, rows)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to calculate bowling standings")
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	if int64(len(standings)) > limit {
		standings = standings[:limit]
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": standings}); err != nil {
		logger.Error().Err(err).Msg("Failed to write leaderboard response")
	}
}
