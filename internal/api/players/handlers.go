// internal/api/players/handlers.go
package players

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/api/apiutil"
	appdb "github.com/codr1/matchtrack/internal/db"
	"github.com/codr1/matchtrack/internal/db/store"
	profiles "github.com/codr1/matchtrack/internal/players"
)

const playersQueryTimeout = 5 * time.Second

var (
	database      *appdb.DB
	locales       profiles.LocaleChecker
	defaultRegion string
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, checker profiles.LocaleChecker, region string) {
	database = db
	locales = checker
	defaultRegion = region
}

// POST /api/v1/players
func HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var input profiles.ProfileInput
	if err := apiutil.DecodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	profile, err := profiles.ValidateProfile(input, locales, defaultRegion)
	if err != nil {
		var fieldErr profiles.FieldError
		switch {
		case errors.As(err, &fieldErr):
			http.Error(w, fieldErr.Error(), http.StatusBadRequest)
		case errors.Is(err, profiles.ErrLocaleUnsupported):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error().Err(err).Msg("Failed to validate player profile")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	player, err := database.Queries.CreatePlayer(ctx, store.CreatePlayerParams{
		Name:     profile.Name,
		Phone:    profile.Phone,
		Locale:   profile.Locale,
		Timezone: profile.Timezone,
		Now:      time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			http.Error(w, "A player with that name already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Str("name", profile.Name).Msg("Failed to create player")
		http.Error(w, "Failed to create player", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("player_id", player.ID).Msg("Player created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, player); err != nil {
		logger.Error().Err(err).Int64("player_id", player.ID).Msg("Failed to write player response")
	}
}

// GET /api/v1/players
func HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListPlayers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list players")
		http.Error(w, "Failed to list players", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []store.Player{}
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"players": rows}); err != nil {
		logger.Error().Err(err).Msg("Failed to write players response")
	}
}

// GET /api/v1/players/{id}
func HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "player ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	player, err := database.Queries.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to load player")
		http.Error(w, "Failed to load player", http.StatusInternalServerError)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player response")
	}
}
