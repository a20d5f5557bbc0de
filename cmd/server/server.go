// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/matchtrack/internal/api"
	"github.com/codr1/matchtrack/internal/api/adminauth"
	bowlingapi "github.com/codr1/matchtrack/internal/api/bowling"
	"github.com/codr1/matchtrack/internal/api/leaderboards"
	matchesapi "github.com/codr1/matchtrack/internal/api/matches"
	"github.com/codr1/matchtrack/internal/api/players"
	"github.com/codr1/matchtrack/internal/config"
	"github.com/codr1/matchtrack/internal/db"
	"github.com/codr1/matchtrack/internal/locale"
	"github.com/codr1/matchtrack/internal/matches"
	"github.com/codr1/matchtrack/internal/ratelimit"
)

type app struct {
	cfg      *config.Config
	resolver *locale.Resolver
	players  api.PlayerLookup
	matches  *matches.Service
	limiter  *ratelimit.Limiter
	guard    *adminauth.Guard
	hub      *bowlingapi.Hub
}

func newApp(cfg *config.Config, database *db.DB) (*app, error) {
	resolver, err := locale.NewResolver(cfg.Locale.Supported, cfg.Locale.Default, cfg.Locale.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("locale resolver: %w", err)
	}
	service, err := matches.NewService(database)
	if err != nil {
		return nil, err
	}
	guard, err := adminauth.NewGuard(cfg.App.AdminTokenHash)
	if err != nil {
		return nil, fmt.Errorf("admin token hash: %w", err)
	}

	a := &app{
		cfg:      cfg,
		resolver: resolver,
		players:  database.Queries,
		matches:  service,
		guard:    guard,
		limiter: ratelimit.New(&ratelimit.Config{
			WriteCooldown:     cfg.RateLimit.WriteCooldown,
			WriteMaxPerHour:   cfg.RateLimit.WriteMaxPerHour,
			WriteMaxIPPerHour: cfg.RateLimit.WriteMaxIPPerHour,
		}),
	}

	opts := matchesapi.Options{
		Limiter:        a.limiter,
		TrustProxy:     cfg.RateLimit.TrustProxy,
		FillIncomplete: cfg.Matches.FillIncomplete,
	}
	if cfg.Features.EnableLivePreview {
		a.hub = bowlingapi.NewHub()
		opts.Publisher = a.hub
	}

	players.InitHandlers(database, resolver, cfg.Locale.DefaultRegion)
	matchesapi.InitHandlers(service, opts)
	leaderboards.InitHandlers(database.Queries)
	return a, nil
}

func (a *app) Close() {
	a.limiter.Close()
	if a.hub != nil {
		_ = a.hub.Close()
	}
}

func (a *app) newServer() *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLocale(a.resolver, a.players),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	a.registerRoutes(router)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(a.cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (a *app) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Player routes
	mux.HandleFunc("POST /api/v1/players", players.HandleCreatePlayer)
	mux.HandleFunc("GET /api/v1/players", players.HandleListPlayers)
	mux.HandleFunc("GET /api/v1/players/{id}", players.HandleGetPlayer)

	// Bowling preview routes
	mux.HandleFunc("POST /api/v1/bowling/preview", bowlingapi.HandlePreview)
	if a.hub != nil {
		mux.HandleFunc("GET /ws/bowling/preview", a.hub.HandleWebsocket)
	}

	// Match routes
	mux.HandleFunc("POST /api/v1/matches/bowling", matchesapi.HandleCreateBowlingMatch)
	mux.HandleFunc("GET /api/v1/matches", matchesapi.HandleListMatches)
	mux.HandleFunc("GET /api/v1/matches/{id}", matchesapi.HandleGetMatch)
	mux.HandleFunc("PUT /api/v1/matches/{id}/rolls", matchesapi.HandleSetRoll)
	mux.HandleFunc("POST /api/v1/matches/{id}/complete", matchesapi.HandleCompleteMatch)
	mux.HandleFunc("DELETE /api/v1/matches/{id}", a.guard.Require(matchesapi.HandleDeleteMatch))

	// Leaderboard routes
	mux.HandleFunc("GET /api/v1/leaderboards/bowling", leaderboards.HandleBowlingLeaderboard)
}
