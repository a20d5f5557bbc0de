// internal/api/middleware.go
package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/db/store"
	"github.com/codr1/matchtrack/internal/locale"
)

const (
	LocaleCookie     = "matchtrack_locale"
	TimezoneCookie   = "matchtrack_tz"
	PlayerQueryParam = "player"

	playerLookupTimeout = 2 * time.Second
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestID returns the ID assigned by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestID(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PlayerLookup loads the player whose stored locale and timezone apply to a request.
type PlayerLookup interface {
	GetPlayer(ctx context.Context, id int64) (store.Player, error)
}

// WithLocale resolves the display locale and timezone and stores them on the
// request context. Signals: cookies, then the stored settings of the player
// named by ?player=, then Accept-Language. players may be nil.
func WithLocale(resolver *locale.Resolver, players PlayerLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			candidates := locale.Candidates{
				CookieLocale:   cookieValue(r, LocaleCookie),
				CookieTimezone: cookieValue(r, TimezoneCookie),
				AcceptLanguage: r.Header.Get("Accept-Language"),
			}
			if player, ok := lookupPlayer(r, players); ok {
				candidates.StoredLocale = player.Locale
				candidates.StoredTimezone = player.Timezone
			}

			pref := resolver.Resolve(candidates)
			log.Ctx(r.Context()).Debug().
				Str("locale", pref.Locale.String()).
				Str("locale_source", pref.LocaleSource).
				Str("timezone", pref.Timezone.String()).
				Str("timezone_source", pref.TimezoneSource).
				Msg("Locale resolved")

			w.Header().Set("Content-Language", pref.Locale.String())
			next.ServeHTTP(w, r.WithContext(locale.WithPreference(r.Context(), pref)))
		})
	}
}

func lookupPlayer(r *http.Request, players PlayerLookup) (store.Player, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(PlayerQueryParam))
	if players == nil || raw == "" {
		return store.Player{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return store.Player{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerLookupTimeout)
	defer cancel()

	player, err := players.GetPlayer(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Ctx(r.Context()).Warn().Err(err).Int64("player_id", id).Msg("Failed to load player locale settings")
		}
		return store.Player{}, false
	}
	return player, true
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the logging wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
