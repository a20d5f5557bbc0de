// internal/api/bowling/live.go
package bowling

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/olahol/melody"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/matchtrack/internal/matches"
)

const (
	EventPreview    = "preview"
	EventSubscribe  = "subscribe"
	EventSubscribed = "subscribed"
	EventMatch      = "match"
	EventError      = "error"

	matchIDKey = "match_id"
	loggerKey  = "logger"
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outgoing struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type subscribeData struct {
	MatchID string `json:"matchId"`
}

// Hub serves live previews over websockets and pushes match updates to
// sessions subscribed to that match.
type Hub struct {
	m *melody.Melody
}

func NewHub() *Hub {
	h := &Hub{m: melody.New()}
	h.m.HandleConnect(h.handleConnect)
	h.m.HandleDisconnect(h.handleDisconnect)
	h.m.HandleMessage(h.handleMessage)
	return h
}

// GET /ws/bowling/preview
func (h *Hub) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context()).With().Str("component", "bowling_live").Logger()
	keys := map[string]any{loggerKey: logger}
	if matchID := strings.TrimSpace(r.URL.Query().Get("match")); matchID != "" {
		keys[matchIDKey] = matchID
	}
	if err := h.m.HandleRequestWithKeys(w, r, keys); err != nil {
		logger.Warn().Err(err).Msg("Websocket upgrade failed")
	}
}

// PublishMatch sends the match to every session subscribed to it.
func (h *Hub) PublishMatch(ctx context.Context, view matches.MatchView) {
	payload, err := json.Marshal(outgoing{Type: EventMatch, Data: view})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("match_id", view.ID).Msg("Failed to encode match update")
		return
	}
	err = h.m.BroadcastFilter(payload, func(s *melody.Session) bool {
		id, ok := s.Get(matchIDKey)
		return ok && id == view.ID
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("match_id", view.ID).Msg("Failed to broadcast match update")
	}
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

func (h *Hub) Close() error {
	return h.m.Close()
}

func sessionLogger(s *melody.Session) *zerolog.Logger {
	if value, ok := s.Get(loggerKey); ok {
		if logger, ok := value.(zerolog.Logger); ok {
			return &logger
		}
	}
	return &log.Logger
}

func (h *Hub) handleConnect(s *melody.Session) {
	sessionLogger(s).Debug().Str("remote_address", s.RemoteAddr().String()).Msg("Live preview connected")
}

func (h *Hub) handleDisconnect(s *melody.Session) {
	sessionLogger(s).Debug().Str("remote_address", s.RemoteAddr().String()).Msg("Live preview disconnected")
}

func (h *Hub) handleMessage(s *melody.Session, data []byte) {
	logger := sessionLogger(s)

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.reply(s, EventError, map[string]string{"message": "invalid message"})
		return
	}

	switch envelope.Type {
	case EventPreview:
		var req PreviewRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			h.reply(s, EventError, map[string]string{"message": "invalid preview request"})
			return
		}
		resp, _, err := BuildPreview(req)
		if err != nil {
			h.reply(s, EventError, map[string]string{"message": err.Error()})
			return
		}
		h.reply(s, EventPreview, resp)
	case EventSubscribe:
		var sub subscribeData
		if err := json.Unmarshal(envelope.Data, &sub); err != nil || strings.TrimSpace(sub.MatchID) == "" {
			h.reply(s, EventError, map[string]string{"message": "matchId is required"})
			return
		}
		s.Set(matchIDKey, strings.TrimSpace(sub.MatchID))
		h.reply(s, EventSubscribed, sub)
	default:
		logger.Warn().Str("type", envelope.Type).Msg("Unknown live preview message")
		h.reply(s, EventError, map[string]string{"message": "unknown message type"})
	}
}

func (h *Hub) reply(s *melody.Session, eventType string, data any) {
	payload, err := json.Marshal(outgoing{Type: eventType, Data: data})
	if err != nil {
		sessionLogger(s).Error().Err(err).Msg("Failed to encode live preview reply")
		return
	}
	if err := s.Write(payload); err != nil {
		sessionLogger(s).Warn().Err(err).Msg("Failed to write live preview reply")
	}
}
