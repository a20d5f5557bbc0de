package matches

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/matchtrack/internal/db/store"
	"github.com/codr1/matchtrack/internal/matches"
	"github.com/codr1/matchtrack/internal/ratelimit"
	"github.com/codr1/matchtrack/internal/testutil"
)

type recordingPublisher struct {
	mu    sync.Mutex
	views []matches.MatchView
}

func (p *recordingPublisher) PublishMatch(_ context.Context, view matches.MatchView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

type fixture struct {
	mux       *http.ServeMux
	alice     store.Player
	bob       store.Player
	publisher *recordingPublisher
}

func newFixture(t *testing.T, limiter *ratelimit.Limiter) fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := matches.NewService(database)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	publisher := &recordingPublisher{}
	InitHandlers(svc, Options{Limiter: limiter, Publisher: publisher})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/matches/bowling", HandleCreateBowlingMatch)
	mux.HandleFunc("GET /api/v1/matches", HandleListMatches)
	mux.HandleFunc("GET /api/v1/matches/{id}", HandleGetMatch)
	mux.HandleFunc("PUT /api/v1/matches/{id}/rolls", HandleSetRoll)
	mux.HandleFunc("POST /api/v1/matches/{id}/complete", HandleCompleteMatch)
	mux.HandleFunc("DELETE /api/v1/matches/{id}", HandleDeleteMatch)

	return fixture{
		mux:       mux,
		alice:     testutil.SeedPlayer(t, database, "Alice"),
		bob:       testutil.SeedPlayer(t, database, "Bob"),
		publisher: publisher,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeMatch(t *testing.T, rec *httptest.ResponseRecorder) matches.MatchView {
	t.Helper()

	var view matches.MatchView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode match: %v (body %q)", err, rec.Body.String())
	}
	return view
}

func ninesGame() string {
	frames := make([]string, 0, 10)
	for i := 0; i < 9; i++ {
		frames = append(frames, `["9","0"]`)
	}
	frames = append(frames, `["9","0",""]`)
	return "[" + strings.Join(frames, ",") + "]"
}

func TestCreateCompletedMatch(t *testing.T) {
	f := newFixture(t, nil)

	body := fmt.Sprintf(`{"playedAt":"2026-03-01T19:00:00Z","complete":true,"entries":[{"playerId":%d,"frames":%s},{"playerId":%d,"frames":%s}]}`,
		f.alice.ID, ninesGame(), f.bob.ID, ninesGame())
	rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	view := decodeMatch(t, rec)
	if view.Status != store.MatchStatusCompleted {
		t.Fatalf("status = %q", view.Status)
	}
	for _, entry := range view.Entries {
		if entry.Total == nil || *entry.Total != 90 {
			t.Fatalf("entry %s total = %v, want 90", entry.Label, entry.Total)
		}
	}
	if view.PlayedAtLocal != "2026-03-01T19:00:00Z" {
		t.Fatalf("playedAtLocal = %q", view.PlayedAtLocal)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/matches?status=completed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Matches []matches.MatchView `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Matches) != 1 || listed.Matches[0].ID != view.ID {
		t.Fatalf("listed = %+v", listed.Matches)
	}
}

func TestCreateMatchErrors(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"no entries", `{"entries":[]}`, http.StatusBadRequest},
		{"unknown player", `{"entries":[{"playerId":999}]}`, http.StatusBadRequest},
		{"bad played at", fmt.Sprintf(`{"playedAt":"yesterday","entries":[{"playerId":%d}]}`, f.alice.ID), http.StatusBadRequest},
		{"roll after strike", fmt.Sprintf(`{"entries":[{"playerId":%d,"frames":[["10","2"]]}]}`, f.alice.ID), http.StatusUnprocessableEntity},
		{"incomplete without fill", fmt.Sprintf(`{"complete":true,"entries":[{"playerId":%d,"frames":[["3","4"]]}]}`, f.alice.ID), http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestRollEntryAndCompletion(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", fmt.Sprintf(`{"entries":[{"playerId":%d}]}`, f.alice.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", rec.Code, rec.Body.String())
	}
	matchID := decodeMatch(t, rec).ID
	rollsPath := "/api/v1/matches/" + matchID + "/rolls"

	rec = f.do(t, http.MethodPut, rollsPath, `{"entry":0,"frame":1,"roll":1,"value":"11"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rejected roll status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPut, rollsPath, `{"entry":0,"frame":1,"roll":1,"value":"10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("roll status = %d, body %q", rec.Code, rec.Body.String())
	}
	var entry matches.EntryView
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.RunningTotals[0] != nil {
		t.Fatalf("strike without bonus rolls should be unresolved")
	}
	if len(f.publisher.views) != 1 || f.publisher.views[0].ID != matchID {
		t.Fatalf("published = %+v, want one update for %s", f.publisher.views, matchID)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/matches/"+matchID+"/complete", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("complete incomplete game status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Alice, frame 2: game is incomplete") {
		t.Fatalf("error body = %q", rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/v1/matches/"+matchID+"/complete", `{"fillIncomplete":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %q", rec.Code, rec.Body.String())
	}
	view := decodeMatch(t, rec)
	if got := view.Entries[0].Total; got == nil || *got != 10 {
		t.Fatalf("total = %v, want 10", got)
	}

	rec = f.do(t, http.MethodPut, rollsPath, `{"entry":0,"frame":2,"roll":1,"value":"3"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("roll on completed match status = %d, want 409", rec.Code)
	}
}

func TestSetRollHTMXReturnsScorecard(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", fmt.Sprintf(`{"entries":[{"playerId":%d}]}`, f.alice.ID))
	matchID := decodeMatch(t, rec).ID

	req := httptest.NewRequest(http.MethodPut, "/api/v1/matches/"+matchID+"/rolls", strings.NewReader(`{"entry":0,"frame":1,"roll":1,"value":"7"}`))
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<span class="roll">7</span>`) {
		t.Fatalf("scorecard missing roll: %s", rec.Body.String())
	}
}

func TestCreateMatchHTMXKeepsCreatedStatus(t *testing.T) {
	f := newFixture(t, nil)

	body := fmt.Sprintf(`{"entries":[{"playerId":%d,"frames":[["3","4"]]}]}`, f.alice.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/bowling", strings.NewReader(body))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", ct)
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "matchUpdated") {
		t.Fatalf("HX-Trigger = %q, want matchUpdated event", trigger)
	}
	if !strings.Contains(rec.Body.String(), `<span class="roll">3</span>`) {
		t.Fatalf("scorecard missing roll: %s", rec.Body.String())
	}
}

func TestSetRollRateLimited(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{
		WriteCooldown:     time.Hour,
		WriteMaxPerHour:   100,
		WriteMaxIPPerHour: 100,
	})
	t.Cleanup(limiter.Close)
	f := newFixture(t, limiter)

	rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", fmt.Sprintf(`{"entries":[{"playerId":%d}]}`, f.alice.ID))
	matchID := decodeMatch(t, rec).ID
	rollsPath := "/api/v1/matches/" + matchID + "/rolls"

	if rec := f.do(t, http.MethodPut, rollsPath, `{"entry":0,"frame":1,"roll":1,"value":"4"}`); rec.Code != http.StatusOK {
		t.Fatalf("first roll status = %d", rec.Code)
	}
	rec = f.do(t, http.MethodPut, rollsPath, `{"entry":0,"frame":1,"roll":2,"value":"4"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second roll status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}

	rec = f.do(t, http.MethodPost, "/api/v1/matches/bowling", fmt.Sprintf(`{"entries":[{"playerId":%d}]}`, f.bob.ID))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second create status = %d, want 429", rec.Code)
	}
}

func TestGetAndDeleteMatch(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(t, http.MethodGet, "/api/v1/matches/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing match status = %d, want 404", rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/v1/matches/bowling", fmt.Sprintf(`{"entries":[{"playerId":%d}]}`, f.alice.ID))
	matchID := decodeMatch(t, rec).ID

	if rec := f.do(t, http.MethodGet, "/api/v1/matches/"+matchID, ""); rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/v1/matches/"+matchID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/v1/matches/"+matchID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestListMatchesRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodGet, "/api/v1/matches?status=paused", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
