package htmx

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	headerRequest = "HX-Request"
	headerTarget  = "HX-Target"
	headerTrigger = "HX-Trigger"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(headerRequest), "true")
}

// Target returns the id of the element the fragment will be swapped into.
func Target(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerTarget))
}

// TriggerHeaders builds response headers that fire a client-side event with
// the given detail once the fragment is swapped in. A nil detail sends the
// bare event name.
func TriggerHeaders(event string, detail any) map[string]string {
	if detail == nil {
		return map[string]string{headerTrigger: event}
	}
	payload, err := json.Marshal(map[string]any{event: detail})
	if err != nil {
		return map[string]string{headerTrigger: event}
	}
	return map[string]string{headerTrigger: string(payload)}
}
