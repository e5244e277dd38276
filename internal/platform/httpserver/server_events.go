package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	contractsv1 "estateauthz/contracts/gen/events/v1"
)

// handleReceiveEvent is the inbound webhook for court case events. The event
// hub authenticates by echoing the shared key in the code query parameter.
func (s *Server) handleReceiveEvent(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeEventPoster(w, r) {
		return
	}

	var event contractsv1.CloudEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be a valid cloud event")
		return
	}
	if strings.TrimSpace(event.ID) == "" || event.Time.IsZero() {
		writeRegistryError(w, http.StatusBadRequest, "invalid_event", "event id and time are required")
		return
	}

	resp, err := s.registry.Handler.ReceiveEventHandler(r.Context(), event)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) authorizeEventPoster(w http.ResponseWriter, r *http.Request) bool {
	if s.eventAuthKey == "" {
		writeRegistryError(w, http.StatusUnauthorized, "unauthorized", "event endpoint is not configured")
		return false
	}
	code := r.URL.Query().Get("code")
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.eventAuthKey)) != 1 {
		writeRegistryError(w, http.StatusUnauthorized, "unauthorized", "invalid event auth key")
		return false
	}
	return true
}
