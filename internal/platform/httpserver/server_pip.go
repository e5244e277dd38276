package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	registryhttp "estateauthz/contexts/estate-settlement/role-registry/transport/http"

	"github.com/golang-jwt/jwt/v5"
)

func (s *Server) handlePip(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.PipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.PipHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExternalRoles(w http.ResponseWriter, r *http.Request) {
	scopes, ok := bearerScopes(w, r)
	if !ok {
		return
	}

	var req registryhttp.ExternalAuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.ExternalRolesHandler(r.Context(), scopes[s.allRolesScope], req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// bearerScopes extracts the scope claim from the bearer token. Signature
// verification happens at the API gateway upstream, so the token is parsed
// without validating it here.
func bearerScopes(w http.ResponseWriter, r *http.Request) (map[string]bool, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeRegistryError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return nil, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(parts[1]), claims); err != nil {
		writeRegistryError(w, http.StatusUnauthorized, "unauthorized", "bearer token is malformed")
		return nil, false
	}

	scopes := make(map[string]bool)
	if raw, ok := claims["scope"].(string); ok {
		for _, scope := range strings.Fields(raw) {
			scopes[scope] = true
		}
	}
	return scopes, true
}
