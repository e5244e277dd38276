package httpserver

import (
	"encoding/json"
	"net/http"

	registryhttp "estateauthz/contexts/estate-settlement/role-registry/transport/http"
)

func (s *Server) handleCreateDelegation(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.CreateDelegationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.CreateDelegationHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteDelegation(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.DeleteDelegationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.DeleteDelegationHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
