package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	roleregistry "estateauthz/contexts/estate-settlement/role-registry"
	registryerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	registryhttp "estateauthz/contexts/estate-settlement/role-registry/transport/http"
	"estateauthz/internal/platform/db"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "estateauthz/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	registry      roleregistry.Module
	database      *db.Postgres
	eventAuthKey  string
	allRolesScope string
}

func New(
	registry roleregistry.Module,
	database *db.Postgres,
	eventAuthKey string,
	allRolesScope string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		registry:      registry,
		database:      database,
		eventAuthKey:  eventAuthKey,
		allRolesScope: allRolesScope,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /{$}", s.handleLiveness)
	s.mux.HandleFunc("GET /health", s.handleLiveness)
	s.mux.HandleFunc("GET /health/details", s.handleHealthDetails)

	s.mux.HandleFunc("POST /api/v1/events", s.handleReceiveEvent)
	s.mux.HandleFunc("POST /api/v1/pip", s.handlePip)
	s.mux.HandleFunc("POST /api/v1/authorization/roles", s.handleExternalRoles)
	s.mux.HandleFunc("POST /api/v1/delegations", s.handleCreateDelegation)
	s.mux.HandleFunc("DELETE /api/v1/delegations", s.handleDeleteDelegation)
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrInvalidEstateSsn),
		errors.Is(err, registryerrors.ErrInvalidRecipientSsn),
		errors.Is(err, registryerrors.ErrInvalidHeirSsn),
		errors.Is(err, registryerrors.ErrInvalidRoleCode),
		errors.Is(err, registryerrors.ErrUnknownEventKind),
		errors.Is(err, registryerrors.ErrMissingEventPayload):
		writeRegistryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, registryerrors.ErrNotProbateHolder):
		writeRegistryError(w, http.StatusForbidden, "not_probate_holder", err.Error())
	case errors.Is(err, registryerrors.ErrDelegationNotFound):
		writeRegistryError(w, http.StatusNotFound, "delegation_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrRoleConflict):
		writeRegistryError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, registryerrors.ErrLockTimeout):
		writeRegistryError(w, http.StatusServiceUnavailable, "lock_timeout", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
