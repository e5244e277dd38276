package roleregistry

import (
	"log/slog"

	httpadapter "estateauthz/contexts/estate-settlement/role-registry/adapters/http"
	"estateauthz/contexts/estate-settlement/role-registry/adapters/memory"
	"estateauthz/contexts/estate-settlement/role-registry/application/commands"
	"estateauthz/contexts/estate-settlement/role-registry/application/queries"
	"estateauthz/contexts/estate-settlement/role-registry/application/workers"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// Module is the role-registry composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	UnitOfWork ports.UnitOfWork
	Roles      ports.RoleStore
	Outbox     ports.OutboxRepository
	Publisher  ports.RoleChangePublisher
	Clock      ports.Clock
	Codes      valueobjects.RoleCodes
	Topic      string
	BatchSize  int
	Logger     *slog.Logger
}

// NewModule wires role-registry use-cases and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	codes := deps.Codes
	if codes.CourtPrefix == "" {
		codes = valueobjects.DefaultRoleCodes()
	}

	reconcile := commands.ReconcileEventUseCase{
		UnitOfWork: deps.UnitOfWork,
		Clock:      deps.Clock,
		Codes:      codes,
		Logger:     deps.Logger,
	}
	delegate := commands.DelegateProxyUseCase{
		UnitOfWork: deps.UnitOfWork,
		Clock:      deps.Clock,
		Codes:      codes,
		Logger:     deps.Logger,
	}
	revoke := commands.RevokeProxyUseCase{
		UnitOfWork: deps.UnitOfWork,
		Clock:      deps.Clock,
		Codes:      codes,
		Logger:     deps.Logger,
	}
	estateRoles := queries.EstateRolesUseCase{
		Roles:  deps.Roles,
		Codes:  codes,
		Logger: deps.Logger,
	}
	externalRoles := queries.ExternalRolesUseCase{
		Roles:  deps.Roles,
		Codes:  codes,
		Logger: deps.Logger,
	}

	handler := httpadapter.Handler{
		ReconcileEvent: reconcile,
		DelegateProxy:  delegate,
		RevokeProxy:    revoke,
		EstateRoles:    estateRoles,
		ExternalRoles:  externalRoles,
		Logger:         deps.Logger,
	}
	relay := workers.OutboxRelay{
		Outbox:    deps.Outbox,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Topic:     deps.Topic,
		BatchSize: deps.BatchSize,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: handler,
		Relay:   relay,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(publisher ports.RoleChangePublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		UnitOfWork: store,
		Roles:      store,
		Outbox:     store,
		Publisher:  publisher,
		Clock:      store,
		Codes:      valueobjects.DefaultRoleCodes(),
		Logger:     logger,
	})
	module.Store = store
	return module
}
