package httpadapter

import (
	"context"
	"log/slog"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/application/commands"
	"estateauthz/contexts/estate-settlement/role-registry/application/queries"
	httptransport "estateauthz/contexts/estate-settlement/role-registry/transport/http"
	contractsv1 "estateauthz/contracts/gen/events/v1"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	ReconcileEvent commands.ReconcileEventUseCase
	DelegateProxy  commands.DelegateProxyUseCase
	RevokeProxy    commands.RevokeProxyUseCase
	EstateRoles    queries.EstateRolesUseCase
	ExternalRoles  queries.ExternalRolesUseCase
	Logger         *slog.Logger
}

// ReceiveEventHandler feeds one inbound case event to the reconciliation core.
func (h Handler) ReceiveEventHandler(ctx context.Context, event contractsv1.CloudEvent) (httptransport.EventReceiptResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http case event received",
		"event", "role_registry_http_event_received",
		"module", "estate-settlement/role-registry",
		"layer", "transport",
		"event_id", event.ID,
		"event_kind", event.Kind,
	)

	result, err := h.ReconcileEvent.Execute(ctx, event)
	if err != nil {
		logger.Error("http case event failed",
			"event", "role_registry_http_event_failed",
			"module", "estate-settlement/role-registry",
			"layer", "transport",
			"event_id", event.ID,
			"event_kind", event.Kind,
			"error", err.Error(),
		)
		return httptransport.EventReceiptResponse{}, err
	}
	return httptransport.EventReceiptResponse{
		Outcome:   string(result.Outcome),
		EventID:   result.EventID,
		EstateSsn: result.EstateSsn,
	}, nil
}

// PipHandler serves the internal policy-information lookup.
func (h Handler) PipHandler(ctx context.Context, request httptransport.PipRequest) (httptransport.PipResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http pip lookup received",
		"event", "role_registry_http_pip_received",
		"module", "estate-settlement/role-registry",
		"layer", "transport",
		"estate_ssn", request.EstateSsn,
	)

	annotated, err := h.EstateRoles.Execute(ctx, queries.EstateRolesQuery{
		EstateSsn:    request.EstateSsn,
		RecipientSsn: request.RecipientSsn,
	})
	if err != nil {
		logger.Error("http pip lookup failed",
			"event", "role_registry_http_pip_failed",
			"module", "estate-settlement/role-registry",
			"layer", "transport",
			"estate_ssn", request.EstateSsn,
			"error", err.Error(),
		)
		return httptransport.PipResponse{}, err
	}
	return httptransport.PipResponse{
		EstateSsn:       request.EstateSsn,
		RoleAssignments: toAssignmentDTOs(annotated),
	}, nil
}

// ExternalRolesHandler serves the scope-gated lookup for outside callers.
func (h Handler) ExternalRolesHandler(
	ctx context.Context,
	allRolesScope bool,
	request httptransport.ExternalAuthorizationRequest,
) (httptransport.ExternalAuthorizationResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	annotated, err := h.ExternalRoles.Execute(ctx, queries.ExternalRolesQuery{
		EstateSsn:     request.EstateSsn,
		RecipientSsn:  request.RecipientSsn,
		AllRolesScope: allRolesScope,
	})
	if err != nil {
		logger.Error("http external lookup failed",
			"event", "role_registry_http_external_failed",
			"module", "estate-settlement/role-registry",
			"layer", "transport",
			"estate_ssn", request.EstateSsn,
			"error", err.Error(),
		)
		return httptransport.ExternalAuthorizationResponse{}, err
	}
	return httptransport.ExternalAuthorizationResponse{
		EstateSsn:       request.EstateSsn,
		RoleAssignments: toAssignmentDTOs(annotated),
	}, nil
}

// CreateDelegationHandler grants an individual proxy.
func (h Handler) CreateDelegationHandler(ctx context.Context, request httptransport.CreateDelegationRequest) (httptransport.DelegationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http delegation create received",
		"event", "role_registry_http_delegation_create_received",
		"module", "estate-settlement/role-registry",
		"layer", "transport",
		"estate_ssn", request.EstateSsn,
	)

	err := h.DelegateProxy.Execute(ctx, commands.DelegateProxyCommand{
		EstateSsn:     request.EstateSsn,
		HeirSsn:       request.HeirSsn,
		RecipientSsn:  request.RecipientSsn,
		Justification: request.Justification,
	})
	if err != nil {
		logger.Error("http delegation create failed",
			"event", "role_registry_http_delegation_create_failed",
			"module", "estate-settlement/role-registry",
			"layer", "transport",
			"estate_ssn", request.EstateSsn,
			"error", err.Error(),
		)
		return httptransport.DelegationResponse{}, err
	}
	return httptransport.DelegationResponse{Status: "delegated"}, nil
}

// DeleteDelegationHandler revokes an individual proxy.
func (h Handler) DeleteDelegationHandler(ctx context.Context, request httptransport.DeleteDelegationRequest) (httptransport.DelegationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http delegation delete received",
		"event", "role_registry_http_delegation_delete_received",
		"module", "estate-settlement/role-registry",
		"layer", "transport",
		"estate_ssn", request.EstateSsn,
	)

	err := h.RevokeProxy.Execute(ctx, commands.RevokeProxyCommand{
		EstateSsn:    request.EstateSsn,
		HeirSsn:      request.HeirSsn,
		RecipientSsn: request.RecipientSsn,
	})
	if err != nil {
		logger.Error("http delegation delete failed",
			"event", "role_registry_http_delegation_delete_failed",
			"module", "estate-settlement/role-registry",
			"layer", "transport",
			"estate_ssn", request.EstateSsn,
			"error", err.Error(),
		)
		return httptransport.DelegationResponse{}, err
	}
	return httptransport.DelegationResponse{Status: "revoked"}, nil
}

func toAssignmentDTOs(annotated []queries.AnnotatedRoleAssignment) []httptransport.RoleAssignmentDTO {
	items := make([]httptransport.RoleAssignmentDTO, 0, len(annotated))
	for _, assignment := range annotated {
		items = append(items, httptransport.RoleAssignmentDTO{
			EstateSsn:    assignment.EstateSsn,
			RecipientSsn: assignment.RecipientSsn,
			RoleCode:     assignment.RoleCode,
			HeirSsn:      assignment.HeirSsn,
			Created:      assignment.Created,
			Restricted:   assignment.Restricted,
		})
	}
	return items
}
