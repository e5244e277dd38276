package queries

import (
	"context"
	"log/slog"
	"strings"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// ExternalRolesQuery is the role lookup offered to parties outside the estate
// platform. AllRolesScope reports whether the caller's token carried the scope
// that unlocks the full role set.
type ExternalRolesQuery struct {
	EstateSsn     string
	RecipientSsn  string
	AllRolesScope bool
}

// ExternalRolesUseCase projects the stored assignments for an outside caller.
// Individual delegations are a private matter between two persons and are
// never exposed here regardless of scope; without the all-roles scope only the
// probate role itself is visible.
type ExternalRolesUseCase struct {
	Roles  ports.RoleStore
	Codes  valueobjects.RoleCodes
	Logger *slog.Logger
}

func (uc ExternalRolesUseCase) Execute(ctx context.Context, query ExternalRolesQuery) ([]AnnotatedRoleAssignment, error) {
	logger := application.ResolveLogger(uc.Logger)

	estateSsn := strings.TrimSpace(query.EstateSsn)
	if !valueobjects.IsValidSsn(estateSsn) {
		return nil, domainerrors.ErrInvalidEstateSsn
	}
	recipientSsn := strings.TrimSpace(query.RecipientSsn)
	if !valueobjects.IsValidSsn(recipientSsn) {
		return nil, domainerrors.ErrInvalidRecipientSsn
	}

	inner := EstateRolesUseCase{Roles: uc.Roles, Codes: uc.Codes, Logger: uc.Logger}
	annotated, err := inner.Execute(ctx, EstateRolesQuery{EstateSsn: estateSsn, RecipientSsn: recipientSsn})
	if err != nil {
		return nil, err
	}

	visible := make([]AnnotatedRoleAssignment, 0, len(annotated))
	for _, assignment := range annotated {
		if assignment.RoleCode == uc.Codes.IndividualProxy {
			continue
		}
		if !query.AllRolesScope && assignment.RoleCode != uc.Codes.Probate {
			continue
		}
		visible = append(visible, assignment)
	}

	logger.Info("external roles listed",
		"event", "role_registry_external_roles_listed",
		"module", "estate-settlement/role-registry",
		"layer", "application",
		"estate_ssn", estateSsn,
		"count", len(visible),
		"all_roles_scope", query.AllRolesScope,
	)
	return visible, nil
}
