package queries

import (
	"context"
	"log/slog"
	"strings"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// EstateRolesQuery asks for the role assignments of one estate, optionally
// narrowed to a single recipient.
type EstateRolesQuery struct {
	EstateSsn    string
	RecipientSsn string
}

// AnnotatedRoleAssignment is a stored assignment plus the restricted flag
// computed at read time. Restricted means the probate certificate for the
// estate has been issued and this role alone no longer authorizes access;
// the holder needs a probate or proxy role instead.
type AnnotatedRoleAssignment struct {
	entities.RoleAssignment
	Restricted bool
}

// EstateRolesUseCase is the policy-information read path: it returns the
// current assignments with restriction state, never mutating anything.
type EstateRolesUseCase struct {
	Roles  ports.RoleStore
	Codes  valueobjects.RoleCodes
	Logger *slog.Logger
}

func (uc EstateRolesUseCase) Execute(ctx context.Context, query EstateRolesQuery) ([]AnnotatedRoleAssignment, error) {
	logger := application.ResolveLogger(uc.Logger)

	estateSsn := strings.TrimSpace(query.EstateSsn)
	if !valueobjects.IsValidSsn(estateSsn) {
		return nil, domainerrors.ErrInvalidEstateSsn
	}
	recipientSsn := strings.TrimSpace(query.RecipientSsn)
	if recipientSsn != "" && !valueobjects.IsValidSsn(recipientSsn) {
		return nil, domainerrors.ErrInvalidRecipientSsn
	}

	estateRoles, err := uc.Roles.ListForEstate(ctx, estateSsn)
	if err != nil {
		return nil, err
	}

	// The restricted flag depends on the whole estate, not on the narrowed
	// result set: once any probate role exists, the certificate is issued.
	probateIssued := false
	for _, assignment := range estateRoles {
		if assignment.RoleCode == uc.Codes.Probate {
			probateIssued = true
			break
		}
	}

	selected := estateRoles
	if recipientSsn != "" {
		selected, err = uc.Roles.ListForPerson(ctx, estateSsn, recipientSsn)
		if err != nil {
			return nil, err
		}
	}

	annotated := make([]AnnotatedRoleAssignment, 0, len(selected))
	for _, assignment := range selected {
		annotated = append(annotated, AnnotatedRoleAssignment{
			RoleAssignment: assignment,
			Restricted:     probateIssued && !uc.exempt(assignment.RoleCode),
		})
	}

	logger.Info("estate roles listed",
		"event", "role_registry_roles_listed",
		"module", "estate-settlement/role-registry",
		"layer", "application",
		"estate_ssn", estateSsn,
		"count", len(annotated),
		"probate_issued", probateIssued,
	)
	return annotated, nil
}

func (uc EstateRolesUseCase) exempt(roleCode string) bool {
	return roleCode == uc.Codes.Probate || uc.Codes.IsProxyRole(roleCode)
}
