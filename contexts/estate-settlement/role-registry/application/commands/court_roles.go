package commands

import (
	"context"
	"log/slog"
	"time"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// HeirRole is one entry of the authoritative heir list carried by a case
// event: the court currently recognizes Nin as holding Role for the estate.
type HeirRole struct {
	Nin  string `json:"nin"`
	Role string `json:"role"`
}

// syncCourtAssignedRoles reconciles the stored court-namespace assignments for
// one estate against the authoritative heir list. This is a set
// reconciliation, not a merge: any stored court role absent from the list is
// removed, whatever event once created it. Individually delegated rows share
// recipients with court rows but are never touched here; deletions match on
// heirSsn IS NULL.
func syncCourtAssignedRoles(
	ctx context.Context,
	roles ports.RoleStore,
	codes valueobjects.RoleCodes,
	estateSsn string,
	heirRoles []HeirRole,
	eventTime time.Time,
	logger *slog.Logger,
) error {
	logger = application.ResolveLogger(logger)

	all, err := roles.ListForEstate(ctx, estateSsn)
	if err != nil {
		return err
	}
	current := make([]entities.RoleAssignment, 0, len(all))
	for _, assignment := range all {
		if codes.IsCourtRole(assignment.RoleCode) {
			current = append(current, assignment)
		}
	}

	var toAdd []entities.RoleAssignment
	for _, heirRole := range heirRoles {
		if !valueobjects.IsValidSsn(heirRole.Nin) {
			return domainerrors.ErrInvalidHeirSsn
		}
		if !codes.IsCourtRole(heirRole.Role) {
			return domainerrors.ErrInvalidRoleCode
		}
		if !containsGrant(current, heirRole.Nin, heirRole.Role) {
			toAdd = append(toAdd, entities.RoleAssignment{
				EstateSsn:    estateSsn,
				RecipientSsn: heirRole.Nin,
				RoleCode:     heirRole.Role,
				Created:      eventTime.UTC(),
			})
		}
	}

	var toRemove []entities.RoleAssignment
	for _, assignment := range current {
		if !heirListContains(heirRoles, assignment.RecipientSsn, assignment.RoleCode) {
			toRemove = append(toRemove, assignment)
		}
	}

	logger.Info("court role diff computed",
		"event", "role_registry_court_diff_computed",
		"module", "estate-settlement/role-registry",
		"layer", "application",
		"estate_ssn", estateSsn,
		"to_add", len(toAdd),
		"to_remove", len(toRemove),
	)

	for _, assignment := range toAdd {
		if err := roles.Insert(ctx, assignment); err != nil {
			return err
		}
	}
	for _, assignment := range toRemove {
		if _, err := roles.DeleteExact(ctx, assignment.EstateSsn, assignment.RecipientSsn, assignment.RoleCode, nil); err != nil {
			return err
		}
	}
	return nil
}

func containsGrant(assignments []entities.RoleAssignment, recipientSsn string, roleCode string) bool {
	for _, assignment := range assignments {
		if assignment.RecipientSsn == recipientSsn && assignment.RoleCode == roleCode {
			return true
		}
	}
	return false
}

func heirListContains(heirRoles []HeirRole, recipientSsn string, roleCode string) bool {
	for _, heirRole := range heirRoles {
		if heirRole.Nin == recipientSsn && heirRole.Role == roleCode {
			return true
		}
	}
	return false
}
