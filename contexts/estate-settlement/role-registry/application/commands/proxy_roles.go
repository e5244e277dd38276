package commands

import (
	"context"
	"log/slog"
	"time"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// deriveProxyRoles recomputes the proxy-role state for one estate from the
// current probate-holder membership. Runs after every mutation that can change
// that membership (court diff, delegation grant/revoke), always from scratch:
//
//  1. Individual delegations whose granting heir no longer holds the probate
//     role are invalidated.
//  2. Each delegate's coverage is the set of heirs delegating to them, plus
//     themself when they hold probate standing.
//  3. A collective proxy is merited iff coverage equals the full probate-holder
//     set, and that set is non-empty.
//  4. Stored collective grants are reconciled against the merited set; losing
//     full coverage revokes the collective grant even though the remaining
//     individual delegations stay valid.
func deriveProxyRoles(
	ctx context.Context,
	roles ports.RoleStore,
	codes valueobjects.RoleCodes,
	estateSsn string,
	now time.Time,
	logger *slog.Logger,
) error {
	logger = application.ResolveLogger(logger)

	all, err := roles.ListForEstate(ctx, estateSsn)
	if err != nil {
		return err
	}

	probateHolders := make(map[string]bool)
	var delegations []entities.RoleAssignment
	var collective []entities.RoleAssignment
	for _, assignment := range all {
		switch assignment.RoleCode {
		case codes.Probate:
			probateHolders[assignment.RecipientSsn] = true
		case codes.IndividualProxy:
			delegations = append(delegations, assignment)
		case codes.CollectiveProxy:
			collective = append(collective, assignment)
		}
	}

	covered := make(map[string]map[string]bool)
	for _, delegation := range delegations {
		if delegation.HeirSsn == nil || !probateHolders[*delegation.HeirSsn] {
			removed, err := roles.DeleteExact(ctx, estateSsn, delegation.RecipientSsn, codes.IndividualProxy, delegation.HeirSsn)
			if err != nil {
				return err
			}
			if removed {
				logger.Info("stale individual delegation removed",
					"event", "role_registry_stale_delegation_removed",
					"module", "estate-settlement/role-registry",
					"layer", "application",
					"estate_ssn", estateSsn,
					"recipient_ssn", delegation.RecipientSsn,
				)
			}
			continue
		}
		if covered[delegation.RecipientSsn] == nil {
			covered[delegation.RecipientSsn] = make(map[string]bool)
		}
		covered[delegation.RecipientSsn][*delegation.HeirSsn] = true
	}

	desired := make(map[string]bool)
	for delegate, grantors := range covered {
		if probateHolders[delegate] {
			grantors[delegate] = true
		}
		if len(probateHolders) > 0 && setsEqual(grantors, probateHolders) {
			desired[delegate] = true
		}
	}

	for _, assignment := range collective {
		if desired[assignment.RecipientSsn] {
			delete(desired, assignment.RecipientSsn)
			continue
		}
		if _, err := roles.DeleteExact(ctx, estateSsn, assignment.RecipientSsn, codes.CollectiveProxy, nil); err != nil {
			return err
		}
		logger.Info("collective proxy revoked",
			"event", "role_registry_collective_proxy_revoked",
			"module", "estate-settlement/role-registry",
			"layer", "application",
			"estate_ssn", estateSsn,
			"recipient_ssn", assignment.RecipientSsn,
		)
	}
	for delegate := range desired {
		if err := roles.Insert(ctx, entities.RoleAssignment{
			EstateSsn:    estateSsn,
			RecipientSsn: delegate,
			RoleCode:     codes.CollectiveProxy,
			Created:      now.UTC(),
		}); err != nil {
			return err
		}
		logger.Info("collective proxy granted",
			"event", "role_registry_collective_proxy_granted",
			"module", "estate-settlement/role-registry",
			"layer", "application",
			"estate_ssn", estateSsn,
			"recipient_ssn", delegate,
		)
	}
	return nil
}

func setsEqual(a map[string]bool, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for key := range a {
		if !b[key] {
			return false
		}
	}
	return true
}
