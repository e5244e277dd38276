package commands

import (
	"context"
	"log/slog"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// DelegateProxyCommand grants an individual proxy role from one heir to a
// recipient of their choosing.
type DelegateProxyCommand struct {
	EstateSsn     string
	HeirSsn       string
	RecipientSsn  string
	Justification string
}

// DelegateProxyUseCase validates and stores an individual proxy delegation,
// then recomputes the collective proxy state the delegation may have changed.
// Only a current probate holder for the estate can delegate.
type DelegateProxyUseCase struct {
	UnitOfWork ports.UnitOfWork
	Clock      ports.Clock
	Codes      valueobjects.RoleCodes
	Logger     *slog.Logger
}

func (u DelegateProxyUseCase) Execute(ctx context.Context, cmd DelegateProxyCommand) error {
	logger := application.ResolveLogger(u.Logger)

	if !valueobjects.IsValidSsn(cmd.EstateSsn) {
		return domainerrors.ErrInvalidEstateSsn
	}
	if !valueobjects.IsValidSsn(cmd.HeirSsn) {
		return domainerrors.ErrInvalidHeirSsn
	}
	if !valueobjects.IsValidSsn(cmd.RecipientSsn) || cmd.RecipientSsn == cmd.HeirSsn {
		return domainerrors.ErrInvalidRecipientSsn
	}

	err := u.UnitOfWork.Execute(ctx, func(ctx context.Context, stores ports.TxStores) error {
		current, err := stores.Roles.ListForPerson(ctx, cmd.EstateSsn, cmd.HeirSsn)
		if err != nil {
			return err
		}
		holdsProbate := false
		for _, assignment := range current {
			if assignment.RoleCode == u.Codes.Probate {
				holdsProbate = true
				break
			}
		}
		if !holdsProbate {
			return domainerrors.ErrNotProbateHolder
		}

		heir := cmd.HeirSsn
		delegation := entities.RoleAssignment{
			EstateSsn:     cmd.EstateSsn,
			RecipientSsn:  cmd.RecipientSsn,
			HeirSsn:       &heir,
			RoleCode:      u.Codes.IndividualProxy,
			Created:       u.Clock.Now().UTC(),
			Justification: cmd.Justification,
		}
		if err := stores.Roles.Insert(ctx, delegation); err != nil {
			return err
		}
		return deriveProxyRoles(ctx, stores.Roles, u.Codes, cmd.EstateSsn, u.Clock.Now().UTC(), logger)
	})
	if err != nil {
		return err
	}

	logger.Info("proxy delegated",
		"event", "role_registry_proxy_delegated",
		"module", "estate-settlement/role-registry",
		"layer", "application",
		"estate_ssn", cmd.EstateSsn,
		"heir_ssn", cmd.HeirSsn,
		"recipient_ssn", cmd.RecipientSsn,
	)
	return nil
}
