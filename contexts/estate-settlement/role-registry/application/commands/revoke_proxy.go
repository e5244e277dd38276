package commands

import (
	"context"
	"log/slog"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
)

// RevokeProxyCommand withdraws the individual proxy an heir previously granted
// to a recipient.
type RevokeProxyCommand struct {
	EstateSsn    string
	HeirSsn      string
	RecipientSsn string
}

// RevokeProxyUseCase removes an individual delegation and recomputes the
// collective proxy state, which may lose its full coverage as a result.
type RevokeProxyUseCase struct {
	UnitOfWork ports.UnitOfWork
	Clock      ports.Clock
	Codes      valueobjects.RoleCodes
	Logger     *slog.Logger
}

func (u RevokeProxyUseCase) Execute(ctx context.Context, cmd RevokeProxyCommand) error {
	logger := application.ResolveLogger(u.Logger)

	if !valueobjects.IsValidSsn(cmd.EstateSsn) {
		return domainerrors.ErrInvalidEstateSsn
	}
	if !valueobjects.IsValidSsn(cmd.HeirSsn) {
		return domainerrors.ErrInvalidHeirSsn
	}
	if !valueobjects.IsValidSsn(cmd.RecipientSsn) {
		return domainerrors.ErrInvalidRecipientSsn
	}

	err := u.UnitOfWork.Execute(ctx, func(ctx context.Context, stores ports.TxStores) error {
		heir := cmd.HeirSsn
		deleted, err := stores.Roles.DeleteExact(ctx, cmd.EstateSsn, cmd.RecipientSsn, u.Codes.IndividualProxy, &heir)
		if err != nil {
			return err
		}
		if !deleted {
			return domainerrors.ErrDelegationNotFound
		}
		return deriveProxyRoles(ctx, stores.Roles, u.Codes, cmd.EstateSsn, u.Clock.Now().UTC(), logger)
	})
	if err != nil {
		return err
	}

	logger.Info("proxy revoked",
		"event", "role_registry_proxy_revoked",
		"module", "estate-settlement/role-registry",
		"layer", "application",
		"estate_ssn", cmd.EstateSsn,
		"heir_ssn", cmd.HeirSsn,
		"recipient_ssn", cmd.RecipientSsn,
	)
	return nil
}
