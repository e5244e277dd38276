package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/adapters/memory"
	"estateauthz/contexts/estate-settlement/role-registry/application/commands"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
)

const outsiderSsn = "55555555555"

func seedProbateHolders(t *testing.T, store *memory.Store, holders ...string) {
	t.Helper()
	uc := newReconcileUseCase(store)
	heirs := make([]commands.HeirRole, 0, len(holders))
	for _, holder := range holders {
		heirs = append(heirs, commands.HeirRole{Nin: holder, Role: probateCode()})
	}
	_, err := uc.Execute(context.Background(), caseEvent(t, "seed", estateSsn, commands.CaseStatusFerdigbehandlet, heirs, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("seed probate holders: %v", err)
	}
}

func newDelegateUseCase(store *memory.Store) commands.DelegateProxyUseCase {
	return commands.DelegateProxyUseCase{UnitOfWork: store, Clock: store, Codes: valueobjects.DefaultRoleCodes()}
}

func newRevokeUseCase(store *memory.Store) commands.RevokeProxyUseCase {
	return commands.RevokeProxyUseCase{UnitOfWork: store, Clock: store, Codes: valueobjects.DefaultRoleCodes()}
}

func TestDelegateRequiresProbateHolder(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne)

	err := newDelegateUseCase(store).Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirTwo,
		RecipientSsn: outsiderSsn,
	})
	if !errors.Is(err, domainerrors.ErrNotProbateHolder) {
		t.Fatalf("expected not probate holder, got %v", err)
	}
}

func TestDelegateRejectsSelfDelegation(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne)

	err := newDelegateUseCase(store).Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirOne,
		RecipientSsn: heirOne,
	})
	if !errors.Is(err, domainerrors.ErrInvalidRecipientSsn) {
		t.Fatalf("expected invalid recipient, got %v", err)
	}
}

func TestDelegateValidatesIdentifiers(t *testing.T) {
	store := memory.NewStore()
	uc := newDelegateUseCase(store)

	err := uc.Execute(context.Background(), commands.DelegateProxyCommand{EstateSsn: "bad", HeirSsn: heirOne, RecipientSsn: heirTwo})
	if !errors.Is(err, domainerrors.ErrInvalidEstateSsn) {
		t.Fatalf("expected invalid estate ssn, got %v", err)
	}
	err = uc.Execute(context.Background(), commands.DelegateProxyCommand{EstateSsn: estateSsn, HeirSsn: "bad", RecipientSsn: heirTwo})
	if !errors.Is(err, domainerrors.ErrInvalidHeirSsn) {
		t.Fatalf("expected invalid heir ssn, got %v", err)
	}
	err = uc.Execute(context.Background(), commands.DelegateProxyCommand{EstateSsn: estateSsn, HeirSsn: heirOne, RecipientSsn: "bad"})
	if !errors.Is(err, domainerrors.ErrInvalidRecipientSsn) {
		t.Fatalf("expected invalid recipient ssn, got %v", err)
	}
}

func TestDelegateDuplicateConflicts(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo)
	uc := newDelegateUseCase(store)
	cmd := commands.DelegateProxyCommand{EstateSsn: estateSsn, HeirSsn: heirOne, RecipientSsn: outsiderSsn}

	if err := uc.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("first delegation failed: %v", err)
	}
	if err := uc.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrRoleConflict) {
		t.Fatalf("expected conflict on duplicate delegation, got %v", err)
	}
}

func TestDelegateRevokeRoundTrip(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne)
	codes := valueobjects.DefaultRoleCodes()

	err := newDelegateUseCase(store).Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirOne,
		RecipientSsn: outsiderSsn,
	})
	if err != nil {
		t.Fatalf("delegation failed: %v", err)
	}

	assignments, _ := store.ListForPerson(context.Background(), estateSsn, outsiderSsn)
	foundIndividual := false
	for _, assignment := range assignments {
		if assignment.RoleCode == codes.IndividualProxy {
			foundIndividual = true
			if assignment.HeirSsn == nil || *assignment.HeirSsn != heirOne {
				t.Fatalf("individual proxy must record the grantor, got %v", assignment.HeirSsn)
			}
		}
	}
	if !foundIndividual {
		t.Fatalf("expected individual proxy for recipient")
	}

	revoke := newRevokeUseCase(store)
	cmd := commands.RevokeProxyCommand{EstateSsn: estateSsn, HeirSsn: heirOne, RecipientSsn: outsiderSsn}
	if err := revoke.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	assignments, _ = store.ListForPerson(context.Background(), estateSsn, outsiderSsn)
	if len(assignments) != 0 {
		t.Fatalf("expected all proxy roles gone after revoke, got %d", len(assignments))
	}

	if err := revoke.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrDelegationNotFound) {
		t.Fatalf("expected delegation not found on second revoke, got %v", err)
	}
}
