package queries_test

import (
	"context"
	"errors"
	"testing"

	"estateauthz/contexts/estate-settlement/role-registry/adapters/memory"
	"estateauthz/contexts/estate-settlement/role-registry/application/queries"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
)

func newExternalRolesUseCase(store *memory.Store) queries.ExternalRolesUseCase {
	return queries.ExternalRolesUseCase{Roles: store, Codes: valueobjects.DefaultRoleCodes()}
}

func TestExternalRolesRequiresRecipient(t *testing.T) {
	uc := newExternalRolesUseCase(memory.NewStore())

	_, err := uc.Execute(context.Background(), queries.ExternalRolesQuery{EstateSsn: estateSsn})
	if !errors.Is(err, domainerrors.ErrInvalidRecipientSsn) {
		t.Fatalf("expected invalid recipient ssn, got %v", err)
	}
}

func TestExternalRolesProbateOnlyWithoutScope(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()
	seedAssignment(t, store, heirOne, codes.Probate, nil)
	seedAssignment(t, store, heirOne, codes.Formuesfullmakt, nil)

	uc := newExternalRolesUseCase(store)
	visible, err := uc.Execute(context.Background(), queries.ExternalRolesQuery{EstateSsn: estateSsn, RecipientSsn: heirOne})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(visible) != 1 || visible[0].RoleCode != codes.Probate {
		t.Fatalf("expected only probate visible without scope, got %+v", visible)
	}
}

func TestExternalRolesFullSetWithScope(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()
	seedAssignment(t, store, heirOne, codes.Probate, nil)
	seedAssignment(t, store, heirOne, codes.Formuesfullmakt, nil)
	seedAssignment(t, store, heirOne, codes.CollectiveProxy, nil)

	uc := newExternalRolesUseCase(store)
	visible, err := uc.Execute(context.Background(), queries.ExternalRolesQuery{EstateSsn: estateSsn, RecipientSsn: heirOne, AllRolesScope: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(visible) != 3 {
		t.Fatalf("expected full role set with scope, got %d", len(visible))
	}
}

func TestExternalRolesNeverExposeIndividualProxy(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()
	seedAssignment(t, store, heirTwo, codes.Probate, nil)
	grantor := heirTwo
	seedAssignment(t, store, heirOne, codes.IndividualProxy, &grantor)

	uc := newExternalRolesUseCase(store)
	visible, err := uc.Execute(context.Background(), queries.ExternalRolesQuery{EstateSsn: estateSsn, RecipientSsn: heirOne, AllRolesScope: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for _, assignment := range visible {
		if assignment.RoleCode == codes.IndividualProxy {
			t.Fatalf("individual proxy must never be exposed externally")
		}
	}
	if len(visible) != 0 {
		t.Fatalf("expected no visible roles, got %d", len(visible))
	}
}
