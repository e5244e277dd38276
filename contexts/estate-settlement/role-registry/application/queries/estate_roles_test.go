package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/adapters/memory"
	"estateauthz/contexts/estate-settlement/role-registry/application/queries"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
)

const (
	estateSsn = "11111111111"
	heirOne   = "22222222222"
	heirTwo   = "33333333333"
)

func seedAssignment(t *testing.T, store *memory.Store, recipientSsn string, roleCode string, heirSsn *string) {
	t.Helper()
	err := store.Insert(context.Background(), entities.RoleAssignment{
		EstateSsn:    estateSsn,
		RecipientSsn: recipientSsn,
		RoleCode:     roleCode,
		HeirSsn:      heirSsn,
		Created:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed %s for %s: %v", roleCode, recipientSsn, err)
	}
}

func newEstateRolesUseCase(store *memory.Store) queries.EstateRolesUseCase {
	return queries.EstateRolesUseCase{Roles: store, Codes: valueobjects.DefaultRoleCodes()}
}

func TestEstateRolesRestrictedAfterProbate(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()
	seedAssignment(t, store, heirOne, codes.Formuesfullmakt, nil)

	uc := newEstateRolesUseCase(store)
	annotated, err := uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: estateSsn})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(annotated) != 1 || annotated[0].Restricted {
		t.Fatalf("formuesfullmakt must be unrestricted before probate, got %+v", annotated)
	}

	// Issuing the certificate restricts pre-probate grants but never the
	// probate and proxy roles themselves.
	seedAssignment(t, store, heirTwo, codes.Probate, nil)
	grantor := heirTwo
	seedAssignment(t, store, heirOne, codes.IndividualProxy, &grantor)

	annotated, err = uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: estateSsn})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	byCode := map[string]bool{}
	for _, assignment := range annotated {
		byCode[assignment.RoleCode] = assignment.Restricted
	}
	if !byCode[codes.Formuesfullmakt] {
		t.Fatalf("expected formuesfullmakt restricted once probate exists")
	}
	if byCode[codes.Probate] {
		t.Fatalf("probate role must never be restricted")
	}
	if byCode[codes.IndividualProxy] {
		t.Fatalf("proxy role must never be restricted")
	}
}

func TestEstateRolesNarrowsToRecipient(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()
	seedAssignment(t, store, heirOne, codes.Probate, nil)
	seedAssignment(t, store, heirTwo, codes.Formuesfullmakt, nil)

	uc := newEstateRolesUseCase(store)
	annotated, err := uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: estateSsn, RecipientSsn: heirTwo})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(annotated) != 1 {
		t.Fatalf("expected 1 assignment for recipient, got %d", len(annotated))
	}
	if annotated[0].RecipientSsn != heirTwo {
		t.Fatalf("expected %s, got %s", heirTwo, annotated[0].RecipientSsn)
	}
	// Restriction still derives from the whole estate even when narrowed.
	if !annotated[0].Restricted {
		t.Fatalf("expected narrowed result restricted by estate-wide probate")
	}
}

func TestEstateRolesValidatesInput(t *testing.T) {
	uc := newEstateRolesUseCase(memory.NewStore())

	if _, err := uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: "123"}); !errors.Is(err, domainerrors.ErrInvalidEstateSsn) {
		t.Fatalf("expected invalid estate ssn, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: estateSsn, RecipientSsn: "x"}); !errors.Is(err, domainerrors.ErrInvalidRecipientSsn) {
		t.Fatalf("expected invalid recipient ssn, got %v", err)
	}
}

func TestEstateRolesEmptyEstate(t *testing.T) {
	uc := newEstateRolesUseCase(memory.NewStore())

	annotated, err := uc.Execute(context.Background(), queries.EstateRolesQuery{EstateSsn: estateSsn})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(annotated) != 0 {
		t.Fatalf("expected empty result, got %d", len(annotated))
	}
}
