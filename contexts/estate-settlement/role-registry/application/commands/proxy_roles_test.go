package commands_test

import (
	"context"
	"testing"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/adapters/memory"
	"estateauthz/contexts/estate-settlement/role-registry/application/commands"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
)

func rolesFor(t *testing.T, store *memory.Store, recipientSsn string) map[string]bool {
	t.Helper()
	assignments, err := store.ListForPerson(context.Background(), estateSsn, recipientSsn)
	if err != nil {
		t.Fatalf("list for %s: %v", recipientSsn, err)
	}
	codes := map[string]bool{}
	for _, assignment := range assignments {
		codes[assignment.RoleCode] = true
	}
	return codes
}

func TestCollectiveProxyRequiresFullCoverage(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo)
	codes := valueobjects.DefaultRoleCodes()
	delegate := newDelegateUseCase(store)

	// One of two holders has delegated: coverage is partial.
	err := delegate.Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirOne,
		RecipientSsn: outsiderSsn,
	})
	if err != nil {
		t.Fatalf("first delegation failed: %v", err)
	}
	if rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("collective proxy granted on partial coverage")
	}

	err = delegate.Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirTwo,
		RecipientSsn: outsiderSsn,
	})
	if err != nil {
		t.Fatalf("second delegation failed: %v", err)
	}
	if !rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy once every holder has delegated")
	}
}

func TestCollectiveProxyCountsHolderSelfCoverage(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo)
	codes := valueobjects.DefaultRoleCodes()

	// heirOne covers itself as a holder, so heirTwo's delegation alone
	// completes the coverage.
	err := newDelegateUseCase(store).Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirTwo,
		RecipientSsn: heirOne,
	})
	if err != nil {
		t.Fatalf("delegation failed: %v", err)
	}
	if !rolesFor(t, store, heirOne)[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy for holder covering itself")
	}
}

func TestRevokeWithdrawsCollectiveProxy(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo)
	codes := valueobjects.DefaultRoleCodes()
	delegate := newDelegateUseCase(store)

	for _, holder := range []string{heirOne, heirTwo} {
		err := delegate.Execute(context.Background(), commands.DelegateProxyCommand{
			EstateSsn:    estateSsn,
			HeirSsn:      holder,
			RecipientSsn: outsiderSsn,
		})
		if err != nil {
			t.Fatalf("delegation from %s failed: %v", holder, err)
		}
	}
	if !rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy after full coverage")
	}

	err := newRevokeUseCase(store).Execute(context.Background(), commands.RevokeProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirOne,
		RecipientSsn: outsiderSsn,
	})
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	got := rolesFor(t, store, outsiderSsn)
	if got[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy withdrawn after revocation")
	}
	if !got[codes.IndividualProxy] {
		t.Fatalf("expected remaining individual proxy to survive")
	}
}

func TestStaleDelegationInvalidatedOnHolderLoss(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo)
	codes := valueobjects.DefaultRoleCodes()
	delegate := newDelegateUseCase(store)

	for _, holder := range []string{heirOne, heirTwo} {
		err := delegate.Execute(context.Background(), commands.DelegateProxyCommand{
			EstateSsn:    estateSsn,
			HeirSsn:      holder,
			RecipientSsn: outsiderSsn,
		})
		if err != nil {
			t.Fatalf("delegation from %s failed: %v", holder, err)
		}
	}

	// The court withdraws heirTwo's probate and names heirThree instead.
	// heirTwo's delegation is now stale and must be removed, and heirThree
	// has not delegated, so coverage is broken and the collective grant goes.
	uc := newReconcileUseCase(store)
	_, err := uc.Execute(context.Background(), caseEvent(t, "ev-loss", estateSsn, commands.CaseStatusFerdigbehandlet, []commands.HeirRole{
		{Nin: heirOne, Role: codes.Probate},
		{Nin: heirThree, Role: codes.Probate},
	}, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	got := rolesFor(t, store, outsiderSsn)
	if got[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy withdrawn after holder loss")
	}

	assignments, _ := store.ListForPerson(context.Background(), estateSsn, outsiderSsn)
	for _, assignment := range assignments {
		if assignment.RoleCode != codes.IndividualProxy {
			continue
		}
		if assignment.HeirSsn != nil && *assignment.HeirSsn == heirTwo {
			t.Fatalf("expected stale delegation from %s removed", heirTwo)
		}
	}
	if !got[codes.IndividualProxy] {
		t.Fatalf("expected delegation from remaining holder to survive")
	}
}

func TestCoverageExactnessAcrossThreeHolders(t *testing.T) {
	store := memory.NewStore()
	seedProbateHolders(t, store, heirOne, heirTwo, heirThree)
	codes := valueobjects.DefaultRoleCodes()
	delegate := newDelegateUseCase(store)

	for _, holder := range []string{heirOne, heirTwo} {
		err := delegate.Execute(context.Background(), commands.DelegateProxyCommand{
			EstateSsn:    estateSsn,
			HeirSsn:      holder,
			RecipientSsn: outsiderSsn,
		})
		if err != nil {
			t.Fatalf("delegation from %s failed: %v", holder, err)
		}
	}
	if rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("two of three delegations must not grant the collective proxy")
	}

	err := delegate.Execute(context.Background(), commands.DelegateProxyCommand{
		EstateSsn:    estateSsn,
		HeirSsn:      heirThree,
		RecipientSsn: outsiderSsn,
	})
	if err != nil {
		t.Fatalf("third delegation failed: %v", err)
	}
	if !rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("expected exactly one collective grant once all three delegated")
	}

	// heirTwo loses probate standing: its delegation is invalidated, but the
	// surviving delegations still cover the shrunken holder set exactly, so
	// the collective grant stands.
	uc := newReconcileUseCase(store)
	_, err = uc.Execute(context.Background(), caseEvent(t, "ev-loss", estateSsn, commands.CaseStatusFerdigbehandlet, []commands.HeirRole{
		{Nin: heirOne, Role: codes.Probate},
		{Nin: heirThree, Role: codes.Probate},
	}, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if !rolesFor(t, store, outsiderSsn)[codes.CollectiveProxy] {
		t.Fatalf("expected collective proxy retained while coverage stays full")
	}
	assignments, _ := store.ListForPerson(context.Background(), estateSsn, outsiderSsn)
	grantors := map[string]bool{}
	for _, a := range assignments {
		if a.RoleCode == codes.IndividualProxy && a.HeirSsn != nil {
			grantors[*a.HeirSsn] = true
		}
	}
	if len(grantors) != 2 || !grantors[heirOne] || !grantors[heirThree] {
		t.Fatalf("expected delegations from remaining holders only, got %v", grantors)
	}
}

func TestProxyDerivationIgnoresNonCourtEstateWithoutHolders(t *testing.T) {
	store := memory.NewStore()
	codes := valueobjects.DefaultRoleCodes()

	// A lingering delegation with no probate holders left grants nothing and
	// is cleared on the next reconciliation.
	heir := heirOne
	err := store.Insert(context.Background(), entities.RoleAssignment{
		EstateSsn:    estateSsn,
		RecipientSsn: outsiderSsn,
		RoleCode:     codes.IndividualProxy,
		HeirSsn:      &heir,
		Created:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed delegation: %v", err)
	}

	uc := newReconcileUseCase(store)
	_, err = uc.Execute(context.Background(), caseEvent(t, "ev-1", estateSsn, commands.CaseStatusMottatt, nil, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	assignments, _ := store.ListForEstate(context.Background(), estateSsn)
	if len(assignments) != 0 {
		t.Fatalf("expected no roles for estate without holders, got %d", len(assignments))
	}
}
