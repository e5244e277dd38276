package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
	contractsv1 "estateauthz/contracts/gen/events/v1"
)

// Recognized inbound event kinds. Anything else is rejected before a
// transaction is opened.
const (
	EventKindCaseStatusUpdateValidated = "no.altinn.events.digitalt-dodsbo.v1.case-status-update-validated"
	EventKindValidateSubscription      = "platform.events.validatesubscription"
)

// Case statuses reported by the court. FEILFORT (wrongly filed) is terminal:
// every role assignment for the estate is withdrawn.
const (
	CaseStatusMottatt              = "MOTTATT"
	CaseStatusFerdigbehandlet      = "FERDIGBEHANDLET"
	CaseStatusFeilfort             = "FEILFORT"
	CaseStatusOverfortAnnenDomstol = "OVERFORT_ANNEN_DOMSTOL"
)

// CaseEventPayload is the data carried by a case-status event: the case status
// and the complete heir list the court currently recognizes.
type CaseEventPayload struct {
	CaseID     string     `json:"caseId"`
	CaseStatus string     `json:"caseStatus"`
	HeirRoles  []HeirRole `json:"heirRoles"`
}

// ReconcileOutcome classifies a successfully handled event.
type ReconcileOutcome string

const (
	// OutcomeApplied means the event mutated the role-assignment state and
	// advanced the cursor watermark.
	OutcomeApplied ReconcileOutcome = "applied"
	// OutcomeDiscarded means the ordering guard dropped a stale or redelivered
	// event. This is a normal, successful result, not a failure.
	OutcomeDiscarded ReconcileOutcome = "discarded"
	// OutcomeIgnored means the event kind is a recognized no-op (subscription
	// validation).
	OutcomeIgnored ReconcileOutcome = "ignored"
)

// ReconcileResult reports what Reconcile did with an event.
type ReconcileResult struct {
	Outcome   ReconcileOutcome `json:"outcome"`
	EstateSsn string           `json:"estate_ssn,omitempty"`
	EventID   string           `json:"event_id"`
}

// ReconcileEventUseCase converges the stored role-assignment set for one
// estate to the truth carried by an inbound case event. All steps for one
// event run inside a single transaction: cursor fetch-for-update, ordering
// guard, court-role diff, proxy derivation, watermark advance. Concurrent
// events for the same (estate, kind) serialize on the cursor row lock; any
// error rolls the whole unit back.
type ReconcileEventUseCase struct {
	UnitOfWork ports.UnitOfWork
	Clock      ports.Clock
	Codes      valueobjects.RoleCodes
	Logger     *slog.Logger
}

type reconcileHandler func(ctx context.Context, event contractsv1.CloudEvent) (ReconcileResult, error)

// Execute dispatches the event to its kind handler. The dispatch table is
// closed: unknown kinds fail with ErrUnknownEventKind and no state is touched.
func (u ReconcileEventUseCase) Execute(ctx context.Context, event contractsv1.CloudEvent) (ReconcileResult, error) {
	handlers := map[string]reconcileHandler{
		EventKindCaseStatusUpdateValidated: u.handleCaseStatusUpdate,
		EventKindValidateSubscription:      u.handleSubscriptionValidation,
	}
	handler, ok := handlers[event.Kind]
	if !ok {
		return ReconcileResult{}, domainerrors.ErrUnknownEventKind
	}
	return handler(ctx, event)
}

func (u ReconcileEventUseCase) handleSubscriptionValidation(_ context.Context, event contractsv1.CloudEvent) (ReconcileResult, error) {
	return ReconcileResult{Outcome: OutcomeIgnored, EventID: event.ID}, nil
}

func (u ReconcileEventUseCase) handleCaseStatusUpdate(ctx context.Context, event contractsv1.CloudEvent) (ReconcileResult, error) {
	logger := application.ResolveLogger(u.Logger)

	estateSsn := valueobjects.EstateSsnFromSubject(event.Subject)
	if !valueobjects.IsValidSsn(estateSsn) {
		return ReconcileResult{}, domainerrors.ErrInvalidEstateSsn
	}

	result := ReconcileResult{Outcome: OutcomeApplied, EstateSsn: estateSsn, EventID: event.ID}

	err := u.UnitOfWork.Execute(ctx, func(ctx context.Context, stores ports.TxStores) error {
		cursor, err := stores.Cursors.FetchForUpdate(ctx, estateSsn, event.Kind)
		if err != nil {
			return err
		}
		if cursor == nil {
			cursor = &entities.EventCursor{EstateSsn: estateSsn, EventKind: event.Kind}
			if err := stores.Cursors.Insert(ctx, *cursor); err != nil {
				return err
			}
		}

		// Ordering guard. A discarded event still commits so that a cursor row
		// created above survives with its zero watermark; an existing watermark
		// is left untouched.
		if cursor.IsStale(event.Time) {
			result.Outcome = OutcomeDiscarded
			logger.Info("stale event discarded",
				"event", "role_registry_event_discarded",
				"module", "estate-settlement/role-registry",
				"layer", "application",
				"event_id", event.ID,
				"event_kind", event.Kind,
				"estate_ssn", estateSsn,
				"event_time", event.Time,
				"watermark", cursor.LastProcessed,
			)
			return nil
		}

		if len(event.Data) == 0 {
			return domainerrors.ErrMissingEventPayload
		}
		var payload CaseEventPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return domainerrors.ErrMissingEventPayload
		}

		logger.Info("handling case event",
			"event", "role_registry_event_handling",
			"module", "estate-settlement/role-registry",
			"layer", "application",
			"event_id", event.ID,
			"estate_ssn", estateSsn,
			"case_id", payload.CaseID,
			"case_status", payload.CaseStatus,
		)

		if payload.CaseStatus == CaseStatusFeilfort {
			if err := removeAllRolesForEstate(ctx, stores.Roles, estateSsn); err != nil {
				return err
			}
		} else {
			if err := syncCourtAssignedRoles(ctx, stores.Roles, u.Codes, estateSsn, payload.HeirRoles, event.Time, logger); err != nil {
				return err
			}
			if err := deriveProxyRoles(ctx, stores.Roles, u.Codes, estateSsn, u.now(), logger); err != nil {
				return err
			}
		}

		cursor.LastProcessed = event.Time.UTC()
		return stores.Cursors.Save(ctx, *cursor)
	})
	if err != nil {
		logger.Error("event reconciliation failed",
			"event", "role_registry_event_failed",
			"module", "estate-settlement/role-registry",
			"layer", "application",
			"event_id", event.ID,
			"event_kind", event.Kind,
			"estate_ssn", estateSsn,
			"error", err.Error(),
		)
		return ReconcileResult{}, err
	}
	return result, nil
}

func (u ReconcileEventUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now()
}

func removeAllRolesForEstate(ctx context.Context, roles ports.RoleStore, estateSsn string) error {
	assignments, err := roles.ListForEstate(ctx, estateSsn)
	if err != nil {
		return err
	}
	for _, assignment := range assignments {
		if _, err := roles.DeleteExact(ctx, assignment.EstateSsn, assignment.RecipientSsn, assignment.RoleCode, assignment.HeirSsn); err != nil {
			return err
		}
	}
	return nil
}
