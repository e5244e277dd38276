package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
	contractsv1 "estateauthz/contracts/gen/events/v1"

	"github.com/google/uuid"
)

const (
	AuditActionGrant  = "GRANT"
	AuditActionRevoke = "REVOKE"

	EventTypeRoleGranted = "role-registry.role-granted"
	EventTypeRoleRevoked = "role-registry.role-revoked"
)

// AuditEntry is one row of the append-only mutation log.
type AuditEntry struct {
	Action       string
	EstateSsn    string
	RecipientSsn string
	RoleCode     string
	HeirSsn      *string
	Timestamp    time.Time
}

type outboxRow struct {
	ports.OutboxMessage
	PublishedAt *time.Time
}

// Store is an in-memory adapter implementing the role, cursor and outbox ports
// plus the unit of work. It is intended for tests and local development wiring.
// Transactions snapshot all state up front and restore it when the unit fails,
// matching the commit-or-rollback contract of the database adapter.
type Store struct {
	mu sync.RWMutex

	nextID      int64
	assignments map[int64]entities.RoleAssignment
	cursors     map[string]entities.EventCursor
	audit       []AuditEntry
	outbox      map[string]outboxRow

	// FailCursorLock makes the next cursor fetch fail as if another
	// transaction held the row lock past the timeout.
	FailCursorLock bool
}

func NewStore() *Store {
	return &Store{
		nextID:      1,
		assignments: make(map[int64]entities.RoleAssignment),
		cursors:     make(map[string]entities.EventCursor),
		outbox:      make(map[string]outboxRow),
	}
}

// Execute runs fn against transaction-scoped stores under one lock. Any error
// restores the pre-transaction state.
func (s *Store) Execute(ctx context.Context, fn func(ctx context.Context, stores ports.TxStores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapAssignments := make(map[int64]entities.RoleAssignment, len(s.assignments))
	for id, assignment := range s.assignments {
		snapAssignments[id] = assignment
	}
	snapCursors := make(map[string]entities.EventCursor, len(s.cursors))
	for key, cursor := range s.cursors {
		snapCursors[key] = cursor
	}
	snapOutbox := make(map[string]outboxRow, len(s.outbox))
	for id, row := range s.outbox {
		snapOutbox[id] = row
	}
	snapAuditLen := len(s.audit)
	snapNextID := s.nextID

	stores := ports.TxStores{Roles: txRoles{store: s}, Cursors: txCursors{store: s}}
	if err := fn(ctx, stores); err != nil {
		s.assignments = snapAssignments
		s.cursors = snapCursors
		s.outbox = snapOutbox
		s.audit = s.audit[:snapAuditLen]
		s.nextID = snapNextID
		return err
	}
	return nil
}

// txRoles and txCursors expose the unlocked internals to a unit of work that
// already holds the store lock.
type txRoles struct {
	store *Store
}

func (t txRoles) ListForEstate(_ context.Context, estateSsn string) ([]entities.RoleAssignment, error) {
	return t.store.listForEstateLocked(estateSsn), nil
}

func (t txRoles) ListForPerson(_ context.Context, estateSsn string, recipientSsn string) ([]entities.RoleAssignment, error) {
	return t.store.listForPersonLocked(estateSsn, recipientSsn), nil
}

func (t txRoles) Insert(_ context.Context, assignment entities.RoleAssignment) error {
	return t.store.insertLocked(assignment)
}

func (t txRoles) DeleteExact(_ context.Context, estateSsn string, recipientSsn string, roleCode string, heirSsn *string) (bool, error) {
	return t.store.deleteExactLocked(estateSsn, recipientSsn, roleCode, heirSsn), nil
}

type txCursors struct {
	store *Store
}

func (t txCursors) FetchForUpdate(_ context.Context, estateSsn string, eventKind string) (*entities.EventCursor, error) {
	if t.store.FailCursorLock {
		return nil, domainerrors.ErrLockTimeout
	}
	cursor, ok := t.store.cursors[cursorKey(estateSsn, eventKind)]
	if !ok {
		return nil, nil
	}
	copied := cursor
	return &copied, nil
}

func (t txCursors) Insert(_ context.Context, cursor entities.EventCursor) error {
	t.store.cursors[cursorKey(cursor.EstateSsn, cursor.EventKind)] = cursor
	return nil
}

func (t txCursors) Save(_ context.Context, cursor entities.EventCursor) error {
	t.store.cursors[cursorKey(cursor.EstateSsn, cursor.EventKind)] = cursor
	return nil
}

// Direct read access outside a unit of work, used by the query layer.

func (s *Store) ListForEstate(_ context.Context, estateSsn string) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listForEstateLocked(estateSsn), nil
}

func (s *Store) ListForPerson(_ context.Context, estateSsn string, recipientSsn string) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listForPersonLocked(estateSsn, recipientSsn), nil
}

func (s *Store) Insert(_ context.Context, assignment entities.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(assignment)
}

func (s *Store) DeleteExact(_ context.Context, estateSsn string, recipientSsn string, roleCode string, heirSsn *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteExactLocked(estateSsn, recipientSsn, roleCode, heirSsn), nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			rows = append(rows, row.OutboxMessage)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return errors.New("outbox record not found")
	}
	value := publishedAt.UTC()
	row.PublishedAt = &value
	s.outbox[outboxID] = row
	return nil
}

// AuditEntries returns a copy of the mutation log in append order.
func (s *Store) AuditEntries() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.audit...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) listForEstateLocked(estateSsn string) []entities.RoleAssignment {
	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.EstateSsn == estateSsn {
			items = append(items, assignment)
		}
	}
	sortAssignments(items)
	return items
}

func (s *Store) listForPersonLocked(estateSsn string, recipientSsn string) []entities.RoleAssignment {
	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.EstateSsn == estateSsn && assignment.RecipientSsn == recipientSsn {
			items = append(items, assignment)
		}
	}
	sortAssignments(items)
	return items
}

func (s *Store) insertLocked(assignment entities.RoleAssignment) error {
	for _, existing := range s.assignments {
		if existing.SameGrant(assignment) {
			return domainerrors.ErrRoleConflict
		}
	}
	assignment.ID = s.nextID
	s.nextID++
	s.assignments[assignment.ID] = assignment
	s.audit = append(s.audit, AuditEntry{
		Action:       AuditActionGrant,
		EstateSsn:    assignment.EstateSsn,
		RecipientSsn: assignment.RecipientSsn,
		RoleCode:     assignment.RoleCode,
		HeirSsn:      assignment.HeirSsn,
		Timestamp:    assignment.Created,
	})
	return s.appendOutboxLocked(EventTypeRoleGranted, assignment, assignment.Created)
}

func (s *Store) deleteExactLocked(estateSsn string, recipientSsn string, roleCode string, heirSsn *string) bool {
	for id, assignment := range s.assignments {
		if assignment.EstateSsn != estateSsn || assignment.RecipientSsn != recipientSsn || assignment.RoleCode != roleCode {
			continue
		}
		if !heirPointersEqual(assignment.HeirSsn, heirSsn) {
			continue
		}
		delete(s.assignments, id)
		now := time.Now().UTC()
		s.audit = append(s.audit, AuditEntry{
			Action:       AuditActionRevoke,
			EstateSsn:    estateSsn,
			RecipientSsn: recipientSsn,
			RoleCode:     roleCode,
			HeirSsn:      heirSsn,
			Timestamp:    now,
		})
		if err := s.appendOutboxLocked(EventTypeRoleRevoked, assignment, now); err != nil {
			return true
		}
		return true
	}
	return false
}

func (s *Store) appendOutboxLocked(eventType string, assignment entities.RoleAssignment, occurredAt time.Time) error {
	data, err := json.Marshal(map[string]any{
		"estate_ssn":    assignment.EstateSsn,
		"recipient_ssn": assignment.RecipientSsn,
		"role_code":     assignment.RoleCode,
		"heir_ssn":      assignment.HeirSsn,
	})
	if err != nil {
		return err
	}
	envelope := contractsv1.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: "role-registry",
		SchemaVersion: 1,
		PartitionKey:  assignment.EstateSsn,
		Data:          data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox[envelope.EventID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:  envelope.EventID,
			EventType: eventType,
			Payload:   payload,
			CreatedAt: occurredAt,
		},
	}
	return nil
}

func sortAssignments(items []entities.RoleAssignment) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Created.Equal(items[j].Created) {
			return items[i].ID < items[j].ID
		}
		return items[i].Created.Before(items[j].Created)
	})
}

func heirPointersEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cursorKey(estateSsn string, eventKind string) string {
	return estateSsn + "|" + eventKind
}
