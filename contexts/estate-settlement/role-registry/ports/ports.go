package ports

import (
	"context"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	contractsv1 "estateauthz/contracts/gen/events/v1"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RoleStore is the current-state table of role assignments. Assignments are
// only ever inserted or deleted; a changed grant is a delete plus insert.
type RoleStore interface {
	ListForEstate(ctx context.Context, estateSsn string) ([]entities.RoleAssignment, error)
	ListForPerson(ctx context.Context, estateSsn string, recipientSsn string) ([]entities.RoleAssignment, error)
	Insert(ctx context.Context, assignment entities.RoleAssignment) error
	// DeleteExact removes the single assignment matching the full business key.
	// A nil heirSsn matches only rows where the column is NULL, so removing a
	// court-assigned role never touches an individually delegated one that
	// happens to share the recipient.
	DeleteExact(ctx context.Context, estateSsn string, recipientSsn string, roleCode string, heirSsn *string) (bool, error)
}

// CursorStore persists the per-(estate, event kind) watermark.
type CursorStore interface {
	// FetchForUpdate reads the cursor and takes a pessimistic row lock held
	// until the enclosing transaction ends, so concurrent reconciliations for
	// the same key serialize. Returns nil when no cursor exists yet. Fails
	// with domain ErrLockTimeout when the lock cannot be acquired within the
	// configured bound.
	FetchForUpdate(ctx context.Context, estateSsn string, eventKind string) (*entities.EventCursor, error)
	Insert(ctx context.Context, cursor entities.EventCursor) error
	Save(ctx context.Context, cursor entities.EventCursor) error
}

// TxStores bundles the stores scoped to one transaction.
type TxStores struct {
	Roles   RoleStore
	Cursors CursorStore
}

// UnitOfWork runs fn inside one atomic transaction: every mutation fn performs
// through the given stores commits together or not at all.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// OutboxMessage is a pending role-change notification.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// RoleChangePublisher emits role-change envelopes to the event bus adapter.
type RoleChangePublisher interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}
