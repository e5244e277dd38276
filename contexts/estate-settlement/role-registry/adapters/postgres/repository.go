package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"estateauthz/contexts/estate-settlement/role-registry/domain/entities"
	domainerrors "estateauthz/contexts/estate-settlement/role-registry/domain/errors"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
	contractsv1 "estateauthz/contracts/gen/events/v1"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	auditActionGrant  = "GRANT"
	auditActionRevoke = "REVOKE"

	eventTypeRoleGranted = "role-registry.role-granted"
	eventTypeRoleRevoked = "role-registry.role-revoked"
)

// Repository is the PostgreSQL adapter for the role registry. It implements
// the role store, the outbox repository, and the unit of work. Every role
// mutation also writes an audit row and a pending outbox row on the same
// database handle, so inside a unit of work all three commit or roll back
// together.
type Repository struct {
	db          *gorm.DB
	lockTimeout time.Duration
	logger      *slog.Logger
}

func NewRepository(db *gorm.DB, lockTimeout time.Duration, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:          db,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Migrate creates the registry tables and the partial unique indexes that back
// the one-role-per-grant invariant.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&roleAssignmentModel{},
		&eventCursorModel{},
		&auditLogModel{},
		&outboxModel{},
	); err != nil {
		return err
	}
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_assignments_grant
			ON role_assignments (estate_ssn, recipient_ssn, role_code, heir_ssn)
			WHERE heir_ssn IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_assignments_grant_no_heir
			ON role_assignments (estate_ssn, recipient_ssn, role_code)
			WHERE heir_ssn IS NULL`,
	}
	for _, statement := range statements {
		if err := r.db.WithContext(ctx).Exec(statement).Error; err != nil {
			return err
		}
	}
	return nil
}

// Execute runs fn inside one database transaction with a bounded lock wait.
func (r *Repository) Execute(ctx context.Context, fn func(ctx context.Context, stores ports.TxStores) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			statement := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(statement).Error; err != nil {
				return err
			}
		}
		scoped := &Repository{db: tx, lockTimeout: r.lockTimeout, logger: r.logger}
		return fn(ctx, ports.TxStores{Roles: scoped, Cursors: cursorStore{repo: scoped}})
	})
}

func (r *Repository) ListForEstate(ctx context.Context, estateSsn string) ([]entities.RoleAssignment, error) {
	var rows []roleAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("estate_ssn = ?", estateSsn).
		Order("created ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("role_registry_repo_list_estate_failed", err, "estate_ssn", estateSsn)
	}
	return toAssignmentEntities(rows), nil
}

func (r *Repository) ListForPerson(ctx context.Context, estateSsn string, recipientSsn string) ([]entities.RoleAssignment, error) {
	var rows []roleAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("estate_ssn = ?", estateSsn).
		Where("recipient_ssn = ?", recipientSsn).
		Order("created ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("role_registry_repo_list_person_failed", err,
			"estate_ssn", estateSsn,
			"recipient_ssn", recipientSsn,
		)
	}
	return toAssignmentEntities(rows), nil
}

func (r *Repository) Insert(ctx context.Context, assignment entities.RoleAssignment) error {
	row := assignmentModelFromEntity(assignment)
	if create := r.db.WithContext(ctx).Create(&row); create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrRoleConflict
		}
		return r.logError("role_registry_repo_insert_failed", create.Error,
			"estate_ssn", assignment.EstateSsn,
			"recipient_ssn", assignment.RecipientSsn,
			"role_code", assignment.RoleCode,
		)
	}
	if err := r.appendAudit(ctx, auditActionGrant, assignment, row.Created); err != nil {
		return err
	}
	return r.appendOutbox(ctx, eventTypeRoleGranted, assignment, row.Created)
}

func (r *Repository) DeleteExact(ctx context.Context, estateSsn string, recipientSsn string, roleCode string, heirSsn *string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("estate_ssn = ?", estateSsn).
		Where("recipient_ssn = ?", recipientSsn).
		Where("role_code = ?", roleCode)
	if heirSsn == nil {
		tx = tx.Where("heir_ssn IS NULL")
	} else {
		tx = tx.Where("heir_ssn = ?", *heirSsn)
	}
	result := tx.Delete(&roleAssignmentModel{})
	if result.Error != nil {
		return false, r.logError("role_registry_repo_delete_failed", result.Error,
			"estate_ssn", estateSsn,
			"recipient_ssn", recipientSsn,
			"role_code", roleCode,
		)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	removed := entities.RoleAssignment{
		EstateSsn:    estateSsn,
		RecipientSsn: recipientSsn,
		HeirSsn:      heirSsn,
		RoleCode:     roleCode,
	}
	now := time.Now().UTC()
	if err := r.appendAudit(ctx, auditActionRevoke, removed, now); err != nil {
		return false, err
	}
	if err := r.appendOutbox(ctx, eventTypeRoleRevoked, removed, now); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) fetchCursorForUpdate(ctx context.Context, estateSsn string, eventKind string) (*entities.EventCursor, error) {
	var row eventCursorModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("estate_ssn = ?", estateSsn).
		Where("event_kind = ?", eventKind).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domainerrors.ErrLockTimeout
		}
		return nil, r.logError("role_registry_repo_cursor_fetch_failed", err,
			"estate_ssn", estateSsn,
			"event_kind", eventKind,
		)
	}
	cursor := row.toEntity()
	return &cursor, nil
}

func (r *Repository) insertCursor(ctx context.Context, cursor entities.EventCursor) error {
	row := cursorModelFromEntity(cursor)
	if create := r.db.WithContext(ctx).Create(&row); create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrRoleConflict
		}
		return r.logError("role_registry_repo_cursor_insert_failed", create.Error,
			"estate_ssn", cursor.EstateSsn,
			"event_kind", cursor.EventKind,
		)
	}
	return nil
}

func (r *Repository) saveCursor(ctx context.Context, cursor entities.EventCursor) error {
	result := r.db.WithContext(ctx).
		Model(&eventCursorModel{}).
		Where("estate_ssn = ?", cursor.EstateSsn).
		Where("event_kind = ?", cursor.EventKind).
		Update("last_processed", cursor.LastProcessed.UTC())
	if result.Error != nil {
		return r.logError("role_registry_repo_cursor_save_failed", result.Error,
			"estate_ssn", cursor.EstateSsn,
			"event_kind", cursor.EventKind,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("role_registry_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("role_registry_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", outboxID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoleConflict
	}
	return nil
}

func (r *Repository) appendAudit(ctx context.Context, action string, assignment entities.RoleAssignment, at time.Time) error {
	row := auditLogModel{
		Action:       action,
		EstateSsn:    assignment.EstateSsn,
		RecipientSsn: assignment.RecipientSsn,
		HeirSsn:      assignment.HeirSsn,
		RoleCode:     assignment.RoleCode,
		Timestamp:    at.UTC(),
	}
	if create := r.db.WithContext(ctx).Create(&row); create.Error != nil {
		return r.logError("role_registry_repo_audit_append_failed", create.Error,
			"estate_ssn", assignment.EstateSsn,
			"action", action,
		)
	}
	return nil
}

func (r *Repository) appendOutbox(ctx context.Context, eventType string, assignment entities.RoleAssignment, occurredAt time.Time) error {
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
		OccurredAt:    occurredAt.UTC(),
		SourceService: "role-registry",
		SchemaVersion: 1,
		PartitionKey:  assignment.EstateSsn,
		Data:          data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    eventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    occurredAt.UTC(),
	}
	if create := r.db.WithContext(ctx).Create(&row); create.Error != nil {
		return r.logError("role_registry_repo_outbox_append_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "estate-settlement/role-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("role registry repository operation failed", fields...)
	return err
}

// cursorStore adapts the transaction-scoped repository to the cursor port.
// The role store and cursor store both expose Insert with different row
// types, so the cursor side lives on its own receiver.
type cursorStore struct {
	repo *Repository
}

func (c cursorStore) FetchForUpdate(ctx context.Context, estateSsn string, eventKind string) (*entities.EventCursor, error) {
	return c.repo.fetchCursorForUpdate(ctx, estateSsn, eventKind)
}

func (c cursorStore) Insert(ctx context.Context, cursor entities.EventCursor) error {
	return c.repo.insertCursor(ctx, cursor)
}

func (c cursorStore) Save(ctx context.Context, cursor entities.EventCursor) error {
	return c.repo.saveCursor(ctx, cursor)
}

type roleAssignmentModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EstateSsn     string    `gorm:"column:estate_ssn;index"`
	RecipientSsn  string    `gorm:"column:recipient_ssn;index"`
	HeirSsn       *string   `gorm:"column:heir_ssn"`
	RoleCode      string    `gorm:"column:role_code"`
	Created       time.Time `gorm:"column:created"`
	Justification string    `gorm:"column:justification"`
}

func (roleAssignmentModel) TableName() string {
	return "role_assignments"
}

func assignmentModelFromEntity(assignment entities.RoleAssignment) roleAssignmentModel {
	row := roleAssignmentModel{
		EstateSsn:     assignment.EstateSsn,
		RecipientSsn:  assignment.RecipientSsn,
		HeirSsn:       assignment.HeirSsn,
		RoleCode:      assignment.RoleCode,
		Created:       assignment.Created.UTC(),
		Justification: assignment.Justification,
	}
	if row.Created.IsZero() {
		row.Created = time.Now().UTC()
	}
	return row
}

func (m roleAssignmentModel) toEntity() entities.RoleAssignment {
	return entities.RoleAssignment{
		ID:            m.ID,
		EstateSsn:     m.EstateSsn,
		RecipientSsn:  m.RecipientSsn,
		HeirSsn:       m.HeirSsn,
		RoleCode:      m.RoleCode,
		Created:       m.Created.UTC(),
		Justification: m.Justification,
	}
}

func toAssignmentEntities(rows []roleAssignmentModel) []entities.RoleAssignment {
	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type eventCursorModel struct {
	EstateSsn     string    `gorm:"column:estate_ssn;primaryKey"`
	EventKind     string    `gorm:"column:event_kind;primaryKey"`
	LastProcessed time.Time `gorm:"column:last_processed"`
}

func (eventCursorModel) TableName() string {
	return "event_cursors"
}

func cursorModelFromEntity(cursor entities.EventCursor) eventCursorModel {
	return eventCursorModel{
		EstateSsn:     cursor.EstateSsn,
		EventKind:     cursor.EventKind,
		LastProcessed: cursor.LastProcessed.UTC(),
	}
}

func (m eventCursorModel) toEntity() entities.EventCursor {
	return entities.EventCursor{
		EstateSsn:     m.EstateSsn,
		EventKind:     m.EventKind,
		LastProcessed: m.LastProcessed.UTC(),
	}
}

type auditLogModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Action       string    `gorm:"column:action"`
	EstateSsn    string    `gorm:"column:estate_ssn;index"`
	RecipientSsn string    `gorm:"column:recipient_ssn"`
	HeirSsn      *string   `gorm:"column:heir_ssn"`
	RoleCode     string    `gorm:"column:role_code"`
	Timestamp    time.Time `gorm:"column:timestamp"`
}

func (auditLogModel) TableName() string {
	return "role_assignments_log"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "role_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
