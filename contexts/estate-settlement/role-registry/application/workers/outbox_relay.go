package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "estateauthz/contexts/estate-settlement/role-registry/application"
	"estateauthz/contexts/estate-settlement/role-registry/ports"
	contractsv1 "estateauthz/contracts/gen/events/v1"
)

// DefaultRoleChangedTopic is where role grant/revoke notifications land unless
// the relay is configured otherwise.
const DefaultRoleChangedTopic = "estate-settlement.role-registry.role-changed"

// OutboxRelay drains pending role-change rows written transactionally by the
// store adapters and hands them to the event bus. One failed publish stops the
// batch so redelivery keeps ordering per run.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.RoleChangePublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = DefaultRoleChangedTopic
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("role registry outbox list failed",
			"event", "role_registry_outbox_list_failed",
			"module", "estate-settlement/role-registry",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var envelope contractsv1.Envelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return err
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("role registry outbox publish failed",
				"event", "role_registry_outbox_publish_failed",
				"module", "estate-settlement/role-registry",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
