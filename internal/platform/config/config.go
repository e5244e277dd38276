package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"estateauthz/contexts/estate-settlement/role-registry/domain/valueobjects"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" envDefault:"estateauthz"`
	HTTPPort     string   `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`

	// EventAuthKey guards the inbound event webhook: the event poster must
	// echo it in the code query parameter.
	EventAuthKey string `env:"EVENT_AUTH_KEY"`

	// AllRolesScope unlocks the full role set on the external endpoint.
	AllRolesScope string `env:"ALL_ROLES_SCOPE" envDefault:"digitaltdodsbo:external:allroles"`

	CursorLockTimeout time.Duration `env:"CURSOR_LOCK_TIMEOUT" envDefault:"3s"`

	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"5s"`
	RoleChangedTopic   string        `env:"ROLE_CHANGED_TOPIC" envDefault:"estate-settlement.role-registry.role-changed"`

	// Role-code overrides for environments using a different code namespace.
	CourtRolePrefix         string `env:"COURT_ROLE_PREFIX"`
	ProbateRoleCode         string `env:"PROBATE_ROLE_CODE"`
	FormuesfullmaktRoleCode string `env:"FORMUESFULLMAKT_ROLE_CODE"`
	IndividualProxyRoleCode string `env:"INDIVIDUAL_PROXY_ROLE_CODE"`
	CollectiveProxyRoleCode string `env:"COLLECTIVE_PROXY_ROLE_CODE"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RoleCodes resolves the effective role-code namespace, falling back to the
// defaults for every field left unset.
func (c Config) RoleCodes() valueobjects.RoleCodes {
	codes := valueobjects.DefaultRoleCodes()
	if c.CourtRolePrefix != "" {
		codes.CourtPrefix = c.CourtRolePrefix
	}
	if c.ProbateRoleCode != "" {
		codes.Probate = c.ProbateRoleCode
	}
	if c.FormuesfullmaktRoleCode != "" {
		codes.Formuesfullmakt = c.FormuesfullmaktRoleCode
	}
	if c.IndividualProxyRoleCode != "" {
		codes.IndividualProxy = c.IndividualProxyRoleCode
	}
	if c.CollectiveProxyRoleCode != "" {
		codes.CollectiveProxy = c.CollectiveProxyRoleCode
	}
	return codes
}
