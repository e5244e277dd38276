package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	roleregistry "estateauthz/contexts/estate-settlement/role-registry"
	postgresadapter "estateauthz/contexts/estate-settlement/role-registry/adapters/postgres"
	"estateauthz/internal/platform/config"
	"estateauthz/internal/platform/db"
	"estateauthz/internal/platform/httpserver"
	"estateauthz/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	relay        func(context.Context) error
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, cfg.CursorLockTimeout, logger)
	if err := repo.Migrate(context.Background()); err != nil {
		_ = pg.Close()
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := roleregistry.NewModule(roleregistry.Dependencies{
		UnitOfWork: repo,
		Roles:      repo,
		Outbox:     repo,
		Publisher:  kafka,
		Clock:      postgresadapter.SystemClock{},
		Codes:      cfg.RoleCodes(),
		Topic:      cfg.RoleChangedTopic,
		BatchSize:  cfg.OutboxBatchSize,
		Logger:     logger,
	})

	server := httpserver.New(module, pg, cfg.EventAuthKey, cfg.AllRolesScope, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, cfg.CursorLockTimeout, logger)
	module := roleregistry.NewModule(roleregistry.Dependencies{
		UnitOfWork: repo,
		Roles:      repo,
		Outbox:     repo,
		Publisher:  kafka,
		Clock:      postgresadapter.SystemClock{},
		Codes:      cfg.RoleCodes(),
		Topic:      cfg.RoleChangedTopic,
		BatchSize:  cfg.OutboxBatchSize,
		Logger:     logger,
	})

	return &WorkerApp{
		postgres:     pg,
		relay:        module.Relay.RunOnce,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.relay(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
