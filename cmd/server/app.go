package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/omarsldn/taskhub/internal/config"
	"github.com/omarsldn/taskhub/internal/outbox"
	"github.com/omarsldn/taskhub/internal/platform/postgres"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/service/avatar"
	"github.com/omarsldn/taskhub/internal/service/mail"
	"github.com/omarsldn/taskhub/internal/store"
)

// application holds the shared dependencies of the server: configuration,
// the database pool, stores, services, and the outbox dispatcher.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	taskStore   store.TaskStore
	tokenStore  store.TokenStore
	outboxStore store.OutboxStore

	tokenService    auth.TokenService
	passwordHasher  auth.PasswordHasher
	passwordVerify  auth.PasswordVerifier
	avatarProcessor *avatar.Processor

	dispatcher *outbox.Dispatcher
}

// newApplication connects to the database, applies migrations, and wires
// every service the HTTP layer depends on.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.MigrateUp(db); err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database migrations applied")

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	app := &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		userStore:       postgres.NewUserStore(db, logger),
		taskStore:       postgres.NewTaskStore(db, logger),
		tokenStore:      postgres.NewTokenStore(db, logger),
		outboxStore:     postgres.NewOutboxStore(db, logger),
		tokenService:    tokenService,
		passwordHasher:  auth.NewBcryptHasher(),
		passwordVerify:  auth.NewBcryptVerifier(),
		avatarProcessor: avatar.NewProcessor(),
	}

	app.dispatcher = outbox.NewDispatcher(
		app.outboxStore,
		newMailer(cfg.Mail, logger),
		outbox.ConfigFromApp(cfg.Outbox),
		logger,
	)

	return app, nil
}

// newMailer picks the SendGrid client when an API key is configured, and a
// log-only mailer otherwise so local setups work without credentials.
func newMailer(cfg config.MailConfig, logger *slog.Logger) mail.Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("no SendGrid API key configured, emails will be logged and discarded")
		return mail.NewNoopMailer(logger)
	}
	return mail.NewSendGridMailer(cfg)
}

// cleanup releases the application's long-lived resources. Safe to call
// after a partial startup.
func (app *application) cleanup() {
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
