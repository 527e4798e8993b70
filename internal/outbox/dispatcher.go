// Package outbox drains the durable email outbox in the background.
//
// Handlers enqueue outbox entries inside the same database transaction as
// the state change that triggered them; the Dispatcher polls for pending
// entries and delivers them through a Mailer with a bounded retry budget.
// A crash between enqueue and delivery loses nothing: the entry stays
// pending and is picked up on the next poll.
package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/omarsldn/taskhub/internal/config"
	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/service/mail"
	"github.com/omarsldn/taskhub/internal/store"
)

// DispatcherConfig holds configuration for the outbox dispatcher.
type DispatcherConfig struct {
	// PollInterval is how often the dispatcher checks for pending entries.
	PollInterval time.Duration

	// MaxAttempts is how many delivery attempts an entry gets before it is
	// marked failed.
	MaxAttempts int

	// BatchSize caps how many entries a single poll processes.
	BatchSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		PollInterval: 5 * time.Second,
		MaxAttempts:  5,
		BatchSize:    20,
	}
}

// ConfigFromApp converts the application-level outbox settings, applying
// defaults for unset values.
func ConfigFromApp(cfg config.OutboxConfig) DispatcherConfig {
	out := DefaultDispatcherConfig()
	if cfg.PollIntervalSeconds > 0 {
		out.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.MaxAttempts > 0 {
		out.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BatchSize > 0 {
		out.BatchSize = cfg.BatchSize
	}
	return out
}

// Dispatcher is the background worker that delivers outbox entries.
type Dispatcher struct {
	store  store.OutboxStore
	mailer mail.Mailer
	config DispatcherConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. It does not start polling until Start
// is called.
func NewDispatcher(
	outboxStore store.OutboxStore,
	mailer mail.Mailer,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		store:  outboxStore,
		mailer: mailer,
		config: cfg,
		logger: logger.With(slog.String("component", "outbox_dispatcher")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the polling loop in a background goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ticker := time.NewTicker(d.config.PollInterval)
		defer ticker.Stop()

		d.logger.Info("outbox dispatcher started",
			slog.Duration("poll_interval", d.config.PollInterval),
			slog.Int("max_attempts", d.config.MaxAttempts))

		for {
			select {
			case <-d.ctx.Done():
				d.logger.Info("outbox dispatcher stopped")
				return
			case <-ticker.C:
				d.drainOnce(d.ctx)
			}
		}
	}()
}

// Stop cancels the polling loop and waits for the in-flight batch to finish.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

// drainOnce processes up to one batch of pending entries.
func (d *Dispatcher) drainOnce(ctx context.Context) {
	pending, err := d.store.ListPending(ctx, d.config.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error("failed to list pending outbox entries",
				slog.String("error", err.Error()))
		}
		return
	}

	for _, entry := range pending {
		if ctx.Err() != nil {
			return
		}
		d.deliver(ctx, entry)
	}
}

// deliver attempts one delivery of a single entry and records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, entry *domain.OutboxEmail) {
	msg, err := mail.Build(entry)
	if err != nil {
		// Unbuildable entries can never succeed; fail them immediately.
		d.logger.Error("unbuildable outbox entry",
			slog.String("outbox_id", entry.ID.String()),
			slog.String("error", err.Error()))
		if err := d.store.MarkFailed(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark outbox entry failed",
				slog.String("outbox_id", entry.ID.String()),
				slog.String("error", err.Error()))
		}
		return
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		attempts, recErr := d.store.RecordAttempt(ctx, entry.ID, err.Error())
		if recErr != nil {
			d.logger.Error("failed to record delivery attempt",
				slog.String("outbox_id", entry.ID.String()),
				slog.String("error", recErr.Error()))
			return
		}

		d.logger.Warn("outbox delivery attempt failed",
			slog.String("outbox_id", entry.ID.String()),
			slog.String("kind", string(entry.Kind)),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()))

		if attempts >= d.config.MaxAttempts {
			if err := d.store.MarkFailed(ctx, entry.ID); err != nil {
				d.logger.Error("failed to mark outbox entry failed",
					slog.String("outbox_id", entry.ID.String()),
					slog.String("error", err.Error()))
			}
		}
		return
	}

	if err := d.store.MarkSent(ctx, entry.ID, time.Now().UTC()); err != nil {
		d.logger.Error("failed to mark outbox entry sent",
			slog.String("outbox_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	d.logger.Info("outbox email delivered",
		slog.String("outbox_id", entry.ID.String()),
		slog.String("kind", string(entry.Kind)))
}
