// Package janitor runs scheduled maintenance against a trust store:
// pruning CRLs whose next-update time has passed and checkpointing the
// write-ahead log.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/saturn/pkg/truststore"
)

// Janitor prunes expired CRLs and checkpoints the WAL on a cron schedule.
type Janitor struct {
	store    *truststore.Store
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a janitor for the given store. schedule is a standard cron
// expression; an empty schedule disables the janitor.
func New(store *truststore.Store, schedule string) *Janitor {
	return &Janitor{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "truststore.janitor"),
	}
}

// Start begins scheduled maintenance. It validates the cron expression,
// registers the job, and returns; maintenance runs in the cron scheduler's
// goroutine until the context is cancelled or Stop is called.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.schedule == "" {
		j.logger.Info("maintenance schedule not configured, janitor disabled")
		return nil
	}

	if _, err := cron.ParseStandard(j.schedule); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", j.schedule, err)
	}

	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	j.cron.Start()
	j.running = true
	j.logger.Info("janitor started", "schedule", j.schedule)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()

	return nil
}

// Stop halts the scheduler. Safe to call repeatedly.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	j.cron.Stop()
	j.running = false
	j.logger.Info("janitor stopped")
}

// RunOnce executes a single maintenance cycle immediately.
func (j *Janitor) RunOnce(ctx context.Context) {
	start := time.Now()

	pruned, err := j.store.DeleteExpiredCRLs(ctx, time.Now())
	if err != nil {
		j.logger.Error("crl pruning failed", "error", err)
		return
	}

	if err := j.store.Checkpoint(ctx); err != nil {
		j.logger.Error("wal checkpoint failed", "error", err)
		return
	}

	j.logger.Info("maintenance cycle complete",
		"pruned_crls", pruned,
		"duration", time.Since(start),
	)
}
