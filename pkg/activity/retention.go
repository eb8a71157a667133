package activity

import (
	"context"
	"log/slog"
	"time"
)

// RetentionWorker trims old activity-log entries on a fixed schedule so the
// append-only table does not grow without bound.
type RetentionWorker struct {
	store     *Store
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewRetentionWorker creates a retention worker keeping retentionDays of
// history. A non-positive retention disables the worker.
func NewRetentionWorker(store *Store, retentionDays int, logger *slog.Logger) *RetentionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionWorker{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		logger:    logger,
	}
}

// Run sweeps once per interval until the context is cancelled.
func (w *RetentionWorker) Run(ctx context.Context) {
	if w.store == nil || w.retention <= 0 {
		w.logger.Info("activity retention disabled",
			"retentionDays", int(w.retention.Hours()/24))
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("activity retention started",
		"retentionDays", int(w.retention.Hours()/24),
		"interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("activity retention stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RetentionWorker) sweep() {
	cutoff := time.Now().Add(-w.retention)
	deleted, err := w.store.DeleteOlderThan(cutoff)
	if err != nil {
		w.logger.Error("activity retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		w.logger.Info("activity retention sweep completed",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339))
	}
}
