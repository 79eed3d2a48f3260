package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner removes up to limit events older than a cutoff (all of them when
// limit is 0). Satisfied by *Store.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// PruneObserver is told how many events each pass removed.
type PruneObserver interface {
	ObserveAuditPruned(deleted int64)
}

// RetentionWorker deletes audit events older than the configured retention.
type RetentionWorker struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
	batch     int
	clock     func() time.Time
	observer  PruneObserver
	logger    *slog.Logger
}

// RetentionOption configures a RetentionWorker.
type RetentionOption func(*RetentionWorker)

// WithPruneInterval overrides Config.PruneInterval.
func WithPruneInterval(d time.Duration) RetentionOption {
	return func(w *RetentionWorker) { w.interval = d }
}

// WithRetentionClock replaces time.Now.
func WithRetentionClock(clock func() time.Time) RetentionOption {
	return func(w *RetentionWorker) { w.clock = clock }
}

// WithPruneObserver reports deletions to o.
func WithPruneObserver(o PruneObserver) RetentionOption {
	return func(w *RetentionWorker) { w.observer = o }
}

// WithRetentionLogger sets the logger.
func WithRetentionLogger(l *slog.Logger) RetentionOption {
	return func(w *RetentionWorker) { w.logger = l }
}

// NewRetentionWorker builds a worker from cfg's retention settings.
func NewRetentionWorker(store Pruner, cfg *Config, opts ...RetentionOption) *RetentionWorker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	w := &RetentionWorker{
		store:     store,
		retention: cfg.Retention,
		interval:  cfg.PruneInterval,
		batch:     cfg.PruneBatchSize,
		clock:     time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enabled reports whether Run does any work.
func (w *RetentionWorker) Enabled() bool {
	return w.store != nil && w.retention > 0 && w.interval > 0
}

// RunOnce performs a single pass, deleting in batches until a batch comes
// back short, and returns the number of deleted events. Events removed
// before a failing batch are still reported.
func (w *RetentionWorker) RunOnce(ctx context.Context) (int64, error) {
	if !w.Enabled() {
		return 0, nil
	}
	cutoff := w.clock().UTC().Add(-w.retention)

	var deleted int64
	var err error
	for {
		var n int64
		n, err = w.store.DeleteOlderThan(ctx, cutoff, w.batch)
		deleted += n
		if err != nil || w.batch <= 0 || n < int64(w.batch) {
			break
		}
		if err = ctx.Err(); err != nil {
			break
		}
	}
	if err != nil {
		err = fmt.Errorf("prune audit events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if deleted > 0 && w.observer != nil {
		w.observer.ObserveAuditPruned(deleted)
	}
	if deleted > 0 {
		w.logger.Info("pruned audit events", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted, err
}

// Run prunes immediately and then on every interval until ctx is done.
// Failed passes are logged and retried on the next tick.
func (w *RetentionWorker) Run(ctx context.Context) {
	if !w.Enabled() {
		w.logger.Info("audit retention disabled", "retention", w.retention.String())
		return
	}
	w.logger.Info("audit retention started", "retention", w.retention.String(), "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("audit retention pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("audit retention stopped")
			return
		case <-ticker.C:
		}
	}
}
