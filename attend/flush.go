package attend

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	uatomic "go.uber.org/atomic"
)

const (
	defaultFlushInterval = 5 * time.Second

	presentFlag    = "YES"
	presenceColumn = 4
	stampLayout    = "15:04:05"
)

// FlushCoordinator reconciles locally observed tags against the remote row
// state at a bounded cadence. One instance is shared by every worker; its
// mutex makes reconciliation single-flight and guards the flush window.
type FlushCoordinator struct {
	store    RowStore
	archive  *Archive  // optional
	audit    *AuditLog // optional
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastFlush time.Time

	reconciled uatomic.Int64
}

func NewFlushCoordinator(store RowStore, interval time.Duration) *FlushCoordinator {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	f := &FlushCoordinator{
		store:    store,
		interval: interval,
		now:      time.Now,
	}
	f.lastFlush = f.now()
	return f
}

// Reconciled is the running total of identifiers reconciled this run.
func (f *FlushCoordinator) Reconciled() int64 {
	return f.reconciled.Load()
}

// MaybeReconcile runs a reconciliation pass when the flush window has
// elapsed. When another worker is mid-reconciliation the call returns
// immediately; ingestion is never blocked by a remote round-trip. Reports
// whether a pass removed tags from the set.
func (f *FlushCoordinator) MaybeReconcile(ctx context.Context, set *TagSet) bool {
	if !f.mu.TryLock() {
		return false
	}
	defer f.mu.Unlock()
	if f.now().Sub(f.lastFlush) < f.interval {
		return false
	}
	// The window advances whether or not the pass succeeds, so a failing
	// remote is retried at the flush cadence, never in a tight loop.
	defer func() { f.lastFlush = f.now() }()
	return f.reconcile(ctx, set)
}

func (f *FlushCoordinator) reconcile(ctx context.Context, set *TagSet) bool {
	snapshot := set.Snapshot()
	if len(snapshot) == 0 {
		return false
	}
	pending := make(map[string]struct{}, len(snapshot))
	for _, id := range snapshot {
		pending[id] = struct{}{}
	}

	rows, err := f.store.FetchRows(ctx)
	if err != nil {
		flushErrorCounter.WithLabelValues("fetch").Inc()
		logrus.WithError(err).Warn("fetch remote rows failed, retrying next window")
		return false
	}

	var updates []RowUpdate
	stamp := f.now().Format(stampLayout)
	for i, row := range rows {
		if len(row) <= presenceColumn {
			continue
		}
		if _, ok := pending[row[0]]; !ok {
			continue
		}
		if row[presenceColumn] == presentFlag {
			continue
		}
		updates = append(updates, RowUpdate{Row: i, Values: []string{stamp, presentFlag}})
	}
	if len(updates) == 0 {
		return false
	}

	if err := f.store.ApplyUpdates(ctx, updates); err != nil {
		flushErrorCounter.WithLabelValues("write").Inc()
		logrus.WithError(err).Warn("presence write failed, tags retained for retry")
		return false
	}

	flushCounter.Inc()
	rowsUpdatedCounter.Add(float64(len(updates)))
	// The total counts identifiers considered, not rows written.
	f.reconciled.Add(int64(len(snapshot)))
	// Remove exactly the reconciled snapshot: tags inserted during the
	// remote round-trip stay pending.
	set.Remove(snapshot...)

	logrus.WithFields(logrus.Fields{
		"rows_updated": len(updates),
		"considered":   len(snapshot),
	}).Info("reconciled attendance")

	if f.archive != nil {
		if err := f.archive.MarkReconciled(snapshot, f.now()); err != nil {
			logrus.WithError(err).Warn("archive mark reconciled failed")
		}
	}
	if f.audit != nil {
		if err := f.audit.Merge(snapshot); err != nil {
			logrus.WithError(err).Warn("audit file merge failed")
		}
	}
	return true
}
