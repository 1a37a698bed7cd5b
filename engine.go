package goSession

import (
	"log/slog"
	"sync/atomic"

	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/notify"
	"github.com/MrEthical07/goSession/session"
	"github.com/jonboulle/clockwork"
)

// Engine is the session lifecycle facade. It composes the session store, the
// activity tracker, and the cleanup scheduler, and is safe for concurrent use
// after [Builder.Build].
type Engine struct {
	config     Config
	clock      clockwork.Clock
	logger     *slog.Logger
	store      *session.Store
	tracker    *activity.Tracker
	notifier   notify.Notifier
	identities identity.Provider
	audit      *audit.Dispatcher
	metrics    *Metrics
	scheduler  *cleanupScheduler

	closed atomic.Bool
}

// Close stops the scheduler and flushes the audit dispatcher. It is
// idempotent; sessions stay readable after Close but nothing is swept.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.scheduler.Stop()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) recordExpiry(reason session.ExpiryReason) {
	switch reason {
	case session.ReasonHard:
		e.metricInc(MetricSessionExpiredHard)
	case session.ReasonInactive:
		e.metricInc(MetricSessionExpiredInactive)
	}
}
