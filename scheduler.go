package goSession

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// cleanupScheduler drives the warning and sweep cadences from one goroutine
// selecting on two tickers. Both passes also run once immediately on start.
type cleanupScheduler struct {
	e   *Engine
	cfg SchedulerConfig

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedAt time.Time

	lastSweep       atomic.Int64
	lastWarningScan atomic.Int64

	warningsSent    atomic.Uint64
	warningsFailed  atomic.Uint64
	sessionsCleaned atomic.Uint64
}

func newCleanupScheduler(e *Engine) *cleanupScheduler {
	return &cleanupScheduler{e: e, cfg: e.config.Scheduler}
}

func (s *cleanupScheduler) Start(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.startedAt = s.e.clock.Now()

	warn := s.e.clock.NewTicker(s.cfg.WarningInterval)
	sweep := s.e.clock.NewTicker(s.cfg.SweepInterval)

	s.wg.Add(1)
	go s.loop(loopCtx, warn.Chan(), sweep.Chan(), func() {
		warn.Stop()
		sweep.Stop()
	})

	s.e.logger.InfoContext(ctx, "session scheduler started",
		"warning_interval", s.cfg.WarningInterval,
		"sweep_interval", s.cfg.SweepInterval,
	)
	return true
}

func (s *cleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.e.logger.Info("session scheduler stopped")
}

func (s *cleanupScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *cleanupScheduler) loop(ctx context.Context, warnC, sweepC <-chan time.Time, stopTickers func()) {
	defer s.wg.Done()
	defer stopTickers()

	s.warningScan(ctx)
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-warnC:
			s.warningScan(ctx)
		case <-sweepC:
			s.sweep(ctx)
		}
	}
}

// warningScan claims every session due a warning and notifies each owner.
// A failed send is logged and counted; it never stops the scan and is not retried.
func (s *cleanupScheduler) warningScan(ctx context.Context) int {
	e := s.e
	runID := uuid.NewString()
	claims := e.store.ClaimWarnings()

	sent := 0
	for _, claim := range claims {
		err := s.notify(ctx, claim.UserID, warningMessage(claim.Info))
		if err != nil {
			s.warningsFailed.Add(1)
			e.metricInc(MetricWarningFailed)
			e.emitAudit(ctx, auditRecord{
				eventType: auditEventWarningFailed,
				userID:    claim.UserID,
				class:     claim.Class,
				hasClass:  true,
				runID:     runID,
				err:       err,
			})
			e.logger.WarnContext(ctx, "timeout warning not delivered",
				"user_id", claim.UserID, "run_id", runID, "error", err)
			continue
		}

		sent++
		s.warningsSent.Add(1)
		e.metricInc(MetricWarningSent)
		remaining := remainingText(claim.TimeUntilInactive)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventWarningSent,
			success:   true,
			userID:    claim.UserID,
			class:     claim.Class,
			hasClass:  true,
			runID:     runID,
			metadata: func() map[string]string {
				return map[string]string{"remaining": remaining}
			},
		})
		e.logger.InfoContext(ctx, "timeout warning sent",
			"user_id", claim.UserID, "class", claim.Class.String(), "remaining", remaining, "run_id", runID)
	}

	s.lastWarningScan.Store(e.clock.Now().UnixNano())
	if len(claims) > 0 {
		e.logger.InfoContext(ctx, "warning scan finished",
			"run_id", runID, "claimed", len(claims), "sent", sent)
	}
	return sent
}

// sweep evicts every expired session and prunes activity history.
func (s *cleanupScheduler) sweep(ctx context.Context) int {
	e := s.e
	runID := uuid.NewString()
	start := time.Now()

	expired := e.store.Sweep()
	pruned := e.tracker.Prune()

	for _, x := range expired {
		e.recordExpiry(x.Reason)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventSessionExpired,
			userID:    x.UserID,
			class:     x.Class,
			hasClass:  true,
			reason:    x.Reason.String(),
			runID:     runID,
		})
	}

	s.sessionsCleaned.Add(uint64(len(expired)))
	s.lastSweep.Store(e.clock.Now().UnixNano())
	e.metricInc(MetricSweepRun)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricSweepLatency, time.Since(start))
	}
	if len(expired) > 0 {
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventSweepCompleted,
			success:   true,
			runID:     runID,
			metadata: func() map[string]string {
				return map[string]string{
					"expired":       strconv.Itoa(len(expired)),
					"pruned_users":  strconv.Itoa(pruned),
					"remaining_now": strconv.Itoa(e.store.Len()),
				}
			},
		})
		e.logger.InfoContext(ctx, "expired sessions cleaned",
			"run_id", runID, "count", len(expired), "pruned_users", pruned)
	}
	return len(expired)
}

// notify sends one message bounded by NotifyTimeout. The bound holds even for a
// notifier that ignores its context: the send is abandoned, not awaited.
// Errors wrap ErrNotifierFailure.
func (s *cleanupScheduler) notify(ctx context.Context, userID int64, message string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- s.e.notifier.Send(sendCtx, userID, message)
	}()

	var err error
	select {
	case err = <-result:
	case <-sendCtx.Done():
		err = sendCtx.Err()
	}
	if err != nil {
		s.e.metricInc(MetricNotifierFailure)
		return fmt.Errorf("%w: %w", ErrNotifierFailure, err)
	}
	return nil
}

func (s *cleanupScheduler) stats() ServiceStats {
	e := s.e
	now := e.clock.Now()

	s.mu.Lock()
	running := s.running
	startedAt := s.startedAt
	s.mu.Unlock()

	out := ServiceStats{
		Running:         running,
		StartedAt:       startedAt,
		WarningInterval: s.cfg.WarningInterval,
		SweepInterval:   s.cfg.SweepInterval,
		SessionsByClass: make(map[SessionClass]int),
		TrackedUsers:    e.tracker.TrackedUsers(),
		WarningsSent:    s.warningsSent.Load(),
		WarningsFailed:  s.warningsFailed.Load(),
		SessionsCleaned: s.sessionsCleaned.Load(),
		LastSweep:       unixNanoTime(s.lastSweep.Load()),
		LastWarningScan: unixNanoTime(s.lastWarningScan.Load()),
	}
	if running {
		out.Uptime = now.Sub(startedAt)
	}

	for _, info := range e.store.Snapshot() {
		out.ActiveSessions++
		out.SessionsByClass[info.Class]++
		if info.Warned {
			out.WarnedSessions++
		}
	}
	return out
}

func unixNanoTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
