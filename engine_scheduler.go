package goSession

import (
	"context"
)

// Start launches the background warning and sweep loop. Both passes run once
// immediately. Start is idempotent and returns false when already running.
// Cancelling ctx stops the loop as well; [Engine.Stop] is still required to
// reset the running state.
func (e *Engine) Start(ctx context.Context) bool {
	if e == nil || e.scheduler == nil || e.closed.Load() {
		return false
	}
	return e.scheduler.Start(ctx)
}

// Stop cancels the background loop, aborting any in-flight notification, and
// waits for it to exit. Stop before Start and repeated Stop calls are no-ops.
func (e *Engine) Stop() {
	if e == nil || e.scheduler == nil {
		return
	}
	e.scheduler.Stop()
}

// Stats returns the scheduler and store summary.
func (e *Engine) Stats() ServiceStats {
	if e == nil || e.scheduler == nil {
		return ServiceStats{SessionsByClass: map[SessionClass]int{}}
	}
	return e.scheduler.stats()
}

// RunWarningScan runs one warning pass synchronously and returns how many
// warnings were delivered. It does not require [Engine.Start].
func (e *Engine) RunWarningScan(ctx context.Context) int {
	if e == nil || e.scheduler == nil {
		return 0
	}
	return e.scheduler.warningScan(ctx)
}

// RunSweep runs one expiry sweep synchronously and returns how many sessions
// were removed. It does not require [Engine.Start].
func (e *Engine) RunSweep(ctx context.Context) int {
	if e == nil || e.scheduler == nil {
		return 0
	}
	return e.scheduler.sweep(ctx)
}

// ForceExpire notifies userID that their session is being terminated and then
// revokes it. A failed notification is logged and does not prevent the
// revocation. It returns false when userID has no live session, or when that
// session was replaced before the revocation took place.
func (e *Engine) ForceExpire(ctx context.Context, userID int64, reason string) bool {
	if e == nil || e.store == nil {
		return false
	}
	info, ok := e.store.Info(userID)
	if !ok {
		return false
	}
	token, ok := e.store.Token(userID)
	if !ok {
		return false
	}

	if err := e.scheduler.notify(ctx, userID, forcedLogoutMessage(reason)); err != nil {
		e.logger.WarnContext(ctx, "forced logout notice not delivered", "user_id", userID, "error", err)
	}

	// Only the session the notice was about is revoked. One created while the
	// notice was in flight survives.
	if !e.store.RevokeToken(userID, token) {
		return false
	}
	e.tracker.Forget(userID)

	e.metricInc(MetricSessionRevoked)
	e.metricInc(MetricForcedLogout)
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventForcedLogout,
		success:   true,
		userID:    userID,
		class:     info.Class,
		hasClass:  true,
		reason:    reason,
	})
	e.logger.InfoContext(ctx, "session force expired", "user_id", userID, "class", info.Class.String(), "reason", reason)
	return true
}

// ExtendWithNotice extends userID's session by hours like [Engine.ExtendSession]
// and then tells the user why. Notification failures are logged only.
func (e *Engine) ExtendWithNotice(ctx context.Context, userID int64, hours int, reason string) bool {
	if !e.extendSession(ctx, userID, hours, reason) {
		return false
	}
	if err := e.scheduler.notify(ctx, userID, extensionMessage(hours, reason)); err != nil {
		e.logger.WarnContext(ctx, "extension notice not delivered", "user_id", userID, "error", err)
	}
	return true
}

// SendAdminReport delivers a formatted [ServiceStats] summary to adminID.
// The returned error wraps [ErrNotifierFailure].
func (e *Engine) SendAdminReport(ctx context.Context, adminID int64) error {
	if e == nil || e.scheduler == nil {
		return ErrEngineNotReady
	}
	if err := e.scheduler.notify(ctx, adminID, adminReportMessage(e.Stats())); err != nil {
		e.logger.WarnContext(ctx, "admin report not delivered", "user_id", adminID, "error", err)
		return err
	}
	return nil
}
