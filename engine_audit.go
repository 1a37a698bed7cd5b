package goSession

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/session"
)

const (
	auditEventSessionCreated   = "session_created"
	auditEventSessionReplaced  = "session_replaced"
	auditEventSessionExpired   = "session_expired"
	auditEventSessionRevoked   = "session_revoked"
	auditEventSessionExtended  = "session_extended"
	auditEventForcedLogout     = "forced_logout"
	auditEventWarningReprieved = "warning_reprieved"
	auditEventWarningSent      = "warning_sent"
	auditEventWarningFailed    = "warning_failed"
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventSweepCompleted   = "sweep_completed"
)

// AuditErrorCode is the stable error classification written to AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrIdentityDown       AuditErrorCode = "identity_unavailable"
	auditErrNotifier           AuditErrorCode = "notifier_failure"
	auditErrConfiguration      AuditErrorCode = "configuration"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrInternal           AuditErrorCode = "internal_error"
)

type auditRecord struct {
	eventType string
	success   bool
	userID    int64
	class     session.Class
	hasClass  bool
	reason    string
	runID     string
	err       error
	metadata  func() map[string]string
}

func (e *Engine) emitAudit(ctx context.Context, rec auditRecord) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.clock.Now().UTC(),
		EventType: rec.eventType,
		UserID:    rec.userID,
		Reason:    rec.reason,
		RunID:     rec.runID,
		Success:   rec.success,
	}
	if rec.hasClass {
		event.Class = rec.class.String()
	}
	if rec.metadata != nil {
		event.Metadata = rec.metadata()
	}
	if code := auditErrorCode(rec.err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrIdentityUnavailable):
		return auditErrIdentityDown
	case errors.Is(err, ErrNotifierFailure):
		return auditErrNotifier
	case errors.Is(err, ErrConfiguration):
		return auditErrConfiguration
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	default:
		return auditErrInternal
	}
}
