package goSession

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/session"
)

// CreateSession establishes a session for userID after the caller has verified
// the user, replacing any prior session atomically. identity is stored
// verbatim and returned by [Engine.ValidateSession].
//
// CreateSession returns an error wrapping [ErrConfiguration] for an unknown class.
func (e *Engine) CreateSession(ctx context.Context, userID int64, identity Identity, class SessionClass) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}

	res, err := e.store.Create(userID, identity, class)
	if err != nil {
		if errors.Is(err, session.ErrUnknownClass) {
			err = fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		e.logger.WarnContext(ctx, "session creation failed", "user_id", userID, "class", class.String(), "error", err)
		return "", err
	}

	e.metricInc(MetricSessionCreated)
	eventType := auditEventSessionCreated
	if res.Replaced {
		e.metricInc(MetricSessionReplaced)
		eventType = auditEventSessionReplaced
	}
	e.emitAudit(ctx, auditRecord{
		eventType: eventType,
		success:   true,
		userID:    userID,
		class:     class,
		hasClass:  true,
		metadata: func() map[string]string {
			return map[string]string{
				"hard_deadline": res.Info.HardDeadline.UTC().Format(time.RFC3339),
			}
		},
	})
	e.logger.InfoContext(ctx, "session created",
		"user_id", userID,
		"class", class.String(),
		"replaced", res.Replaced,
		"inactive_deadline", res.Info.InactiveDeadline,
	)
	return res.Token, nil
}

// ValidateSession reports whether userID holds a live session and returns its
// identity payload. An expired session is evicted and reported as invalid.
// Validation is a passive check: it never extends the session.
func (e *Engine) ValidateSession(ctx context.Context, userID int64) (Identity, bool) {
	if e == nil || e.store == nil {
		return nil, false
	}

	start := time.Now()
	res := e.store.ValidateDetailed(userID)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}

	if res.Valid {
		e.metricInc(MetricSessionValidated)
		return res.Identity, true
	}

	e.metricInc(MetricSessionValidationMiss)
	if res.Reason != session.ReasonNone {
		e.recordExpiry(res.Reason)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventSessionExpired,
			userID:    userID,
			class:     res.Class,
			hasClass:  true,
			reason:    res.Reason.String(),
		})
		e.logger.InfoContext(ctx, "session expired on validation",
			"user_id", userID, "class", res.Class.String(), "reason", res.Reason.String())
	}
	return nil, false
}

// RevokeSession removes userID's session. It returns false when there was no
// live session; calling it twice is safe.
func (e *Engine) RevokeSession(ctx context.Context, userID int64) bool {
	if e == nil || e.store == nil {
		return false
	}

	removed := e.store.Revoke(userID)
	e.tracker.Forget(userID)
	if !removed {
		return false
	}

	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventSessionRevoked,
		success:   true,
		userID:    userID,
	})
	e.logger.InfoContext(ctx, "session revoked", "user_id", userID)
	return true
}

// GetSessionInfo returns a read-only snapshot of userID's session. It never
// mutates state; an expired but not yet swept session is reported absent.
func (e *Engine) GetSessionInfo(userID int64) (SessionInfo, bool) {
	if e == nil || e.store == nil {
		return SessionInfo{}, false
	}
	return e.store.Info(userID)
}

// ExtendSession pushes userID's inactivity deadline forward by hours, clamped
// to the hard deadline, and clears any pending timeout warning.
// It returns false for non-positive hours or when no live session exists.
func (e *Engine) ExtendSession(ctx context.Context, userID int64, hours int) bool {
	return e.extendSession(ctx, userID, hours, "")
}

// Extensions beyond maxExtensionHours do not fit a time.Duration and are clamped.
const (
	maxExtensionHours = int(math.MaxInt64 / int64(time.Hour))
	maxExtension      = time.Duration(maxExtensionHours) * time.Hour
)

func (e *Engine) extendSession(ctx context.Context, userID int64, hours int, reason string) bool {
	if e == nil || e.store == nil || hours <= 0 {
		return false
	}
	extend := maxExtension
	if hours < maxExtensionHours {
		extend = time.Duration(hours) * time.Hour
	}
	if !e.store.ExtendManually(userID, extend) {
		return false
	}

	e.metricInc(MetricManualExtension)
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventSessionExtended,
		success:   true,
		userID:    userID,
		reason:    reason,
		metadata: func() map[string]string {
			return map[string]string{"hours": strconv.Itoa(hours)}
		},
	})
	e.logger.InfoContext(ctx, "session extended", "user_id", userID, "hours", hours, "reason", reason)
	return true
}

// Login verifies creds with the configured identity provider and, on success,
// creates a session of class for userID carrying the verified identity.Identity.
//
// Login returns [ErrInvalidCredentials] for rejected credentials and
// [ErrIdentityUnavailable] when no provider is configured or it fails.
func (e *Engine) Login(ctx context.Context, userID int64, creds Credentials, class SessionClass) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}
	if e.identities == nil {
		return "", fmt.Errorf("%w: no identity provider configured", ErrIdentityUnavailable)
	}
	if !class.Valid() {
		return "", fmt.Errorf("%w: %v", ErrConfiguration, session.ErrUnknownClass)
	}

	id, err := e.identities.Verify(ctx, creds)
	if err != nil {
		if identity.IsRejection(err) {
			err = fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		} else {
			err = fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLoginFailure,
			userID:    userID,
			class:     class,
			hasClass:  true,
			err:       err,
		})
		e.logger.WarnContext(ctx, "login failed", "user_id", userID, "class", class.String(), "error", err)
		return "", err
	}
	if id.UserID == 0 {
		id.UserID = userID
	}

	token, err := e.CreateSession(ctx, userID, id, class)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return "", err
	}
	e.tracker.Track(userID, loginCategory(class), "")

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventLoginSuccess,
		success:   true,
		userID:    userID,
		class:     class,
		hasClass:  true,
	})
	return token, nil
}

// IsAuthenticated reports whether userID holds a live session.
func (e *Engine) IsAuthenticated(ctx context.Context, userID int64) bool {
	_, ok := e.ValidateSession(ctx, userID)
	return ok
}

// UserInfo returns the identity payload of userID's live session.
func (e *Engine) UserInfo(ctx context.Context, userID int64) (Identity, bool) {
	return e.ValidateSession(ctx, userID)
}

// ActiveSessions lists every live session ordered by user ID.
func (e *Engine) ActiveSessions() []SessionInfo {
	if e == nil || e.store == nil {
		return nil
	}
	return e.store.Snapshot()
}

func loginCategory(class SessionClass) string {
	if class == SmartAuth {
		return "smart_login"
	}
	return "login"
}
