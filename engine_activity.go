package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/session"
)

// RecordActivity reports one user interaction. category is the activity kind
// ("command", "callback", "conversation", "login", ...) and detail the
// namespaced part ("/menu", "ticket_12", "ticket_creation").
//
// It returns true only when the interaction was eligible, not suppressed as
// spam, and reached a live session.
func (e *Engine) RecordActivity(ctx context.Context, userID int64, category, detail string) bool {
	if e == nil || e.tracker == nil {
		return false
	}

	res := e.tracker.Track(userID, category, detail)
	switch res.Outcome {
	case activity.OutcomeIgnored:
		e.metricInc(MetricActivityIgnored)
		return false
	case activity.OutcomeSuppressed:
		e.metricInc(MetricActivitySuppressed)
		e.logger.DebugContext(ctx, "activity suppressed", "user_id", userID, "key", res.Key)
		return false
	case activity.OutcomeNoSession:
		e.metricInc(MetricActivityNoSession)
		if res.Session.Expired != session.ReasonNone {
			e.recordExpiry(res.Session.Expired)
			e.emitAudit(ctx, auditRecord{
				eventType: auditEventSessionExpired,
				userID:    userID,
				class:     res.Session.Class,
				hasClass:  true,
				reason:    res.Session.Expired.String(),
			})
		}
		return false
	}

	e.metricInc(MetricActivityAccepted)
	if res.Session.Extended {
		e.metricInc(MetricDeadlineExtended)
	}
	if res.Session.Reprieved {
		e.metricInc(MetricWarningReprieved)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventWarningReprieved,
			success:   true,
			userID:    userID,
			class:     res.Session.Class,
			hasClass:  true,
			metadata: func() map[string]string {
				return map[string]string{"activity": res.Key}
			},
		})
		e.logger.InfoContext(ctx, "timeout warning cleared by activity",
			"user_id", userID, "key", res.Key, "new_deadline", res.Session.NewDeadline)
	}
	return true
}

// ActivitySummary describes userID's session and recent activity. For a user
// without a live session only UserID and RecentInteractions are set.
func (e *Engine) ActivitySummary(userID int64) ActivitySummary {
	out := ActivitySummary{UserID: userID}
	if e == nil || e.store == nil {
		return out
	}
	out.RecentInteractions = e.tracker.RecentCount(userID)

	info, ok := e.store.Info(userID)
	if !ok {
		return out
	}
	out.Authenticated = true
	out.Class = info.Class
	out.ActivityCount = info.ActivityCount
	out.ActivityScore = info.ActivityScore
	out.LastActivityKey = info.LastActivityKey
	out.LastActivityAt = info.LastActivityAt
	out.TimeUntilInactive = info.TimeUntilInactive
	out.TimeUntilHard = info.TimeUntilHard
	out.Warned = info.Warned
	return out
}
