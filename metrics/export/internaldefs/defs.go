package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef binds an engine counter to its exported name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported name.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Sessions created."},
	{ID: goSession.MetricSessionReplaced, Name: "gosession_session_replaced_total", Help: "Creations that replaced a live session."},
	{ID: goSession.MetricSessionValidated, Name: "gosession_session_validated_total", Help: "Successful session validations."},
	{ID: goSession.MetricSessionValidationMiss, Name: "gosession_session_validation_miss_total", Help: "Validations without a live session."},
	{ID: goSession.MetricSessionExpiredInactive, Name: "gosession_session_expired_inactive_total", Help: "Sessions removed past their inactivity deadline."},
	{ID: goSession.MetricSessionExpiredHard, Name: "gosession_session_expired_hard_total", Help: "Sessions removed past their hard deadline."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Explicitly revoked sessions."},
	{ID: goSession.MetricActivityAccepted, Name: "gosession_activity_accepted_total", Help: "Activities applied to a live session."},
	{ID: goSession.MetricActivityIgnored, Name: "gosession_activity_ignored_total", Help: "Interactions rejected by category gating."},
	{ID: goSession.MetricActivitySuppressed, Name: "gosession_activity_suppressed_total", Help: "Interactions dropped by spam suppression."},
	{ID: goSession.MetricActivityNoSession, Name: "gosession_activity_no_session_total", Help: "Eligible activities without a live session."},
	{ID: goSession.MetricDeadlineExtended, Name: "gosession_deadline_extended_total", Help: "Activities that moved an inactivity deadline."},
	{ID: goSession.MetricWarningReprieved, Name: "gosession_warning_reprieved_total", Help: "Timeout warnings cleared by renewal."},
	{ID: goSession.MetricWarningSent, Name: "gosession_warning_sent_total", Help: "Timeout warnings delivered."},
	{ID: goSession.MetricWarningFailed, Name: "gosession_warning_failed_total", Help: "Timeout warnings that failed to deliver."},
	{ID: goSession.MetricSweepRun, Name: "gosession_sweep_runs_total", Help: "Completed expiry sweeps."},
	{ID: goSession.MetricManualExtension, Name: "gosession_manual_extension_total", Help: "Operator session extensions."},
	{ID: goSession.MetricForcedLogout, Name: "gosession_forced_logout_total", Help: "Operator forced logouts."},
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful credential logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed credential logins."},
	{ID: goSession.MetricNotifierFailure, Name: "gosession_notifier_failure_total", Help: "Failed notifier calls."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricValidateLatency, Name: "gosession_validate_latency_seconds", Help: "Session validation latency."},
	{ID: goSession.MetricSweepLatency, Name: "gosession_sweep_latency_seconds", Help: "Expiry sweep duration."},
}

// Gauge names derived from [goSession.ServiceStats].
const (
	ActiveSessionsName = "gosession_active_sessions"
	ActiveSessionsHelp = "Live sessions by class."
	WarnedSessionsName = "gosession_warned_sessions"
	WarnedSessionsHelp = "Live sessions with a pending timeout warning."
	TrackedUsersName   = "gosession_tracked_users"
	TrackedUsersHelp   = "Users with activity history inside the spam window."
	AuditDroppedName   = "gosession_audit_dropped_total"
	AuditDroppedHelp   = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the bucket upper bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are [HistogramBounds] spelled for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

// ClassLabels returns the class label values in a stable order.
func ClassLabels() []goSession.SessionClass {
	return []goSession.SessionClass{goSession.SmartAuth, goSession.ManualLogin, goSession.AdminSession}
}
