// Package goSession manages the lifecycle of per-user chat bot sessions:
// creation by authentication class, activity-driven sliding extension bounded
// by a hard lifetime, timeout warnings, and periodic cleanup of expired state.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SessionInfo, ActivitySummary, ServiceStats,
// MetricsSnapshot). Session state lives in the session package, activity
// gating in activity, and outbound delivery behind notify.Notifier.
// Audit dispatch and logging setup live under internal/.
//
// # What this package must NOT do
//
//   - Persist sessions. State is in memory and lost on restart.
//   - Send notifications while holding a session shard lock.
//   - Extend a session from a validation call; only recorded activity and
//     explicit extension move deadlines.
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Timing contract
//
// Warnings and sweeps run on [SchedulerConfig] cadences, so a session may
// outlive its deadline by up to one sweep interval. Validation, activity, and
// extension treat such a session as expired and evict it on contact.
package goSession
