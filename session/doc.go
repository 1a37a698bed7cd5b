// Package session provides the in-memory, per-user session store together with the
// class policy table and the pure timeout evaluator that drive session expiry.
//
// # Lifecycle
//
// A [Session] is created by [Store.Create], renewed by [Store.RecordActivity] and
// [Store.ExtendManually], and removed by [Store.Revoke], by expiry detected in
// [Store.Validate] or [Store.RecordActivity], or by a periodic [Store.Sweep].
// The inactivity deadline only moves forward and never past the hard deadline
// fixed at creation.
//
// # Concurrency
//
// Keys are spread across mutex-guarded shards. Every per-user operation is one
// lookup-then-mutate unit under its shard lock, so a concurrent validation can never
// evict a session out from under an activity update and no increment is lost.
//
// # What this package must NOT do
//
//   - Import goSession, activity, or notify (no upward imports).
//   - Inspect the identity payload it stores.
//   - Perform I/O; all state lives in memory.
package session
