// Package middleware exposes HTTP middleware that gates handlers on a live
// goSession session.
//
// # Guards
//
//   - [RequireSession]: rejects requests whose user has no live session and
//     injects the session identity into the request context.
//   - [TrackActivity]: records an activity for the caller after the wrapped
//     handler succeeds.
//
// The caller's numeric user ID is resolved by a [UserIDFunc]; [HeaderUserID]
// reads it from a request header set by an upstream gateway.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT decide
// session validity itself; every decision is delegated to the Engine.
//
// # What this package must NOT do
//
//   - Extend a session while validating it (validation is read-only).
//   - Hold sessions or identities beyond the request context.
//   - Authenticate the transport; the user ID header must come from a trusted hop.
package middleware
