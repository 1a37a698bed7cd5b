// Package internal contains helper utilities that are intentionally private to goSession,
// including secure session token generation and log-safe token fingerprints.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - inbound: Redis pub/sub event intake for the daemon
//   - logging: slog bootstrap for the daemon
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
