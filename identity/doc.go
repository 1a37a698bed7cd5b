// Package identity defines the credential verification boundary consumed at
// login and ships a file-backed [StaticProvider] whose passwords are stored as
// argon2id PHC strings.
//
// The session subsystem treats an [Identity] as an opaque payload; only the
// login flow and operator tooling read its fields.
package identity
