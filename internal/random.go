package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	sessionTokenSize     = 32
	tokenFingerprintSize = 6
)

// NewSessionToken returns 32 random bytes encoded as unpadded base64url.
func NewSessionToken() (string, error) {
	var raw [sessionTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// ValidSessionToken reports whether token has the shape produced by NewSessionToken.
func ValidSessionToken(token string) bool {
	_, err := DecodeSessionToken(token)
	return err == nil
}

// TokenFingerprint returns a short, non-reversible identifier for a token
// that is safe to place in logs and audit metadata.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:tokenFingerprintSize])
}

// DecodeSessionToken returns the raw token bytes.
func DecodeSessionToken(token string) ([sessionTokenSize]byte, error) {
	var out [sessionTokenSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return out, err
	}
	if len(raw) != sessionTokenSize {
		return out, errors.New("invalid session token size")
	}

	copy(out[:], raw)
	return out, nil
}
