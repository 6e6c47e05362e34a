package redisession

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// DeriveKey maps a session identifier to its namespaced store key by plain
// concatenation, so distinct identifiers never collide under a fixed prefix.
// An empty identifier yields the bare prefix; validating identifier shape is
// the host's responsibility.
func DeriveKey(sessionID, prefix string) string {
	return prefix + sessionID
}

// GenerateSessionID returns a cryptographically random, URL-safe session
// identifier. The host owns identifier generation; this is a convenience
// for hosts that have no scheme of their own.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
