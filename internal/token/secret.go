package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

const secretBytes = 32

// Secret is a single-use random value stored server side next to its expiry.
type Secret struct {
	Value     string
	ExpiresAt time.Time
}

func NewSecret(now time.Time, ttl time.Duration) (Secret, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return Secret{}, fmt.Errorf("generate secret: %w", err)
	}
	return Secret{
		Value:     hex.EncodeToString(buf),
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Matches reports whether presented equals the stored value and the stored
// expiry lies after now. Nil fields never match.
func Matches(stored *string, expires *time.Time, presented string, now time.Time) bool {
	if stored == nil || expires == nil || presented == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) != 1 {
		return false
	}
	return expires.After(now)
}
