package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns 12 random bytes hex-encoded, short enough for log lines and
// object keys while still collision-safe.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
