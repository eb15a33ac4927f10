package httpx

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// genID returns a 16-hex-digit connection identifier for log lines.
func genID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	// Fallback to a timestamp-based ID if rand fails (unlikely)
	t := time.Now().UnixNano()
	for i := range b {
		b[i] = byte(t >> (uint(i) * 8))
	}
	return hex.EncodeToString(b[:])
}
