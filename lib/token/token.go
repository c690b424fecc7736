package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandStr generates a random string of 16 bytes of entropy, hex-encoded.
func RandStr() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// New generates a new object token prefixed by the provided object type:
// `reservation_9dd5287044e34b0dbe2282b4f3c3a3ef`.
func New(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, RandStr())
}
