package store

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// newAdminKey mints a per-room opaque bearer token of the form chat_<hex>,
// returned once at room creation and never again.
func newAdminKey() string {
	return "chat_" + randomHex(24)
}

// newToken mints an incoming-webhook public token.
func newToken() string {
	return "whk_" + randomHex(24)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read only fails if the OS source is broken; fall back
		// to a UUID so callers never receive an empty token.
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
