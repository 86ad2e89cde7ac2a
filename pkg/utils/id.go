package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GenID returns a collision-resistant identifier for messages, servers,
// users and friend requests.
func GenID() string {
	return uuid.NewString()
}

// GenCode returns a short invite code. Eight hex characters of a random
// UUID is plenty for a local, advisory-only invite namespace.
func GenCode() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:8]
}
