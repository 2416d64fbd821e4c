package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives a cache key from a namespace and an arbitrary identifier
// (typically a sheet URL). The identifier is hashed so keys are safe for
// filesystems and Redis regardless of their content.
// The key format is: namespace:hex(sha256(id)).
func Key(namespace, id string) string {
	return namespace + ":" + Hash([]byte(id))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
