package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewOpaqueToken returns a new opaque random token string for refresh tokens:
// a UUID plus 16 random bytes, hex-joined. Unguessable and unique per issuance.
func NewOpaqueToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return uuid.New().String() + "." + hex.EncodeToString(b), nil
}

// HashOpaqueToken returns a SHA-256 hash of the token string, hex-encoded.
// Refresh tokens are stored and looked up by hash, never in the raw form.
func HashOpaqueToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// OpaqueTokenHashEqual performs constant-time comparison of the provided
// token's hash with the stored hash.
func OpaqueTokenHashEqual(providedToken, storedHash string) bool {
	providedHash := HashOpaqueToken(providedToken)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
