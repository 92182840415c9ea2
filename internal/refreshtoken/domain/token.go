package domain

import "time"

// RefreshToken is the persisted long-lived credential used to mint new access
// tokens without re-authentication. TokenHash is the SHA-256 hash of the
// opaque token string; the raw token is returned to the client once and never
// stored. A user has at most one live refresh token: issuing a new one
// supersedes any prior row.
type RefreshToken struct {
	ID        string // uuid
	UserID    int64
	Username  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
