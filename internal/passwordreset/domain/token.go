package domain

import "time"

// ResetToken is the persisted one-time code authorizing a password reset.
// OTPHash is the SHA-256 hash of the 6-digit code; the plain code goes only to
// the dispatch channel. A user has at most one live reset token: requesting a
// new one supersedes any prior row. Rows are deleted on consumption or on
// expiry detection.
type ResetToken struct {
	ID        string // uuid
	UserID    int64
	OTPHash   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past expiry at the given instant.
func (t *ResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
