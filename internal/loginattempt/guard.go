// Package loginattempt tracks consecutive failed logins per username and
// enforces a temporary lockout after a configured threshold. State is
// ephemeral by design: a lockout surviving only until process restart (or
// Redis key expiry) is a deliberate trade-off, not a persistence promise.
package loginattempt

import "context"

// Guard tracks login failures and lockouts per username. Implementations must
// be safe under concurrent access.
type Guard interface {
	// LoginFailed records a failed attempt. Crossing the threshold starts the
	// lockout window; further failures while locked do not extend it.
	LoginFailed(ctx context.Context, username string) error
	// LoginSucceeded resets the failure counter and clears any lockout.
	LoginSucceeded(ctx context.Context, username string) error
	// IsBlocked reports whether the username is currently locked out. Lockouts
	// self-expire once the cooldown elapses; no explicit unlock exists.
	IsBlocked(ctx context.Context, username string) (bool, error)
}
