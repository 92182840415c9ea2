package loginattempt

import (
	"context"
	"sync"
	"time"
)

type record struct {
	failures    int
	lockedUntil time.Time
}

// MemoryGuard is an in-process Guard. Suitable for single-instance
// deployments; multi-instance deployments should use RedisGuard so lockouts
// are shared.
type MemoryGuard struct {
	mu          sync.Mutex
	m           map[string]record
	maxAttempts int
	cooldown    time.Duration
	nowF        func() time.Time
}

// NewMemoryGuard returns a Guard that locks a username out for cooldown after
// maxAttempts consecutive failures.
func NewMemoryGuard(maxAttempts int, cooldown time.Duration) *MemoryGuard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &MemoryGuard{
		m:           make(map[string]record),
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		nowF:        func() time.Time { return time.Now().UTC() },
	}
}

// LoginFailed increments the failure counter; crossing the threshold sets the
// lockout-until timestamp. While locked, further failures do not accumulate.
func (g *MemoryGuard) LoginFailed(ctx context.Context, username string) error {
	now := g.nowF()
	g.mu.Lock()
	defer g.mu.Unlock()

	r := g.m[username]
	if now.Before(r.lockedUntil) {
		return nil
	}
	if !r.lockedUntil.IsZero() && !now.Before(r.lockedUntil) {
		// Prior lockout elapsed; start a fresh window.
		r = record{}
	}
	r.failures++
	if r.failures >= g.maxAttempts {
		r.lockedUntil = now.Add(g.cooldown)
	}
	g.m[username] = r
	return nil
}

// LoginSucceeded resets the counter and clears any lockout for the username.
func (g *MemoryGuard) LoginSucceeded(ctx context.Context, username string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.m, username)
	return nil
}

// IsBlocked reports whether the lockout timestamp is still in the future.
func (g *MemoryGuard) IsBlocked(ctx context.Context, username string) (bool, error) {
	now := g.nowF()
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.m[username]
	if !ok {
		return false, nil
	}
	if r.lockedUntil.IsZero() {
		return false, nil
	}
	if now.Before(r.lockedUntil) {
		return true, nil
	}
	// Self-expired; drop the stale record.
	delete(g.m, username)
	return false, nil
}
