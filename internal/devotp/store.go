// Package devotp provides an in-memory store of the last password-reset OTP
// per username, used only when dev OTP mode is enabled (OTP_RETURN_TO_CLIENT).
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain OTP by username for dev-only retrieval. Not used in production.
type Store interface {
	// Put stores otp for username until expiresAt. Called when a reset OTP is created in dev mode.
	Put(ctx context.Context, username, otp string, expiresAt time.Time)
	// Get returns the otp for username if present and not expired. Returns ok false if missing or expired.
	Get(ctx context.Context, username string) (otp string, ok bool)
}

type entry struct {
	otp       string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: time.Now().UTC,
	}
}

// Put stores otp for username until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, username, otp string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[username] = entry{otp: otp, expiresAt: expiresAt}
}

// Get returns the otp for username if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, username string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[username]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, username)
		s.mu.Unlock()
		return "", false
	}
	return e.otp, true
}
