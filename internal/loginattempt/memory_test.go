package loginattempt

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryGuard_LockoutAfterThreshold(t *testing.T) {
	g := NewMemoryGuard(5, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := g.LoginFailed(ctx, "alice"); err != nil {
			t.Fatalf("LoginFailed #%d: %v", i, err)
		}
		blocked, err := g.IsBlocked(ctx, "alice")
		if err != nil {
			t.Fatalf("IsBlocked: %v", err)
		}
		if blocked {
			t.Fatalf("blocked after only %d failures", i+1)
		}
	}
	if err := g.LoginFailed(ctx, "alice"); err != nil {
		t.Fatalf("LoginFailed #5: %v", err)
	}
	blocked, err := g.IsBlocked(ctx, "alice")
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if !blocked {
		t.Error("want blocked after 5 consecutive failures")
	}
}

func TestMemoryGuard_LockoutSelfExpires(t *testing.T) {
	g := NewMemoryGuard(5, 15*time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	g.nowF = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_ = g.LoginFailed(ctx, "alice")
	}
	if blocked, _ := g.IsBlocked(ctx, "alice"); !blocked {
		t.Fatal("want blocked")
	}

	// Cooldown elapses; no explicit unlock call.
	g.nowF = func() time.Time { return now.Add(16 * time.Minute) }
	if blocked, _ := g.IsBlocked(ctx, "alice"); blocked {
		t.Error("lockout should self-expire after the cooldown")
	}
}

func TestMemoryGuard_SuccessResets(t *testing.T) {
	g := NewMemoryGuard(5, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = g.LoginFailed(ctx, "alice")
	}
	if err := g.LoginSucceeded(ctx, "alice"); err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}
	// Counter restarted: 4 more failures do not lock.
	for i := 0; i < 4; i++ {
		_ = g.LoginFailed(ctx, "alice")
	}
	if blocked, _ := g.IsBlocked(ctx, "alice"); blocked {
		t.Error("counter should reset after a successful login")
	}
}

func TestMemoryGuard_NoAccumulationWhileLocked(t *testing.T) {
	g := NewMemoryGuard(5, 15*time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	g.nowF = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		_ = g.LoginFailed(ctx, "alice")
	}
	// Failures during the lockout must not extend it past now + cooldown.
	g.nowF = func() time.Time { return now.Add(16 * time.Minute) }
	if blocked, _ := g.IsBlocked(ctx, "alice"); blocked {
		t.Error("failures while locked must not extend the lockout window")
	}
}

func TestMemoryGuard_UsernamesIndependent(t *testing.T) {
	g := NewMemoryGuard(5, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = g.LoginFailed(ctx, "alice")
	}
	if blocked, _ := g.IsBlocked(ctx, "bob"); blocked {
		t.Error("bob should not be blocked by alice's failures")
	}
}

func TestMemoryGuard_ConcurrentAccess(t *testing.T) {
	g := NewMemoryGuard(100, 15*time.Minute)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = g.LoginFailed(ctx, "alice")
				_, _ = g.IsBlocked(ctx, "alice")
			}
		}()
	}
	wg.Wait()
	if blocked, _ := g.IsBlocked(ctx, "alice"); !blocked {
		t.Error("1000 failures should exceed the threshold")
	}
}
