package tenant

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestFromContext_Default(t *testing.T) {
	ctx := context.Background()
	if got := FromContext(ctx); got != DefaultSlug {
		t.Errorf("FromContext on empty context = %q, want %q", got, DefaultSlug)
	}
	if IsSet(ctx) {
		t.Error("IsSet on empty context should be false")
	}
}

func TestWithTenant_BindAndRead(t *testing.T) {
	ctx := WithTenant(context.Background(), "greenfield-high")
	if got := FromContext(ctx); got != "greenfield-high" {
		t.Errorf("FromContext = %q, want %q", got, "greenfield-high")
	}
	if !IsSet(ctx) {
		t.Error("IsSet should be true after WithTenant")
	}
}

func TestWithTenant_TrimsSlug(t *testing.T) {
	ctx := WithTenant(context.Background(), "  northside-college  ")
	if got := FromContext(ctx); got != "northside-college" {
		t.Errorf("FromContext = %q, want trimmed slug", got)
	}
}

func TestWithTenant_EmptyLeavesUnset(t *testing.T) {
	ctx := WithTenant(context.Background(), "   ")
	if IsSet(ctx) {
		t.Error("binding a blank slug should leave the context unset")
	}
	if got := FromContext(ctx); got != DefaultSlug {
		t.Errorf("FromContext = %q, want %q", got, DefaultSlug)
	}
}

func TestWithTenant_NoBleedAcrossContexts(t *testing.T) {
	base := context.Background()
	a := WithTenant(base, "tenant-a")
	b := WithTenant(base, "tenant-b")

	if got := FromContext(a); got != "tenant-a" {
		t.Errorf("context a = %q, want tenant-a", got)
	}
	if got := FromContext(b); got != "tenant-b" {
		t.Errorf("context b = %q, want tenant-b", got)
	}
	if IsSet(base) {
		t.Error("base context must stay unbound")
	}
}

func TestWithTenant_ConcurrentRequestsIsolated(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			slug := fmt.Sprintf("tenant-%d", n)
			ctx := WithTenant(context.Background(), slug)
			for j := 0; j < 100; j++ {
				if got := FromContext(ctx); got != slug {
					t.Errorf("goroutine %d observed %q, want %q", n, got, slug)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
