package devotp

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "alice", "123456", time.Now().Add(time.Minute))

	otp, ok := s.Get(ctx, "alice")
	if !ok {
		t.Fatal("Get: want ok")
	}
	if otp != "123456" {
		t.Errorf("otp = %q, want 123456", otp)
	}
}

func TestMemoryStore_Missing(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get(context.Background(), "nobody"); ok {
		t.Error("Get missing username: want ok false")
	}
}

func TestMemoryStore_Expired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }
	s.Put(ctx, "alice", "123456", now.Add(time.Minute))

	s.nowF = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := s.Get(ctx, "alice"); ok {
		t.Error("Get expired otp: want ok false")
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)
	s.Put(ctx, "alice", "111111", exp)
	s.Put(ctx, "alice", "222222", exp)

	otp, ok := s.Get(ctx, "alice")
	if !ok || otp != "222222" {
		t.Errorf("Get = %q ok=%v, want latest otp 222222", otp, ok)
	}
}
