package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_GenerateAndExtract(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, exp, err := p.Generate("alice", 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("Generate returned empty token")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	username, err := p.ExtractUsername(token)
	if err != nil {
		t.Fatalf("ExtractUsername: %v", err)
	}
	if username != "alice" {
		t.Errorf("ExtractUsername = %q, want alice", username)
	}

	uid, err := p.ExtractUserID(token)
	if err != nil {
		t.Fatalf("ExtractUserID: %v", err)
	}
	if uid != 42 {
		t.Errorf("ExtractUserID = %d, want 42", uid)
	}

	gotExp, err := p.ExtractExpiration(token)
	if err != nil {
		t.Fatalf("ExtractExpiration: %v", err)
	}
	if gotExp.Unix() != exp.Unix() {
		t.Errorf("ExtractExpiration = %v, want %v", gotExp, exp)
	}
}

func TestTokenProvider_GenerateWithoutUserID(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Generate("bob", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	uid, err := p.ExtractUserID(token)
	if err != nil {
		t.Fatalf("ExtractUserID: %v", err)
	}
	if uid != 0 {
		t.Errorf("ExtractUserID = %d, want 0 for omitted claim", uid)
	}
}

func TestTokenProvider_Validate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Generate("alice", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !p.Validate(token, "alice") {
		t.Error("Validate should accept a fresh token for the right subject")
	}
	if p.Validate(token, "mallory") {
		t.Error("Validate should reject a mismatched subject")
	}
}

func TestTokenProvider_ValidateExpired(t *testing.T) {
	p, err := NewTestTokenProviderTTL(time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProviderTTL: %v", err)
	}
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p.nowF = func() time.Time { return issued }

	token, _, err := p.Generate("alice", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !p.Validate(token, "alice") {
		t.Fatal("token should validate at issue time")
	}

	p.nowF = func() time.Time { return issued.Add(2 * time.Minute) }
	if p.Validate(token, "alice") {
		t.Error("Validate should reject a token past its TTL")
	}

	// Claims remain extractable from an expired token.
	if _, err := p.ExtractUsername(token); err != nil {
		t.Errorf("ExtractUsername on expired token: %v", err)
	}
}

func TestTokenProvider_MalformedToken(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := p.ExtractUsername(bad); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("ExtractUsername(%q): want ErrTokenMalformed, got %v", bad, err)
		}
		if p.Validate(bad, "alice") {
			t.Errorf("Validate(%q) should be false", bad)
		}
	}
}

func TestTokenProvider_TamperedSignature(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Generate("alice", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tampered := token[:len(token)-4] + "AAAA"
	if _, err := p.ExtractUsername(tampered); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("tampered token: want ErrTokenMalformed, got %v", err)
	}
	if p.Validate(tampered, "alice") {
		t.Error("Validate should reject a tampered signature")
	}
}
