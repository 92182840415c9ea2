package refreshtoken

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campus-control-plane/backend/internal/refreshtoken/domain"
	userdomain "campus-control-plane/backend/internal/user/domain"
)

type memTokenRepo struct {
	mu sync.Mutex
	m  map[string]*domain.RefreshToken // by token hash
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{m: make(map[string]*domain.RefreshToken)}
}

func (r *memTokenRepo) GetByTokenHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.m[hash]; ok {
		t2 := *t
		return &t2, nil
	}
	return nil, nil
}

func (r *memTokenRepo) Replace(ctx context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, existing := range r.m {
		if existing.UserID == t.UserID {
			delete(r.m, hash)
		}
	}
	t2 := *t
	r.m[t.TokenHash] = &t2
	return nil
}

func (r *memTokenRepo) DeleteByTokenHash(ctx context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, hash)
	return nil
}

func (r *memTokenRepo) DeleteByUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.m {
		if t.UserID == userID {
			delete(r.m, hash)
		}
	}
	return nil
}

func (r *memTokenRepo) countForUser(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.m {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

type memUserGetter struct {
	m map[int64]*userdomain.User
}

func (g *memUserGetter) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	return g.m[id], nil
}

func newTestService(ttl time.Duration) (*Service, *memTokenRepo) {
	repo := newMemTokenRepo()
	users := &memUserGetter{m: map[int64]*userdomain.User{
		1: {ID: 1, Username: "bob", Email: "bob@x.com"},
	}}
	return NewService(repo, users, ttl), repo
}

func TestService_CreateAndValidate(t *testing.T) {
	svc, _ := newTestService(time.Hour)
	ctx := context.Background()
	user := &userdomain.User{ID: 1, Username: "bob"}

	raw, rec, err := svc.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if raw == "" || rec == nil {
		t.Fatal("Create returned empty token or nil record")
	}
	if rec.TokenHash == raw {
		t.Error("record must store the hash, not the raw token")
	}

	got, gotRec, err := svc.ValidateAndGetUser(ctx, raw)
	if err != nil {
		t.Fatalf("ValidateAndGetUser: %v", err)
	}
	if got.Username != "bob" {
		t.Errorf("owner = %q, want bob", got.Username)
	}
	if gotRec.ID != rec.ID {
		t.Errorf("record id = %q, want %q", gotRec.ID, rec.ID)
	}
}

func TestService_AtMostOnePerUser(t *testing.T) {
	svc, repo := newTestService(time.Hour)
	ctx := context.Background()
	user := &userdomain.User{ID: 1, Username: "bob"}

	var lastRaw string
	for i := 0; i < 5; i++ {
		raw, _, err := svc.Create(ctx, user)
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		lastRaw = raw
	}
	if n := repo.countForUser(1); n != 1 {
		t.Errorf("live tokens for user = %d, want 1 after repeated logins", n)
	}
	if _, _, err := svc.ValidateAndGetUser(ctx, lastRaw); err != nil {
		t.Errorf("latest token should validate: %v", err)
	}
}

func TestService_UnknownToken(t *testing.T) {
	svc, _ := newTestService(time.Hour)
	ctx := context.Background()

	rec, err := svc.FindByToken(ctx, "no-such-token")
	if err != nil || rec != nil {
		t.Errorf("FindByToken unknown: rec=%v err=%v, want nil, nil", rec, err)
	}
	if _, _, err := svc.ValidateAndGetUser(ctx, "no-such-token"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("ValidateAndGetUser unknown: want ErrTokenNotFound, got %v", err)
	}
}

func TestService_ExpiredTokenDeletedOnRead(t *testing.T) {
	svc, repo := newTestService(time.Hour)
	ctx := context.Background()
	user := &userdomain.User{ID: 1, Username: "bob"}

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.nowF = func() time.Time { return issued }
	raw, _, err := svc.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc.nowF = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, _, err := svc.ValidateAndGetUser(ctx, raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
	if n := repo.countForUser(1); n != 0 {
		t.Errorf("expired row should be deleted on read, %d rows remain", n)
	}
	// Second lookup: the row is gone.
	if _, _, err := svc.ValidateAndGetUser(ctx, raw); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("second lookup: want ErrTokenNotFound, got %v", err)
	}
}

func TestService_VerifyExpiration(t *testing.T) {
	svc, repo := newTestService(time.Hour)
	ctx := context.Background()
	user := &userdomain.User{ID: 1, Username: "bob"}

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.nowF = func() time.Time { return issued }
	raw, rec, err := svc.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.VerifyExpiration(ctx, rec); err != nil {
		t.Errorf("VerifyExpiration fresh: %v", err)
	}

	svc.nowF = func() time.Time { return issued.Add(2 * time.Hour) }
	if err := svc.VerifyExpiration(ctx, rec); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyExpiration expired: want ErrTokenExpired, got %v", err)
	}
	if n := repo.countForUser(1); n != 0 {
		t.Error("VerifyExpiration should delete the expired row")
	}
	_ = raw
}

func TestService_DeleteByTokenIdempotent(t *testing.T) {
	svc, _ := newTestService(time.Hour)
	ctx := context.Background()
	user := &userdomain.User{ID: 1, Username: "bob"}

	raw, _, err := svc.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.DeleteByToken(ctx, raw); err != nil {
		t.Fatalf("DeleteByToken: %v", err)
	}
	// Deleting again is not an error.
	if err := svc.DeleteByToken(ctx, raw); err != nil {
		t.Fatalf("DeleteByToken second call: %v", err)
	}
	if _, _, err := svc.ValidateAndGetUser(ctx, raw); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("after delete: want ErrTokenNotFound, got %v", err)
	}
}
