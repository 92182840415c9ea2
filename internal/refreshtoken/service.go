// Package refreshtoken issues, validates, and expires the persisted refresh
// tokens that gate access-token renewal.
package refreshtoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"campus-control-plane/backend/internal/refreshtoken/domain"
	"campus-control-plane/backend/internal/refreshtoken/repository"
	"campus-control-plane/backend/internal/security"
	userdomain "campus-control-plane/backend/internal/user/domain"
)

// Sentinel errors; callers map them to their boundary's failure codes.
var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token expired")
)

// UserGetter is the minimal user repository needed to resolve a token's owner.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}

// Service manages the refresh token lifecycle. Expired tokens are
// garbage-collected lazily on lookup, not by a background sweep.
type Service struct {
	repo  repository.Repository
	users UserGetter
	ttl   time.Duration
	nowF  func() time.Time
}

// NewService returns a refresh token service with the given TTL.
func NewService(repo repository.Repository, users UserGetter, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		users: users,
		ttl:   ttl,
		nowF:  func() time.Time { return time.Now().UTC() },
	}
}

// Create generates a new opaque token for the user, supersedes any existing
// token row for that user, persists the new row, and returns the raw token
// string plus the persisted record. Only the raw token leaves the process; the
// store keeps its hash.
func (s *Service) Create(ctx context.Context, user *userdomain.User) (string, *domain.RefreshToken, error) {
	raw, err := security.NewOpaqueToken()
	if err != nil {
		return "", nil, err
	}
	now := s.nowF()
	rec := &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		TokenHash: security.HashOpaqueToken(raw),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		return "", nil, err
	}
	return raw, rec, nil
}

// FindByToken returns the persisted record for the raw token, or nil if none
// exists. No side effects.
func (s *Service) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return s.repo.GetByTokenHash(ctx, security.HashOpaqueToken(token))
}

// VerifyExpiration checks an already-fetched record against the clock. If the
// record is past expiry it deletes the row and returns ErrTokenExpired.
func (s *Service) VerifyExpiration(ctx context.Context, rec *domain.RefreshToken) error {
	if rec == nil {
		return ErrTokenNotFound
	}
	if rec.Expired(s.nowF()) {
		if err := s.repo.DeleteByTokenHash(ctx, rec.TokenHash); err != nil {
			return err
		}
		return ErrTokenExpired
	}
	return nil
}

// ValidateAndGetUser looks up the raw token and returns its owning user.
// Fails with ErrTokenNotFound if the token is absent, or ErrTokenExpired if it
// is past expiry (deleting the expired row as a side effect).
func (s *Service) ValidateAndGetUser(ctx context.Context, token string) (*userdomain.User, *domain.RefreshToken, error) {
	rec, err := s.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, ErrTokenNotFound
	}
	if err := s.VerifyExpiration(ctx, rec); err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrTokenNotFound
	}
	return user, rec, nil
}

// DeleteByToken removes the row for the raw token unconditionally (logout).
// Deleting a non-existent token is not an error.
func (s *Service) DeleteByToken(ctx context.Context, token string) error {
	return s.repo.DeleteByTokenHash(ctx, security.HashOpaqueToken(token))
}

// DeleteByUser removes any token rows owned by the user. Called after a
// credential change so stale tokens cannot mint new access tokens.
func (s *Service) DeleteByUser(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUser(ctx, userID)
}
