package repository

import (
	"context"

	"campus-control-plane/backend/internal/refreshtoken/domain"
)

// Repository defines persistence for refresh tokens.
type Repository interface {
	// GetByTokenHash returns the token row for the hash, or nil if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Replace atomically deletes any existing token for t.UserID and inserts t,
	// so concurrent logins for the same user never leave two live rows.
	Replace(ctx context.Context, t *domain.RefreshToken) error
	// DeleteByTokenHash removes the row for the hash. Idempotent: deleting a
	// missing token is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// DeleteByUser removes any token rows owned by the user. Idempotent.
	DeleteByUser(ctx context.Context, userID int64) error
}
