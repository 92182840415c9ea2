package repository

import (
	"context"

	"campus-control-plane/backend/internal/passwordreset/domain"
)

// Repository defines persistence for password-reset tokens.
type Repository interface {
	// GetByUser returns the live token for the user, or nil if none exists.
	GetByUser(ctx context.Context, userID int64) (*domain.ResetToken, error)
	// Replace atomically deletes any existing token for t.UserID and inserts t.
	Replace(ctx context.Context, t *domain.ResetToken) error
	// DeleteByID removes the row. Idempotent.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUser removes any token rows owned by the user. Idempotent.
	DeleteByUser(ctx context.Context, userID int64) error
}
