package repository

import (
	"context"

	"campus-control-plane/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdatePasswordHash replaces the stored credential hash for the user.
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}
