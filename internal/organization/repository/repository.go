package repository

import (
	"context"

	"campus-control-plane/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
}
