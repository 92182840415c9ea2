package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-control-plane/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetBySlug returns the organization for slug, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, status, created_at FROM organization WHERE slug = $1`, slug)
	var o domain.Org
	var status string
	err := row.Scan(&o.ID, &o.Slug, &o.Name, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrgStatus(status)
	return &o, nil
}

// Create persists the organization.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organization (id, slug, name, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Slug, o.Name, string(o.Status), o.CreatedAt,
	)
	return err
}
