package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-control-plane/backend/internal/refreshtoken/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTokenHash returns the token row for the hash, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT rt.id, rt.user_id, u.username, rt.token_hash, rt.expires_at, rt.created_at
		FROM refresh_token rt
		JOIN app_user u ON u.id = rt.user_id
		WHERE rt.token_hash = $1`, tokenHash)
	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Username, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Replace deletes any existing token for t.UserID and inserts t in a single
// transaction, serializing rotation on the user's rows.
func (r *PostgresRepository) Replace(ctx context.Context, t *domain.RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_token WHERE user_id = $1`, t.UserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_token (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByTokenHash removes the row for the hash. Deleting a missing token is not an error.
func (r *PostgresRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_token WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteByUser removes any token rows owned by the user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_token WHERE user_id = $1`, userID)
	return err
}
