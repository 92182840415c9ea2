package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-control-plane/backend/internal/passwordreset/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a reset token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUser returns the live token for the user, or nil if none exists.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID int64) (*domain.ResetToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, otp_hash, expires_at, created_at
		FROM password_reset_token WHERE user_id = $1`, userID)
	var t domain.ResetToken
	err := row.Scan(&t.ID, &t.UserID, &t.OTPHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Replace deletes any existing token for t.UserID and inserts t in a single transaction.
func (r *PostgresRepository) Replace(ctx context.Context, t *domain.ResetToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM password_reset_token WHERE user_id = $1`, t.UserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO password_reset_token (id, user_id, otp_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.OTPHash, t.ExpiresAt, t.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByID removes the row. Deleting a missing row is not an error.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_token WHERE id = $1`, id)
	return err
}

// DeleteByUser removes any token rows owned by the user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_token WHERE user_id = $1`, userID)
	return err
}
