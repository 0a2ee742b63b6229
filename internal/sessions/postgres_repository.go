package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over database/sql (pgx stdlib
// driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *RefreshToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, t.Token, t.UserID, t.ExpiresAt.UTC(), t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindValid(ctx context.Context, token string) (*RefreshToken, error) {
	var t RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query refresh token: %w", err)
	}
	if time.Now().UTC().After(t.ExpiresAt.UTC()) {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
			return nil, fmt.Errorf("delete expired refresh token: %w", err)
		}
		return nil, ErrExpired
	}
	return &t, nil
}

// Rotate runs the delete+insert as one transaction with the old row
// locked, so two concurrent rotations of the same token cannot both
// succeed: the first commit wins, the second observes ErrNotFound.
func (r *PostgresRepository) Rotate(ctx context.Context, oldToken string, newRecord *RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotation tx: %w", err)
	}
	defer tx.Rollback()

	var expiresAt time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT expires_at
		FROM refresh_tokens
		WHERE token = $1
		FOR UPDATE
	`, oldToken).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock refresh token row: %w", err)
	}

	if time.Now().UTC().After(expiresAt.UTC()) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken); err != nil {
			return fmt.Errorf("delete expired refresh token: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit expiry cleanup: %w", err)
		}
		return ErrExpired
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken); err != nil {
		return fmt.Errorf("delete rotated refresh token: %w", err)
	}
	if newRecord.CreatedAt.IsZero() {
		newRecord.CreatedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, newRecord.Token, newRecord.UserID, newRecord.ExpiresAt.UTC(), newRecord.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotation tx: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
