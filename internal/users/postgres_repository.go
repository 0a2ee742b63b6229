package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmatlas/filmatlas/internal/models"
)

// PostgresRepository implements Repository over database/sql (pgx stdlib
// driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	var dob sql.NullTime
	var firstName, lastName, address sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, dob, address, created_at, updated_at
		FROM users
	`+where, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &dob, &address, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if address.Valid {
		u.Address = &address.String
	}
	if dob.Valid {
		d := dob.Time.UTC()
		u.DOB = &d
	}
	return &u, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, email string, p Profile) (*models.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, dob = $4, address = $5, updated_at = $6
		WHERE email = $1
	`, email, p.FirstName, p.LastName, p.DOB.UTC(), p.Address, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}
