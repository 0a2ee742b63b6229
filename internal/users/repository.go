package users

import (
	"context"
	"errors"
	"time"

	"github.com/filmatlas/filmatlas/internal/models"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Profile is the mutable profile slice of a user record.
type Profile struct {
	FirstName string
	LastName  string
	DOB       time.Time
	Address   string
}

// Repository defines persistence operations for users
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, p Profile) (*models.User, error)
}
