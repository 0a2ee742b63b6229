package sessions

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: the token never existed here, or was already rotated
	// or revoked. Distinct from ErrExpired for diagnostics, though both
	// surface as 401 at the HTTP boundary.
	ErrNotFound = errors.New("refresh token not found")
	// ErrExpired: the token existed but its expiry passed; the row has
	// been deleted by the lookup.
	ErrExpired = errors.New("refresh token expired")
	// ErrConflict: the token value already exists. Should not happen
	// given token entropy, but is still checked.
	ErrConflict = errors.New("refresh token already exists")
)

// Repository provides refresh token persistence operations
type Repository interface {
	// Create inserts a new record, failing with ErrConflict on a
	// duplicate token value.
	Create(ctx context.Context, t *RefreshToken) error
	// FindValid returns the record for the token. An expired record is
	// deleted and reported as ErrExpired, never returned as usable.
	FindValid(ctx context.Context, token string) (*RefreshToken, error)
	// Rotate atomically replaces oldToken's record with the new one.
	// When oldToken is absent (replayed or never issued) it fails with
	// ErrNotFound; when its expiry passed the row is deleted and the
	// call fails with ErrExpired. In both failure cases the new record
	// must not be inserted.
	Rotate(ctx context.Context, oldToken string, newRecord *RefreshToken) error
	// Revoke deletes the record, failing with ErrNotFound when absent.
	Revoke(ctx context.Context, token string) error
}
