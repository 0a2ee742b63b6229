package people

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("person not found")

// Repository provides read access to people and their credits.
type Repository interface {
	// Get returns the person for an nconst with roles sorted by movie id,
	// or ErrNotFound.
	Get(ctx context.Context, id string) (*Person, error)
}
