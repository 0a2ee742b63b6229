package posters

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("poster not found")

// Store holds one poster image per movie, keyed by imdbID.
type Store interface {
	// Put stores or replaces the poster for an imdbID.
	Put(ctx context.Context, imdbID string, r io.Reader, size int64, contentType string) error
	// Get streams the stored poster plus its content type, or ErrNotFound.
	Get(ctx context.Context, imdbID string) (io.ReadCloser, string, error)
}
