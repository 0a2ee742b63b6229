package movies

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("movie not found")

// Repository provides read access to the movie catalog.
type Repository interface {
	// Search returns one page of summaries matching the filters plus
	// the total match count. Empty title / zero year mean "no filter".
	Search(ctx context.Context, title string, year, limit, offset int) ([]Summary, int, error)
	// Details returns the full record for an imdbID or ErrNotFound.
	Details(ctx context.Context, imdbID string) (*Details, error)
}
