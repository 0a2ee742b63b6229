package people

import "context"

// Service fronts the people repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the full person record with roles sorted by movie id.
func (s *Service) Get(ctx context.Context, id string) (*Person, error) {
	return s.repo.Get(ctx, id)
}
