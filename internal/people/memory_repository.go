package people

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository is an in-memory people store used when no database is
// configured, and by tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	people map[string]Person
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{people: make(map[string]Person)}
}

// Add inserts or replaces a person keyed by nconst.
func (r *MemoryRepository) Add(id string, p Person) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.people[id] = p
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.people[id]
	if !ok {
		return nil, ErrNotFound
	}
	roles := make([]Role, len(p.Roles))
	copy(roles, p.Roles)
	sort.Slice(roles, func(i, j int) bool {
		return strings.ToLower(roles[i].MovieID) < strings.ToLower(roles[j].MovieID)
	})
	p.Roles = roles
	return &p, nil
}
