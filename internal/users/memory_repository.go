package users

import (
	"context"
	"sync"
	"time"

	"github.com/filmatlas/filmatlas/internal/models"
)

// MemoryRepository is an in-memory Repository for unit tests and DB-less
// development mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*models.User)}
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) UpdateProfile(ctx context.Context, email string, p Profile) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	first, last, addr := p.FirstName, p.LastName, p.Address
	dob := p.DOB.UTC()
	u.FirstName = &first
	u.LastName = &last
	u.DOB = &dob
	u.Address = &addr
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}
