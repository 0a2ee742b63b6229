package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is a mutex-guarded in-memory Repository used by unit
// tests and by DB-less development mode. Semantics mirror the Postgres
// implementation, including the single-winner rotation guarantee.
type MemoryRepository struct {
	mu    sync.Mutex
	store map[string]*RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*RefreshToken)}
}

func (m *MemoryRepository) Create(ctx context.Context, t *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[t.Token]; ok {
		return ErrConflict
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	m.store[t.Token] = &cp
	return nil
}

func (m *MemoryRepository) FindValid(ctx context.Context, token string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[token]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		delete(m.store, token)
		return nil, ErrExpired
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepository) Rotate(ctx context.Context, oldToken string, newRecord *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.store[oldToken]
	if !ok {
		return ErrNotFound
	}
	if time.Now().UTC().After(old.ExpiresAt) {
		delete(m.store, oldToken)
		return ErrExpired
	}
	if _, ok := m.store[newRecord.Token]; ok {
		return ErrConflict
	}
	delete(m.store, oldToken)
	if newRecord.CreatedAt.IsZero() {
		newRecord.CreatedAt = time.Now().UTC()
	}
	cp := *newRecord
	m.store[newRecord.Token] = &cp
	return nil
}

func (m *MemoryRepository) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[token]; !ok {
		return ErrNotFound
	}
	delete(m.store, token)
	return nil
}
