package movies

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRecord is a full in-memory catalog entry used by MemoryRepository.
type MemoryRecord struct {
	Summary Summary
	Details Details
}

// MemoryRepository is an in-memory catalog used when no database is
// configured, and by tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]MemoryRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]MemoryRecord)}
}

// Add inserts or replaces a record keyed by its imdbID.
func (r *MemoryRepository) Add(rec MemoryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Summary.IMDBID] = rec
}

func (r *MemoryRepository) Search(ctx context.Context, title string, year, limit, offset int) ([]Summary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Summary
	for _, rec := range r.records {
		if title != "" && !strings.Contains(strings.ToLower(rec.Summary.Title), strings.ToLower(title)) {
			continue
		}
		if year != 0 && rec.Summary.Year != year {
			continue
		}
		matched = append(matched, rec.Summary)
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].IMDBID) < strings.ToLower(matched[j].IMDBID)
	})

	total := len(matched)
	if offset >= total {
		return []Summary{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryRepository) Details(ctx context.Context, imdbID string) (*Details, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[imdbID]
	if !ok {
		return nil, ErrNotFound
	}
	d := rec.Details
	return &d, nil
}
