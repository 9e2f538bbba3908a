package stub

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in a map. It is the store of choice for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = clone(rec)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

func (s *MemoryStore) ListByCreator(ctx context.Context, userID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.CreatedBy == userID {
			out = append(out, clone(rec))
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *MemoryStore) ListByContributor(ctx context.Context, userID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if hasContribution(rec, userID) {
			out = append(out, clone(rec))
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// sortByCreatedAt orders newest first, matching the backend's listings.
func sortByCreatedAt(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
