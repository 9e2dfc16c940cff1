// README: In-memory place store for tests and local runs.
package place

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemStore struct {
	mu     sync.Mutex
	places map[uuid.UUID]*Place
}

func NewMemStore() *MemStore {
	return &MemStore{places: make(map[uuid.UUID]*Place)}
}

func (s *MemStore) Create(ctx context.Context, p *Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.places[p.ID] = &c
	return nil
}

func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (*Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.places[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *MemStore) Update(ctx context.Context, p *Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.places[p.ID]; !ok {
		return ErrNotFound
	}
	c := *p
	s.places[p.ID] = &c
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.places, id)
	return nil
}

func (s *MemStore) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Place
	for _, p := range s.places {
		if p.ZoneID != nil && *p.ZoneID == zoneID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}
