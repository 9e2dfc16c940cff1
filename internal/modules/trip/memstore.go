// README: In-memory trip store with the same compare-and-set contract as Postgres.
package trip

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemStore struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*TripRequest
}

func NewMemStore() *MemStore {
	return &MemStore{trips: make(map[uuid.UUID]*TripRequest)}
}

func (s *MemStore) Create(ctx context.Context, t *TripRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = cloneTrip(t)
	return nil
}

func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (*TripRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *MemStore) Update(ctx context.Context, t *TripRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.trips[t.ID]
	if !ok {
		return false, ErrNotFound
	}
	if current.StatusVersion != t.StatusVersion {
		return false, nil
	}
	saved := cloneTrip(t)
	saved.StatusVersion++
	s.trips[t.ID] = saved
	t.StatusVersion = saved.StatusVersion
	return true, nil
}

func (s *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trips, id)
	return nil
}

func (s *MemStore) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*TripRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*TripRequest
	for _, t := range s.trips {
		if t.RiderID == riderID {
			out = append(out, cloneTrip(t))
		}
	}
	return out, nil
}

func (s *MemStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*TripRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*TripRequest
	for _, id := range ids {
		if t, ok := s.trips[id]; ok {
			out = append(out, cloneTrip(t))
		}
	}
	return out, nil
}

func cloneTrip(t *TripRequest) *TripRequest {
	c := *t
	c.FromZoneID = cloneUUID(t.FromZoneID)
	c.ToZoneID = cloneUUID(t.ToZoneID)
	c.ShiftID = cloneUUID(t.ShiftID)
	c.PartnerRequestID = cloneUUID(t.PartnerRequestID)
	if t.Primary != nil {
		p := *t.Primary
		c.Primary = &p
	}
	if t.Secondary != nil {
		sc := *t.Secondary
		c.Secondary = &sc
	}
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
