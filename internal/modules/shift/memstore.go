// README: In-memory shift store mirroring the Postgres compare-and-set contract.
package shift

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/modules/timeline"
)

type MemStore struct {
	mu       sync.Mutex
	shifts   map[uuid.UUID]*Shift
	archived map[uuid.UUID]*Shift
}

func NewMemStore() *MemStore {
	return &MemStore{
		shifts:   make(map[uuid.UUID]*Shift),
		archived: make(map[uuid.UUID]*Shift),
	}
}

func (s *MemStore) Create(ctx context.Context, sh *Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[sh.ID] = cloneShift(sh)
	return nil
}

func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.shifts[id]; ok {
		return cloneShift(sh), nil
	}
	if sh, ok := s.archived[id]; ok {
		return cloneShift(sh), nil
	}
	return nil, ErrNotFound
}

func (s *MemStore) Update(ctx context.Context, sh *Shift) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.shifts[sh.ID]
	if !ok {
		return false, ErrNotFound
	}
	if current.Version != sh.Version {
		return false, nil
	}
	saved := cloneShift(sh)
	saved.Version++
	s.shifts[sh.ID] = saved
	sh.Version = saved.Version
	return true, nil
}

func (s *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shifts, id)
	return nil
}

func (s *MemStore) ListActive(ctx context.Context, active bool) ([]*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Shift
	for _, sh := range s.shifts {
		if sh.Active == active {
			out = append(out, cloneShift(sh))
		}
	}
	return out, nil
}

func (s *MemStore) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Shift
	for _, sh := range s.shifts {
		if sh.DriverID != nil && *sh.DriverID == driverID {
			out = append(out, cloneShift(sh))
		}
	}
	return out, nil
}

func (s *MemStore) Archive(ctx context.Context, sh *Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived[sh.ID] = cloneShift(sh)
	delete(s.shifts, sh.ID)
	return nil
}

func (s *MemStore) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Shift
	for _, sh := range s.shifts {
		if sh.EndTime != nil && sh.EndTime.Before(cutoff) {
			out = append(out, cloneShift(sh))
		}
	}
	return out, nil
}

func cloneShift(sh *Shift) *Shift {
	c := *sh
	c.DriverID = cloneUUID(sh.DriverID)
	c.CreatedBy = cloneUUID(sh.CreatedBy)
	if sh.StartTime != nil {
		t := *sh.StartTime
		c.StartTime = &t
	}
	if sh.EndTime != nil {
		t := *sh.EndTime
		c.EndTime = &t
	}
	if sh.StartBuffer != nil {
		b := *sh.StartBuffer
		c.StartBuffer = &b
	}
	if sh.EndBuffer != nil {
		b := *sh.EndBuffer
		c.EndBuffer = &b
	}
	c.Trips = append([]uuid.UUID(nil), sh.Trips...)
	c.Events = append(timeline.Timeline(nil), sh.Events...)
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
