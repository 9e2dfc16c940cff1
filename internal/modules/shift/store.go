// README: Shift store contract with compare-and-set saves and an archive.
package shift

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("shift not found")
	ErrConflict = errors.New("shift state conflict")
	ErrHasTrips = errors.New("shift still has trips assigned")
)

// Store persists Shift aggregates. Update is a compare-and-set on Version:
// false means another writer saved first. Get falls back to the archive for
// shifts already moved out of the live set.
type Store interface {
	Create(ctx context.Context, s *Shift) error
	Get(ctx context.Context, id uuid.UUID) (*Shift, error)
	Update(ctx context.Context, s *Shift) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, active bool) ([]*Shift, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Shift, error)
	Archive(ctx context.Context, s *Shift) error
	ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*Shift, error)
}

// Apply loads the shift, runs fn, and saves with a bounded retry on version
// conflicts, reloading and reapplying the mutation each time.
func Apply(ctx context.Context, store Store, id uuid.UUID, fn func(*Shift) error) (*Shift, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(s); err != nil {
			return nil, err
		}
		ok, err := store.Update(ctx, s)
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	return nil, ErrConflict
}
