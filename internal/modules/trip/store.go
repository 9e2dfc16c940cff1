// README: Trip store contract; Postgres and in-memory implementations satisfy it.
package trip

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("trip not found")
	ErrConflict     = errors.New("trip state conflict")
	ErrInvalidState = errors.New("invalid trip state transition")
	ErrBadRequest   = errors.New("bad trip request")
)

// Store persists TripRequest aggregates. Update is a compare-and-set on
// StatusVersion: it reports false, not an error, when another writer got
// there first, and bumps the version on success.
type Store interface {
	Create(ctx context.Context, t *TripRequest) error
	Get(ctx context.Context, id uuid.UUID) (*TripRequest, error)
	Update(ctx context.Context, t *TripRequest) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRider(ctx context.Context, riderID uuid.UUID) ([]*TripRequest, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*TripRequest, error)
}

// Apply loads the trip, runs fn against it, and saves with a bounded retry on
// version conflicts, reloading and reapplying each time.
func Apply(ctx context.Context, store Store, id uuid.UUID, fn func(*TripRequest) error) (*TripRequest, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		t, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(t); err != nil {
			return nil, err
		}
		ok, err := store.Update(ctx, t)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
	return nil, ErrConflict
}
