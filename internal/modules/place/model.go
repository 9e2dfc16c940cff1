// README: Place model: a named location inside a service zone.
package place

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/types"
)

var (
	ErrNotFound   = errors.New("place not found")
	ErrBadRequest = errors.New("bad place request")
)

type Place struct {
	ID       uuid.UUID    `json:"id"`
	ZoneID   *uuid.UUID   `json:"zone_id,omitempty"`
	Name     string       `json:"name"`
	Address  string       `json:"address,omitempty"`
	Position *types.Point `json:"position,omitempty"`
	Created  time.Time    `json:"created"`
}

type Store interface {
	Create(ctx context.Context, p *Place) error
	Get(ctx context.Context, id uuid.UUID) (*Place, error)
	Update(ctx context.Context, p *Place) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*Place, error)
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}
