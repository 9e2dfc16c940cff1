// README: Last-known driver position, served out of a TTL cache.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/types"
)

var ErrNotFound = errors.New("no recent location for driver")

// Fix is one reported driver position.
type Fix struct {
	DriverID   uuid.UUID   `json:"driver_id"`
	Position   types.Point `json:"position"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Cache is a keyed store with TTL eviction: a fix older than the window
// simply disappears rather than being served stale.
type Cache interface {
	Set(ctx context.Context, fix Fix) error
	Get(ctx context.Context, driverID uuid.UUID) (*Fix, error)
}
