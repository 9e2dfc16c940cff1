// README: Event model for a shift's ordered timeline.
package timeline

import (
	"time"

	"github.com/google/uuid"

	"shuttle/internal/types"
)

type Action string

const (
	ActionShiftStart     Action = "SHIFT_START"
	ActionShiftEnd       Action = "SHIFT_END"
	ActionDriverEnRoute  Action = "DRIVER_EN_ROUTE"
	ActionPickupArrival  Action = "PICKUP_ARRIVAL"
	ActionPickup         Action = "PICKUP"
	ActionDropoffArrival Action = "DROPOFF_ARRIVAL"
	ActionDropoff        Action = "DROPOFF"
)

// Event is one scheduled or completed occurrence within a shift.
// Nullable fields are pointers so a partial Event can act as a patch:
// only non-nil fields overwrite the stored event on merge.
type Event struct {
	ID             uuid.UUID    `json:"id"`
	Action         Action       `json:"action"`
	Time           *time.Time   `json:"time,omitempty"`
	RiderID        *uuid.UUID   `json:"rider_id,omitempty"`
	TripRequestID  *uuid.UUID   `json:"trip_request_id,omitempty"`
	PlaceID        *uuid.UUID   `json:"place_id,omitempty"`
	PassengerDelta *int         `json:"passenger_delta,omitempty"`
	Location       *types.Point `json:"location,omitempty"`
	Complete       *bool        `json:"complete,omitempty"`
}

// IsComplete treats an unset flag as incomplete.
func (e Event) IsComplete() bool {
	return e.Complete != nil && *e.Complete
}

// Key identity for merge purposes is the (TripRequestID, Action) pair:
// at most one PICKUP and one DROPOFF may exist per trip per shift.
func (e Event) sameKey(other Event) bool {
	return e.Action == other.Action && uuidPtrEqual(e.TripRequestID, other.TripRequestID)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
