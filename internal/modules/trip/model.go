// README: Trip request aggregate and status definitions.
package trip

import (
	"time"

	"github.com/google/uuid"

	"shuttle/internal/types"
)

type Status string

const (
	StatusNew                           Status = "NEW"
	StatusNeedsAssignment               Status = "NEEDS_ASSIGNMENT"
	StatusDriverAssigned                Status = "DRIVER_ASSIGNED"
	StatusDriverEnRoute                 Status = "DRIVER_EN_ROUTE"
	StatusDriverArrived                 Status = "DRIVER_ARRIVED"
	StatusInProgress                    Status = "TRIP_IN_PROGRESS"
	StatusComplete                      Status = "TRIP_COMPLETE"
	StatusCancelByRider                 Status = "CANCEL_BY_RIDER"
	StatusCancelByDriverRiderLate       Status = "CANCEL_BY_DRIVER_RIDER_LATE"
	StatusCancelByDriverRiderNotPresent Status = "CANCEL_BY_DRIVER_RIDER_NOT_PRESENT"
)

type RequestType string

const (
	TypePassenger RequestType = "PASSENGER"
	TypeCourier   RequestType = "COURIER"
)

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusCancelByRider,
		StatusCancelByDriverRiderLate, StatusCancelByDriverRiderNotPresent:
		return true
	}
	return false
}

// IsCancelReason restricts cancellation to exactly the three cancel statuses.
func IsCancelReason(s Status) bool {
	switch s {
	case StatusCancelByRider, StatusCancelByDriverRiderLate, StatusCancelByDriverRiderNotPresent:
		return true
	}
	return false
}

type TripRequest struct {
	ID                   uuid.UUID             `json:"id"`
	RiderID              uuid.UUID             `json:"rider_id"`
	FromLocationID       uuid.UUID             `json:"from_location_id"`
	ToLocationID         uuid.UUID             `json:"to_location_id"`
	FromZoneID           *uuid.UUID            `json:"from_zone_id,omitempty"`
	ToZoneID             *uuid.UUID            `json:"to_zone_id,omitempty"`
	Type                 RequestType           `json:"trip_request_type"`
	PassengerCount       int                   `json:"passenger_count"`
	Primary              *types.TimeConstraint `json:"primary_time_constraint,omitempty"`
	Secondary            *types.TimeConstraint `json:"secondary_time_constraint,omitempty"`
	ShiftID              *uuid.UUID            `json:"shift_id,omitempty"`
	PartnerRequestID     *uuid.UUID            `json:"partner_request_id,omitempty"`
	SpecialInstructions  string                `json:"special_instructions,omitempty"`
	Status               Status                `json:"status"`
	StatusVersion        int                   `json:"-"`
	Created              time.Time             `json:"created"`
	LastUpdated          time.Time             `json:"last_updated"`
}

// Passengers treats an unset count as a single rider.
func (t *TripRequest) Passengers() int {
	if t.PassengerCount <= 0 {
		return 1
	}
	return t.PassengerCount
}

// farFuture stands in for an unset primary constraint so unscheduled trips
// sort after every scheduled one.
var farFuture = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)

// PrimaryTime returns the primary constraint's time, or a far-future sentinel.
func (t *TripRequest) PrimaryTime() time.Time {
	if t.Primary == nil {
		return farFuture
	}
	return t.Primary.Time
}
