// README: Common value objects shared across modules.
package types

import "time"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ConstraintKind says which end of the trip a time constraint binds.
type ConstraintKind string

const (
	PickupAt  ConstraintKind = "PICKUP_AT"
	DropoffBy ConstraintKind = "DROPOFF_BY"
)

// TimeConstraint is a scheduling bound on a trip request.
type TimeConstraint struct {
	Time time.Time      `json:"time"`
	Kind ConstraintKind `json:"kind"`
}
