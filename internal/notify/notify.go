// README: Fire-and-forget domain event publishing for external consumers.
package notify

import (
	"context"

	"github.com/google/uuid"
)

type Kind string

const (
	KindNewTrip       Kind = "trip.new"
	KindTripModified  Kind = "trip.modified"
	KindNewShift      Kind = "shift.new"
	KindShiftModified Kind = "shift.modified"
)

// Message is a domain event. DataOnly marks shift changes that do not alter
// the timeline shape, so consumers can skip re-rendering schedules.
type Message struct {
	Kind     Kind       `json:"kind"`
	TripID   *uuid.UUID `json:"trip_id,omitempty"`
	ShiftID  *uuid.UUID `json:"shift_id,omitempty"`
	RiderID  *uuid.UUID `json:"rider_id,omitempty"`
	Action   string     `json:"action,omitempty"`
	DataOnly bool       `json:"data_only,omitempty"`
}

// Publisher delivers domain events to external collaborators. Delivery is
// best effort: implementations log failures and never surface them, so a
// broker outage cannot roll back a completed mutation.
type Publisher interface {
	Publish(ctx context.Context, m Message)
}

// Nop drops every message; used in tests and when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Message) {}
