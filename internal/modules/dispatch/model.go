// README: Transition vocabulary for trip progress and partner request linkage.
package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shuttle/internal/modules/trip"
)

var ErrInvalidReason = errors.New("invalid cancellation reason")

// Transition names one caller-invoked step of a trip's progress. Assignment,
// cancellation, and unassignment are separate operations.
type Transition string

const (
	TransitionEnRoute         Transition = "DRIVER_EN_ROUTE"
	TransitionPickupArrival   Transition = "PICKUP_ARRIVAL"
	TransitionPickupComplete  Transition = "PICKUP_COMPLETE"
	TransitionDropoffArrival  Transition = "DROPOFF_ARRIVAL"
	TransitionDropoffComplete Transition = "DROPOFF_COMPLETE"
)

// statusFor maps each progress transition to the trip status it produces.
var statusFor = map[Transition]trip.Status{
	TransitionEnRoute:         trip.StatusDriverEnRoute,
	TransitionPickupArrival:   trip.StatusDriverArrived,
	TransitionPickupComplete:  trip.StatusInProgress,
	TransitionDropoffArrival:  trip.StatusInProgress,
	TransitionDropoffComplete: trip.StatusComplete,
}

type PartnerStatus string

const (
	PartnerComplete  PartnerStatus = "COMPLETE"
	PartnerCancelled PartnerStatus = "CANCELLED"
)

// PartnerStore updates the partner transportation request linked to a trip.
// The partner system is an external collaborator; failures are logged, not
// surfaced.
type PartnerStore interface {
	SetStatus(ctx context.Context, id uuid.UUID, status PartnerStatus) error
}

// NopPartnerStore is used when no partner integration is configured.
type NopPartnerStore struct{}

func (NopPartnerStore) SetStatus(context.Context, uuid.UUID, PartnerStatus) error { return nil }
