// README: Dispatch service: trip-to-shift assignment and the trip lifecycle
// state machine, including every timeline side effect.
package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/timeline"
	"shuttle/internal/modules/trip"
	"shuttle/internal/notify"
	"shuttle/internal/types"
)

type Service struct {
	trips    trip.Store
	shifts   shift.Store
	partners PartnerStore
	pub      notify.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewService(trips trip.Store, shifts shift.Store, partners PartnerStore, pub notify.Publisher, log *zap.Logger) *Service {
	if partners == nil {
		partners = NopPartnerStore{}
	}
	return &Service{
		trips:    trips,
		shifts:   shifts,
		partners: partners,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AssignTripToShift binds the trip to the shift: roster insert plus a
// PICKUP/DROPOFF event pair on the timeline. Assigning a trip already on this
// shift is a no-op; a trip on another shift is unassigned from it first. The
// two aggregate saves are ordered trip-then-shift with a compensating revert
// of the trip when the shift half cannot be applied.
func (s *Service) AssignTripToShift(ctx context.Context, tripID, shiftID uuid.UUID, position *int) (*trip.TripRequest, error) {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := s.shifts.Get(ctx, shiftID); err != nil {
		return nil, err
	}

	if t.ShiftID != nil {
		if *t.ShiftID == shiftID {
			// already assigned here; nothing to do
			return t, nil
		}
		if err := s.unassignFromShift(ctx, t); err != nil {
			return nil, err
		}
	}

	prevStatus, prevShiftID := t.Status, t.ShiftID

	t, err = trip.Apply(ctx, s.trips, tripID, func(t *trip.TripRequest) error {
		if t.Status.Terminal() {
			return trip.ErrInvalidState
		}
		t.Status = trip.StatusDriverAssigned
		t.ShiftID = &shiftID
		t.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &t.ID, RiderID: &t.RiderID})

	count := t.Passengers()
	pickupDelta, dropoffDelta := count, -count

	sh, err := shift.Apply(ctx, s.shifts, shiftID, func(sh *shift.Shift) error {
		if !sh.HasTrip(tripID) {
			sh.InsertTrip(tripID, position)
		}
		sh.Events = timeline.AddOrUpdate(sh.Events, timeline.Event{
			Action:         timeline.ActionPickup,
			RiderID:        &t.RiderID,
			TripRequestID:  &t.ID,
			PlaceID:        &t.FromLocationID,
			PassengerDelta: &pickupDelta,
		}, uuid.Nil)
		sh.Events = timeline.AddOrUpdate(sh.Events, timeline.Event{
			Action:         timeline.ActionDropoff,
			RiderID:        &t.RiderID,
			TripRequestID:  &t.ID,
			PlaceID:        &t.ToLocationID,
			PassengerDelta: &dropoffDelta,
		}, uuid.Nil)
		return nil
	})
	if err != nil {
		// roll the trip back so the pair of aggregates stays consistent
		if _, revertErr := trip.Apply(ctx, s.trips, tripID, func(t *trip.TripRequest) error {
			t.Status = prevStatus
			t.ShiftID = prevShiftID
			t.LastUpdated = s.now()
			return nil
		}); revertErr != nil {
			s.log.Error("assign rollback failed; trip and shift may disagree",
				zap.String("trip_id", tripID.String()),
				zap.String("shift_id", shiftID.String()),
				zap.Error(revertErr))
		}
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, TripID: &t.ID})
	return t, nil
}

// Advance moves the trip one caller-invoked step through its lifecycle and
// applies the matching timeline side effect on the owning shift.
func (s *Service) Advance(ctx context.Context, tripID uuid.UUID, tr Transition, loc *types.Point) (*trip.TripRequest, error) {
	next, ok := statusFor[tr]
	if !ok {
		return nil, trip.ErrBadRequest
	}

	t, err := trip.Apply(ctx, s.trips, tripID, func(t *trip.TripRequest) error {
		if t.Status.Terminal() {
			return trip.ErrInvalidState
		}
		t.Status = next
		t.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &t.ID, RiderID: &t.RiderID, Action: string(tr)})

	if t.ShiftID == nil {
		s.log.Warn("no shift associated with trip", zap.String("trip_id", tripID.String()), zap.String("transition", string(tr)))
		return t, nil
	}

	now := s.now()
	complete := true
	ev := timeline.Event{
		TripRequestID: &t.ID,
		RiderID:       &t.RiderID,
		Time:          &now,
		Location:      loc,
		Complete:      &complete,
	}

	switch tr {
	case TransitionEnRoute:
		ev.Action = timeline.ActionDriverEnRoute
		ev.PlaceID = &t.FromLocationID
	case TransitionPickupArrival:
		ev.Action = timeline.ActionPickupArrival
		ev.PlaceID = &t.FromLocationID
	case TransitionPickupComplete:
		// patches the PICKUP event created at assignment time in place
		ev.Action = timeline.ActionPickup
	case TransitionDropoffArrival:
		ev.Action = timeline.ActionDropoffArrival
		ev.PlaceID = &t.ToLocationID
	case TransitionDropoffComplete:
		// patches the DROPOFF event created at assignment time in place
		ev.Action = timeline.ActionDropoff
	}

	sh, err := shift.Apply(ctx, s.shifts, *t.ShiftID, func(sh *shift.Shift) error {
		sh.Events = timeline.AddOrUpdate(sh.Events, ev, uuid.Nil)
		return nil
	})
	if err != nil {
		if err == shift.ErrNotFound {
			s.log.Warn("shift associated with trip not found",
				zap.String("trip_id", tripID.String()),
				zap.String("shift_id", t.ShiftID.String()))
			return t, nil
		}
		return nil, err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, TripID: &t.ID, Action: string(tr)})

	if tr == TransitionDropoffComplete {
		s.completePartner(ctx, t, PartnerComplete)
	}
	return t, nil
}

// Cancel sets one of the three cancel statuses and prunes the trip's
// incomplete events from its shift; completed events stay as history.
func (s *Service) Cancel(ctx context.Context, tripID uuid.UUID, reason trip.Status) (*trip.TripRequest, error) {
	if !trip.IsCancelReason(reason) {
		return nil, ErrInvalidReason
	}

	t, err := trip.Apply(ctx, s.trips, tripID, func(t *trip.TripRequest) error {
		if t.Status.Terminal() {
			return trip.ErrInvalidState
		}
		t.Status = reason
		t.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &t.ID, RiderID: &t.RiderID})

	if t.ShiftID != nil {
		dataOnly := reason != trip.StatusCancelByRider
		sh, err := shift.Apply(ctx, s.shifts, *t.ShiftID, func(sh *shift.Shift) error {
			sh.Events = timeline.RemoveForTrip(sh.Events, tripID, true)
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, TripID: &t.ID, DataOnly: dataOnly})
	}

	s.completePartner(ctx, t, PartnerCancelled)
	return t, nil
}

// Delete removes the trip entirely: shift cleanup as for cancel but dropping
// every event and the roster entry, then the trip record itself.
func (s *Service) Delete(ctx context.Context, tripID uuid.UUID) error {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		if err == trip.ErrNotFound {
			return nil
		}
		return err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &t.ID, RiderID: &t.RiderID})

	if t.ShiftID != nil {
		if err := s.unassignFromShift(ctx, t); err != nil && err != shift.ErrNotFound {
			return err
		}
	}

	s.completePartner(ctx, t, PartnerCancelled)
	return s.trips.Delete(ctx, tripID)
}

// SetNeedsAssignment fully unassigns the trip: roster entry and all of its
// events leave the previous shift, and the trip goes back into the pool.
func (s *Service) SetNeedsAssignment(ctx context.Context, tripID uuid.UUID) (*trip.TripRequest, error) {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if t.ShiftID != nil {
		if err := s.unassignFromShift(ctx, t); err != nil && err != shift.ErrNotFound {
			return nil, err
		}
	}

	t, err = trip.Apply(ctx, s.trips, tripID, func(t *trip.TripRequest) error {
		t.Status = trip.StatusNeedsAssignment
		t.ShiftID = nil
		t.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &t.ID, RiderID: &t.RiderID})
	s.log.Warn("trip set to needs assignment", zap.String("trip_id", tripID.String()))
	return t, nil
}

// TripsForDriver returns the trips on the driver's current active shift,
// soonest primary constraint first. The current shift is the newest active
// one containing now, falling back to the newest active one overall.
func (s *Service) TripsForDriver(ctx context.Context, driverID uuid.UUID) ([]*trip.TripRequest, error) {
	shifts, err := s.shifts.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var current, newest *shift.Shift
	for _, sh := range shifts {
		if !sh.Active {
			continue
		}
		if newest == nil || sh.Created.After(newest.Created) {
			newest = sh
		}
		if sh.StartTime != nil && sh.EndTime != nil &&
			sh.StartTime.Before(now) && sh.EndTime.After(now) {
			if current == nil || sh.Created.After(current.Created) {
				current = sh
			}
		}
	}
	if current == nil {
		current = newest
	}
	if current == nil {
		return nil, shift.ErrNotFound
	}

	trips, err := s.trips.ListByIDs(ctx, current.Trips)
	if err != nil {
		return nil, err
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].PrimaryTime().Before(trips[j].PrimaryTime())
	})
	return trips, nil
}

// unassignFromShift removes the trip's roster entry and all of its events
// from the shift it is currently on.
func (s *Service) unassignFromShift(ctx context.Context, t *trip.TripRequest) error {
	sh, err := shift.Apply(ctx, s.shifts, *t.ShiftID, func(sh *shift.Shift) error {
		sh.RemoveTrip(t.ID)
		sh.Events = timeline.RemoveForTrip(sh.Events, t.ID, false)
		return nil
	})
	if err != nil {
		return err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, TripID: &t.ID})
	return nil
}

func (s *Service) completePartner(ctx context.Context, t *trip.TripRequest, status PartnerStatus) {
	if t.PartnerRequestID == nil {
		return
	}
	if err := s.partners.SetStatus(ctx, *t.PartnerRequestID, status); err != nil {
		s.log.Warn("partner request update failed",
			zap.String("partner_request_id", t.PartnerRequestID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
