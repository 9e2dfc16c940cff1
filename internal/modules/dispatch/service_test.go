// README: Dispatch tests: assignment, lifecycle progression, cancellation.
package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/timeline"
	"shuttle/internal/modules/trip"
	"shuttle/internal/notify"
	"shuttle/internal/types"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	trips    *trip.MemStore
	shifts   *shift.MemStore
	shiftSvc *shift.Service
	partners *fakePartnerStore
}

type fakePartnerStore struct {
	mu     sync.Mutex
	status map[uuid.UUID]PartnerStatus
}

func (f *fakePartnerStore) SetStatus(ctx context.Context, id uuid.UUID, status PartnerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == nil {
		f.status = make(map[uuid.UUID]PartnerStatus)
	}
	f.status[id] = status
	return nil
}

func (f *fakePartnerStore) get(id uuid.UUID) (PartnerStatus, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.status[id]
	return st, ok
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	trips := trip.NewMemStore()
	shifts := shift.NewMemStore()
	partners := &fakePartnerStore{}
	return &fixture{
		svc:      NewService(trips, shifts, partners, notify.Nop{}, zap.NewNop()).WithClock(clock),
		trips:    trips,
		shifts:   shifts,
		shiftSvc: shift.NewService(shifts, notify.Nop{}, zap.NewNop()).WithClock(clock),
		partners: partners,
	}
}

func (f *fixture) mustShift(t *testing.T) *shift.Shift {
	t.Helper()
	sh, err := f.shiftSvc.Create(context.Background(), shift.CreateCommand{ZoneID: uuid.New()})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	return sh
}

func (f *fixture) mustTrip(t *testing.T, passengers int) *trip.TripRequest {
	t.Helper()
	pickup := testNow.Add(time.Hour)
	tr := &trip.TripRequest{
		ID:             uuid.New(),
		RiderID:        uuid.New(),
		FromLocationID: uuid.New(),
		ToLocationID:   uuid.New(),
		Type:           trip.TypePassenger,
		PassengerCount: passengers,
		Primary:        &types.TimeConstraint{Time: pickup, Kind: types.PickupAt},
		Status:         trip.StatusNew,
		Created:        testNow,
		LastUpdated:    testNow,
	}
	if err := f.trips.Create(context.Background(), tr); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return tr
}

func (f *fixture) shiftEvents(t *testing.T, shiftID uuid.UUID) timeline.Timeline {
	t.Helper()
	sh, err := f.shifts.Get(context.Background(), shiftID)
	if err != nil {
		t.Fatalf("get shift: %v", err)
	}
	return sh.Events
}

func assertTripStatus(t *testing.T, f *fixture, tripID uuid.UUID, want trip.Status) {
	t.Helper()
	tr, err := f.trips.Get(context.Background(), tripID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if tr.Status != want {
		t.Fatalf("trip status = %s, want %s", tr.Status, want)
	}
}

func TestAssignTripToShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 2)

	got, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != trip.StatusDriverAssigned {
		t.Fatalf("status = %s, want DRIVER_ASSIGNED", got.Status)
	}
	if got.ShiftID == nil || *got.ShiftID != sh.ID {
		t.Fatal("trip not bound to shift")
	}

	stored, _ := f.shifts.Get(ctx, sh.ID)
	if !stored.HasTrip(tr.ID) {
		t.Fatal("trip missing from shift roster")
	}
	events := stored.Events
	if len(events) != 4 {
		t.Fatalf("shift has %d events, want START + PICKUP + DROPOFF + END", len(events))
	}
	forTrip := events.ForTrip(tr.ID)
	if len(forTrip) != 2 {
		t.Fatalf("trip has %d events, want a PICKUP/DROPOFF pair", len(forTrip))
	}
	for _, ev := range forTrip {
		var wantDelta int
		switch ev.Action {
		case timeline.ActionPickup:
			wantDelta = 2
		case timeline.ActionDropoff:
			wantDelta = -2
		default:
			t.Fatalf("unexpected event %s", ev.Action)
		}
		if ev.PassengerDelta == nil || *ev.PassengerDelta != wantDelta {
			t.Fatalf("%s passenger delta = %v, want %d", ev.Action, ev.PassengerDelta, wantDelta)
		}
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("repeat assign: %v", err)
	}

	stored, _ := f.shifts.Get(ctx, sh.ID)
	if len(stored.Trips) != 1 {
		t.Fatalf("roster has %d entries, want 1", len(stored.Trips))
	}
	if len(stored.Events) != 4 {
		t.Fatalf("shift has %d events, want 4", len(stored.Events))
	}
}

func TestReassignMovesTripBetweenShifts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.mustShift(t)
	second := f.mustShift(t)
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, first.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, second.ID, nil); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	old, _ := f.shifts.Get(ctx, first.ID)
	if old.HasTrip(tr.ID) {
		t.Fatal("trip still on old roster")
	}
	if len(old.Events) != 2 {
		t.Fatalf("old shift has %d events, want only its markers", len(old.Events))
	}
	next, _ := f.shifts.Get(ctx, second.ID)
	if !next.HasTrip(tr.ID) || len(next.Events) != 4 {
		t.Fatalf("new shift roster=%v events=%d", next.Trips, len(next.Events))
	}
}

func TestAssignTerminalTripRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)
	tr.Status = trip.StatusComplete
	if ok, err := f.trips.Update(ctx, tr); err != nil || !ok {
		t.Fatalf("seed status: ok=%v err=%v", ok, err)
	}

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != trip.ErrInvalidState {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestAdvanceFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	steps := []struct {
		transition Transition
		status     trip.Status
		events     int
	}{
		{TransitionEnRoute, trip.StatusDriverEnRoute, 5},
		{TransitionPickupArrival, trip.StatusDriverArrived, 6},
		{TransitionPickupComplete, trip.StatusInProgress, 6},
		{TransitionDropoffArrival, trip.StatusInProgress, 7},
		{TransitionDropoffComplete, trip.StatusComplete, 7},
	}
	loc := &types.Point{Lat: 40.4406, Lng: -79.9959}
	for _, step := range steps {
		got, err := f.svc.Advance(ctx, tr.ID, step.transition, loc)
		if err != nil {
			t.Fatalf("%s: %v", step.transition, err)
		}
		if got.Status != step.status {
			t.Fatalf("%s: status = %s, want %s", step.transition, got.Status, step.status)
		}
		if n := len(f.shiftEvents(t, sh.ID)); n != step.events {
			t.Fatalf("%s: shift has %d events, want %d", step.transition, n, step.events)
		}
	}

	// the pickup and dropoff events were patched complete, not duplicated
	for _, ev := range f.shiftEvents(t, sh.ID).ForTrip(tr.ID) {
		if !ev.IsComplete() {
			t.Fatalf("event %s left incomplete after dropoff", ev.Action)
		}
		if ev.Time == nil {
			t.Fatalf("event %s has no completion time", ev.Action)
		}
	}
}

func TestAdvanceUnknownTransition(t *testing.T) {
	f := newFixture(t)
	tr := f.mustTrip(t, 1)
	if _, err := f.svc.Advance(context.Background(), tr.ID, Transition("TELEPORT"), nil); err != trip.ErrBadRequest {
		t.Fatalf("got %v, want ErrBadRequest", err)
	}
}

func TestAdvanceWithoutShiftStillMovesStatus(t *testing.T) {
	f := newFixture(t)
	tr := f.mustTrip(t, 1)

	got, err := f.svc.Advance(context.Background(), tr.ID, TransitionEnRoute, nil)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got.Status != trip.StatusDriverEnRoute {
		t.Fatalf("status = %s, want DRIVER_EN_ROUTE", got.Status)
	}
}

func TestDropoffCompleteClosesPartnerRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)
	partnerID := uuid.New()
	tr.PartnerRequestID = &partnerID
	if ok, err := f.trips.Update(ctx, tr); err != nil || !ok {
		t.Fatalf("seed partner id: ok=%v err=%v", ok, err)
	}

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.Advance(ctx, tr.ID, TransitionDropoffComplete, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if st, ok := f.partners.get(partnerID); !ok || st != PartnerComplete {
		t.Fatalf("partner status = %v, want COMPLETE", st)
	}
}

func TestCancelKeepsCompletedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, step := range []Transition{TransitionEnRoute, TransitionPickupArrival, TransitionPickupComplete} {
		if _, err := f.svc.Advance(ctx, tr.ID, step, nil); err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}

	got, err := f.svc.Cancel(ctx, tr.ID, trip.StatusCancelByDriverRiderLate)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != trip.StatusCancelByDriverRiderLate {
		t.Fatalf("status = %s", got.Status)
	}

	stored, _ := f.shifts.Get(ctx, sh.ID)
	// roster entry survives; only the unfinished DROPOFF goes
	if !stored.HasTrip(tr.ID) {
		t.Fatal("cancel must keep the roster entry")
	}
	remaining := stored.Events.ForTrip(tr.ID)
	if len(remaining) != 3 {
		t.Fatalf("trip has %d events after cancel, want its 3 completed ones", len(remaining))
	}
	for _, ev := range remaining {
		if !ev.IsComplete() {
			t.Fatalf("incomplete event %s survived the cancel", ev.Action)
		}
	}
}

func TestCancelInvalidReason(t *testing.T) {
	f := newFixture(t)
	tr := f.mustTrip(t, 1)
	if _, err := f.svc.Cancel(context.Background(), tr.ID, trip.StatusComplete); err != ErrInvalidReason {
		t.Fatalf("got %v, want ErrInvalidReason", err)
	}
}

func TestCancelTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.Cancel(ctx, tr.ID, trip.StatusCancelByRider); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, tr.ID, trip.StatusCancelByRider); err != trip.ErrInvalidState {
		t.Fatalf("second cancel: got %v, want ErrInvalidState", err)
	}
}

func TestSetNeedsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := f.svc.SetNeedsAssignment(ctx, tr.ID)
	if err != nil {
		t.Fatalf("needs assignment: %v", err)
	}
	if got.Status != trip.StatusNeedsAssignment || got.ShiftID != nil {
		t.Fatalf("status=%s shiftID=%v", got.Status, got.ShiftID)
	}

	stored, _ := f.shifts.Get(ctx, sh.ID)
	if stored.HasTrip(tr.ID) {
		t.Fatal("roster entry must be removed")
	}
	if len(stored.Events) != 2 {
		t.Fatalf("shift has %d events, want only its markers", len(stored.Events))
	}
}

func TestDeleteTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.mustShift(t)
	tr := f.mustTrip(t, 1)
	partnerID := uuid.New()
	tr.PartnerRequestID = &partnerID
	if ok, err := f.trips.Update(ctx, tr); err != nil || !ok {
		t.Fatalf("seed partner id: ok=%v err=%v", ok, err)
	}

	if _, err := f.svc.AssignTripToShift(ctx, tr.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := f.svc.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.trips.Get(ctx, tr.ID); err != trip.ErrNotFound {
		t.Fatalf("trip should be gone, got %v", err)
	}
	stored, _ := f.shifts.Get(ctx, sh.ID)
	if stored.HasTrip(tr.ID) || len(stored.Events) != 2 {
		t.Fatal("shift must be fully cleaned up")
	}
	if st, _ := f.partners.get(partnerID); st != PartnerCancelled {
		t.Fatalf("partner status = %v, want CANCELLED", st)
	}

	// deleting an unknown trip is not an error
	if err := f.svc.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("delete missing trip: %v", err)
	}
}

func TestTripsForDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driverID := uuid.New()

	start := testNow.Add(-time.Hour)
	end := testNow.Add(7 * time.Hour)
	sh, err := f.shiftSvc.Create(ctx, shift.CreateCommand{
		DriverID:  &driverID,
		ZoneID:    uuid.New(),
		StartTime: &start,
		EndTime:   &end,
	})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}

	later := f.mustTrip(t, 1)
	later.Primary.Time = testNow.Add(3 * time.Hour)
	if ok, err := f.trips.Update(ctx, later); err != nil || !ok {
		t.Fatalf("seed: ok=%v err=%v", ok, err)
	}
	sooner := f.mustTrip(t, 1)

	if _, err := f.svc.AssignTripToShift(ctx, later.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignTripToShift(ctx, sooner.ID, sh.ID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	trips, err := f.svc.TripsForDriver(ctx, driverID)
	if err != nil {
		t.Fatalf("trips for driver: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	if trips[0].ID != sooner.ID || trips[1].ID != later.ID {
		t.Fatal("trips must be sorted by primary constraint time")
	}

	if _, err := f.svc.TripsForDriver(ctx, uuid.New()); err != shift.ErrNotFound {
		t.Fatalf("unknown driver: got %v, want ErrNotFound", err)
	}
}
