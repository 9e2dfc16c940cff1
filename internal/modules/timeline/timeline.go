// README: Ordering and upsert rules for shift timelines. Pure, no I/O.
package timeline

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound  = errors.New("event not found in timeline")
	ErrAnchorNotFound = errors.New("anchor event not found in timeline")
	ErrSelfAnchor     = errors.New("event cannot anchor to itself")
)

// Timeline is a shift's event list. Operations return the updated slice;
// callers assign it back onto the owning shift.
type Timeline []Event

// farFuture stands in for an unset event time so unplaced events sort after
// every timed event but before SHIFT_END.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// compare orders SHIFT_START first, SHIFT_END last, everything else by time
// ascending with unset times last, and completed events before incomplete ones
// on equal times. It deliberately reports remaining ties as equal so a stable
// sort never reorders an unchanged list.
func compare(a, b Event) int {
	if a.Action == ActionShiftStart {
		return -1
	}
	if b.Action == ActionShiftStart {
		return 1
	}
	if a.Action == ActionShiftEnd {
		return 1
	}
	if b.Action == ActionShiftEnd {
		return -1
	}

	at, bt := farFuture, farFuture
	if a.Time != nil {
		at = *a.Time
	}
	if b.Time != nil {
		bt = *b.Time
	}
	if at.Before(bt) {
		return -1
	}
	if at.After(bt) {
		return 1
	}

	ac, bc := a.IsComplete(), b.IsComplete()
	if ac == bc {
		return 0
	}
	if ac {
		return -1
	}
	return 1
}

// Sort re-sorts the timeline in place. Sorting twice yields the same order.
func (tl Timeline) Sort() {
	sort.SliceStable(tl, func(i, j int) bool {
		return compare(tl[i], tl[j]) < 0
	})
}

// IndexOf returns the position of the event with the given id, or -1.
func (tl Timeline) IndexOf(id uuid.UUID) int {
	for i := range tl {
		if tl[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the position of the event matching ev's (trip, action) key, or -1.
func (tl Timeline) find(ev Event) int {
	for i := range tl {
		if tl[i].sameKey(ev) {
			return i
		}
	}
	return -1
}

// ForTrip returns the events referencing the given trip request.
func (tl Timeline) ForTrip(tripID uuid.UUID) []Event {
	var out []Event
	for _, e := range tl {
		if e.TripRequestID != nil && *e.TripRequestID == tripID {
			out = append(out, e)
		}
	}
	return out
}

// AddOrUpdate upserts ev into the timeline. A zero anchorID means no anchor.
//
// With an anchor present in the list, ev's time is pinned to one nanosecond
// past the anchor's (when the anchor has one) and ev is re-inserted just after
// it, so the global sort keeps it there. With or without an anchor, an
// existing event with the same (trip, action) key absorbs ev's non-nil fields
// instead of a duplicate being added. The timeline is re-sorted before return.
func AddOrUpdate(tl Timeline, ev Event, anchorID uuid.UUID) Timeline {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	if anchorID != uuid.Nil {
		if p := tl.IndexOf(anchorID); p != -1 {
			anchor := tl[p]
			if anchor.Time != nil {
				t := anchor.Time.Add(time.Nanosecond)
				ev.Time = &t
			}

			if existing := tl.find(ev); existing != -1 {
				if existing < p {
					p--
				}
				tl = append(tl[:existing], tl[existing+1:]...)
			}
			tl = append(tl, Event{})
			copy(tl[p+2:], tl[p+1:])
			tl[p+1] = ev
		}
	}

	if existing := tl.find(ev); existing != -1 {
		merge(&tl[existing], ev)
	} else {
		tl = append(tl, ev)
	}

	tl.Sort()
	return tl
}

// Move repositions an existing event directly after the anchor event.
func Move(tl Timeline, eventID, anchorID uuid.UUID) (Timeline, error) {
	if eventID == anchorID {
		return tl, ErrSelfAnchor
	}
	if tl.IndexOf(anchorID) == -1 {
		return tl, ErrAnchorNotFound
	}
	p := tl.IndexOf(eventID)
	if p == -1 {
		return tl, ErrEventNotFound
	}
	return AddOrUpdate(tl, tl[p], anchorID), nil
}

// Remove drops the event with the given id, if present.
func Remove(tl Timeline, eventID uuid.UUID) Timeline {
	out := tl[:0]
	for _, e := range tl {
		if e.ID != eventID {
			out = append(out, e)
		}
	}
	return out
}

// RemoveForTrip drops every event referencing the trip. With incompleteOnly
// set, completed events stay behind as a historical record.
func RemoveForTrip(tl Timeline, tripID uuid.UUID, incompleteOnly bool) Timeline {
	out := make(Timeline, 0, len(tl))
	for _, e := range tl {
		if e.TripRequestID != nil && *e.TripRequestID == tripID &&
			(!incompleteOnly || !e.IsComplete()) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// merge copies ev's non-nil fields onto dst, last writer wins per field.
func merge(dst *Event, ev Event) {
	if ev.Time != nil {
		dst.Time = ev.Time
	}
	if ev.Action != "" {
		dst.Action = ev.Action
	}
	if ev.RiderID != nil {
		dst.RiderID = ev.RiderID
	}
	if ev.TripRequestID != nil {
		dst.TripRequestID = ev.TripRequestID
	}
	if ev.PlaceID != nil {
		dst.PlaceID = ev.PlaceID
	}
	if ev.PassengerDelta != nil {
		dst.PassengerDelta = ev.PassengerDelta
	}
	if ev.Location != nil {
		dst.Location = ev.Location
	}
	if ev.Complete != nil {
		dst.Complete = ev.Complete
	}
}
