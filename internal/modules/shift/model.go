// README: Shift aggregate: one driver's work period with its event timeline.
package shift

import (
	"time"

	"github.com/google/uuid"

	"shuttle/internal/modules/timeline"
)

// Shift carries an ordered trip-id list and the event timeline in parallel.
// Events always contain exactly one SHIFT_START and one SHIFT_END marker and
// stay sorted by the timeline ordering rule.
type Shift struct {
	ID          uuid.UUID         `json:"id"`
	DriverID    *uuid.UUID        `json:"driver_id,omitempty"`
	ZoneID      uuid.UUID         `json:"zone_id"`
	StartTime   *time.Time        `json:"start_time,omitempty"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	StartBuffer *int              `json:"start_buffer,omitempty"`
	EndBuffer   *int              `json:"end_buffer,omitempty"`
	Active      bool              `json:"active"`
	Created     time.Time         `json:"created"`
	CreatedBy   *uuid.UUID        `json:"created_by,omitempty"`
	Trips       []uuid.UUID       `json:"trips"`
	Events      timeline.Timeline `json:"events"`
	Version     int               `json:"-"`
}

// HasTrip reports whether the trip id is on the shift's roster.
func (s *Shift) HasTrip(tripID uuid.UUID) bool {
	for _, id := range s.Trips {
		if id == tripID {
			return true
		}
	}
	return false
}

// RemoveTrip drops the trip id from the roster, if present.
func (s *Shift) RemoveTrip(tripID uuid.UUID) {
	out := s.Trips[:0]
	for _, id := range s.Trips {
		if id != tripID {
			out = append(out, id)
		}
	}
	s.Trips = out
}

// InsertTrip places the trip id at position when 0 <= position <= len(trips),
// appending otherwise.
func (s *Shift) InsertTrip(tripID uuid.UUID, position *int) {
	if position == nil || *position < 0 || *position > len(s.Trips) {
		s.Trips = append(s.Trips, tripID)
		return
	}
	p := *position
	s.Trips = append(s.Trips, uuid.Nil)
	copy(s.Trips[p+1:], s.Trips[p:])
	s.Trips[p] = tripID
}
