// README: Active-trip selection heuristic for "what is this rider doing now".
package trip

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// activeWindow bounds how far a trip's schedule or its last activity may sit
// from "now" while the trip still counts as in progress.
const activeWindow = 2 * time.Hour

var activeStatuses = map[Status]bool{
	StatusNew:                           true,
	StatusDriverAssigned:                true,
	StatusDriverEnRoute:                 true,
	StatusDriverArrived:                 true,
	StatusInProgress:                    true,
	StatusCancelByDriverRiderLate:       true,
	StatusCancelByDriverRiderNotPresent: true,
}

// isActive: a trip is active when its status qualifies and either its primary
// time constraint is within the window of now, or it saw recent activity and
// has moved past NEW. A trip running late stays active well past its original
// window through the lastUpdated clause.
func isActive(t *TripRequest, now time.Time) bool {
	if !activeStatuses[t.Status] {
		return false
	}
	if absDuration(now.Sub(t.PrimaryTime())) <= activeWindow {
		return true
	}
	return t.Status != StatusNew && absDuration(now.Sub(t.LastUpdated)) <= activeWindow
}

// SelectActive returns the rider's single in-progress trip, or ErrNotFound
// when none qualifies. Ties break to the earliest primary time constraint,
// unset constraints last.
func (s *Service) SelectActive(ctx context.Context, riderID uuid.UUID) (*TripRequest, error) {
	trips, err := s.store.ListByRider(ctx, riderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var best *TripRequest
	for _, t := range trips {
		if !isActive(t, now) {
			continue
		}
		if best == nil || t.PrimaryTime().Before(best.PrimaryTime()) {
			best = t
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

// Upcoming lists the rider's future, unfinished trips excluding the active
// one, soonest first.
func (s *Service) Upcoming(ctx context.Context, riderID uuid.UUID) ([]*TripRequest, error) {
	trips, err := s.store.ListByRider(ctx, riderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var activeID uuid.UUID
	if active, err := s.SelectActive(ctx, riderID); err == nil {
		activeID = active.ID
	}

	out := make([]*TripRequest, 0, len(trips))
	for _, t := range trips {
		if t.ID == activeID || t.Status == StatusComplete || !t.PrimaryTime().After(now) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PrimaryTime().Before(out[j].PrimaryTime())
	})
	return out, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
