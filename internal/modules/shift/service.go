// README: Shift service: lifecycle, timeline event ops, driver binding, archival.
package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/modules/timeline"
	"shuttle/internal/notify"
)

type Service struct {
	store Store
	pub   notify.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, pub notify.Publisher, log *zap.Logger) *Service {
	return &Service{store: store, pub: pub, log: log, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateCommand struct {
	DriverID    *uuid.UUID
	ZoneID      uuid.UUID
	StartTime   *time.Time
	EndTime     *time.Time
	StartBuffer *int
	EndBuffer   *int
	CreatedBy   *uuid.UUID
}

// Create seeds every new shift with its SHIFT_START and SHIFT_END markers.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Shift, error) {
	sh := &Shift{
		ID:          uuid.New(),
		DriverID:    cmd.DriverID,
		ZoneID:      cmd.ZoneID,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		StartBuffer: cmd.StartBuffer,
		EndBuffer:   cmd.EndBuffer,
		Active:      true,
		Created:     s.now(),
		CreatedBy:   cmd.CreatedBy,
		Trips:       []uuid.UUID{},
		Events: timeline.Timeline{
			{ID: uuid.New(), Action: timeline.ActionShiftStart},
			{ID: uuid.New(), Action: timeline.ActionShiftEnd},
		},
	}

	if err := s.store.Create(ctx, sh); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, notify.Message{Kind: notify.KindNewShift, ShiftID: &sh.ID})
	return sh, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListActive(ctx context.Context, active bool) ([]*Shift, error) {
	return s.store.ListActive(ctx, active)
}

func (s *Service) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Shift, error) {
	return s.store.ListByDriver(ctx, driverID)
}

// UpdateCommand is a field-level patch; nil fields leave the shift untouched.
type UpdateCommand struct {
	ID          uuid.UUID
	ZoneID      *uuid.UUID
	DriverID    *uuid.UUID
	StartTime   *time.Time
	EndTime     *time.Time
	StartBuffer *int
	EndBuffer   *int
	Active      *bool
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Shift, error) {
	sh, err := Apply(ctx, s.store, cmd.ID, func(sh *Shift) error {
		if cmd.ZoneID != nil {
			sh.ZoneID = *cmd.ZoneID
		}
		if cmd.DriverID != nil {
			sh.DriverID = cmd.DriverID
		}
		if cmd.StartTime != nil {
			sh.StartTime = cmd.StartTime
		}
		if cmd.EndTime != nil {
			sh.EndTime = cmd.EndTime
		}
		if cmd.StartBuffer != nil {
			sh.StartBuffer = cmd.StartBuffer
		}
		if cmd.EndBuffer != nil {
			sh.EndBuffer = cmd.EndBuffer
		}
		if cmd.Active != nil {
			sh.Active = *cmd.Active
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, DataOnly: true})
	return sh, nil
}

// Delete refuses to drop a shift that still has trips on its roster.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sh, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(sh.Trips) > 0 {
		return ErrHasTrips
	}
	return s.store.Delete(ctx, id)
}

// AddOrUpdateEvent upserts an event into the shift's timeline, anchored after
// anchorID when given.
func (s *Service) AddOrUpdateEvent(ctx context.Context, shiftID uuid.UUID, ev timeline.Event, anchorID uuid.UUID) (*Shift, error) {
	sh, err := Apply(ctx, s.store, shiftID, func(sh *Shift) error {
		sh.Events = timeline.AddOrUpdate(sh.Events, ev, anchorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID})
	return sh, nil
}

// MoveEvent repositions an existing event directly after the anchor event.
func (s *Service) MoveEvent(ctx context.Context, shiftID, eventID, anchorID uuid.UUID) (*Shift, error) {
	sh, err := Apply(ctx, s.store, shiftID, func(sh *Shift) error {
		events, err := timeline.Move(sh.Events, eventID, anchorID)
		if err != nil {
			return err
		}
		sh.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID})
	return sh, nil
}

func (s *Service) RemoveEvent(ctx context.Context, shiftID, eventID uuid.UUID) (*Shift, error) {
	sh, err := Apply(ctx, s.store, shiftID, func(sh *Shift) error {
		sh.Events = timeline.Remove(sh.Events, eventID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID})
	return sh, nil
}

// AssignDriver binds a driver without touching the timeline.
func (s *Service) AssignDriver(ctx context.Context, shiftID, driverID uuid.UUID) (*Shift, error) {
	sh, err := Apply(ctx, s.store, shiftID, func(sh *Shift) error {
		sh.DriverID = &driverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, DataOnly: true})
	return sh, nil
}

func (s *Service) RemoveDriver(ctx context.Context, shiftID uuid.UUID) (*Shift, error) {
	sh, err := Apply(ctx, s.store, shiftID, func(sh *Shift) error {
		sh.DriverID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindShiftModified, ShiftID: &sh.ID, DataOnly: true})
	return sh, nil
}

func (s *Service) SetActive(ctx context.Context, shiftID uuid.UUID, active bool) (*Shift, error) {
	return s.Update(ctx, UpdateCommand{ID: shiftID, Active: &active})
}

func (s *Service) SetStartTime(ctx context.Context, shiftID uuid.UUID, t time.Time) (*Shift, error) {
	return s.Update(ctx, UpdateCommand{ID: shiftID, StartTime: &t})
}

func (s *Service) SetEndTime(ctx context.Context, shiftID uuid.UUID, t time.Time) (*Shift, error) {
	return s.Update(ctx, UpdateCommand{ID: shiftID, EndTime: &t})
}

// RunArchiveTicker periodically moves shifts whose end time passed the
// retention threshold into the read-only archive.
func (s *Service) RunArchiveTicker(ctx context.Context, every, retainFor time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.archiveEnded(ctx, retainFor)
		}
	}
}

func (s *Service) archiveEnded(ctx context.Context, retainFor time.Duration) {
	ended, err := s.store.ListEndedBefore(ctx, s.now().Add(-retainFor))
	if err != nil {
		s.log.Warn("shift archive scan failed", zap.Error(err))
		return
	}
	for _, sh := range ended {
		if err := s.store.Archive(ctx, sh); err != nil {
			s.log.Warn("shift archive failed", zap.String("shift_id", sh.ID.String()), zap.Error(err))
			continue
		}
		s.log.Info("shift archived", zap.String("shift_id", sh.ID.String()))
	}
}
