// README: Trip intake and update; zone resolution and validation live here.
package trip

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/notify"
	"shuttle/internal/types"
)

// ZoneResolver maps a place to its service zone. The place module satisfies it.
type ZoneResolver interface {
	ZoneOf(ctx context.Context, placeID uuid.UUID) (*uuid.UUID, error)
}

type Service struct {
	store Store
	zones ZoneResolver
	pub   notify.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, zones ZoneResolver, pub notify.Publisher, log *zap.Logger) *Service {
	return &Service{
		store: store,
		zones: zones,
		pub:   pub,
		log:   log,
		now:   time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RequestCommand struct {
	RiderID             uuid.UUID
	FromLocationID      uuid.UUID
	ToLocationID        uuid.UUID
	Type                RequestType
	PassengerCount      int
	Primary             *types.TimeConstraint
	Secondary           *types.TimeConstraint
	ShiftID             *uuid.UUID
	PartnerRequestID    *uuid.UUID
	SpecialInstructions string
}

// pastGrace tolerates clock skew between caller and server on intake.
const pastGrace = 30 * time.Second

// Request validates and creates a NEW trip. Assignment to a shift, when a
// shift id was supplied, is the dispatch module's job.
func (s *Service) Request(ctx context.Context, cmd RequestCommand) (*TripRequest, error) {
	if cmd.RiderID == uuid.Nil || cmd.FromLocationID == uuid.Nil || cmd.ToLocationID == uuid.Nil {
		return nil, ErrBadRequest
	}

	now := s.now()
	if cmd.Primary != nil && cmd.Primary.Time.Before(now.Add(-pastGrace)) {
		return nil, ErrBadRequest
	}

	t := &TripRequest{
		ID:                  uuid.New(),
		RiderID:             cmd.RiderID,
		FromLocationID:      cmd.FromLocationID,
		ToLocationID:        cmd.ToLocationID,
		Type:                cmd.Type,
		PassengerCount:      cmd.PassengerCount,
		Primary:             cmd.Primary,
		Secondary:           cmd.Secondary,
		PartnerRequestID:    cmd.PartnerRequestID,
		SpecialInstructions: cmd.SpecialInstructions,
		Status:              StatusNew,
		Created:             now,
		LastUpdated:         now,
	}
	if t.Type == "" {
		t.Type = TypePassenger
	}

	if err := s.setZones(ctx, t); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindNewTrip, TripID: &t.ID, RiderID: &t.RiderID})
	return t, nil
}

// UpdateCommand is a field-level patch; nil fields leave the trip untouched.
type UpdateCommand struct {
	ID                  uuid.UUID
	RiderID             *uuid.UUID
	FromLocationID      *uuid.UUID
	ToLocationID        *uuid.UUID
	Type                *RequestType
	PassengerCount      *int
	Primary             *types.TimeConstraint
	Secondary           *types.TimeConstraint
	Status              *Status
	SpecialInstructions *string
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*TripRequest, error) {
	updated, err := Apply(ctx, s.store, cmd.ID, func(t *TripRequest) error {
		if cmd.RiderID != nil {
			t.RiderID = *cmd.RiderID
		}
		if cmd.FromLocationID != nil {
			t.FromLocationID = *cmd.FromLocationID
		}
		if cmd.ToLocationID != nil {
			t.ToLocationID = *cmd.ToLocationID
		}
		if cmd.Type != nil {
			t.Type = *cmd.Type
		}
		if cmd.PassengerCount != nil {
			t.PassengerCount = *cmd.PassengerCount
		}
		if cmd.Primary != nil {
			t.Primary = cmd.Primary
		}
		if cmd.Secondary != nil {
			t.Secondary = cmd.Secondary
		}
		if cmd.Status != nil {
			t.Status = *cmd.Status
		}
		if cmd.SpecialInstructions != nil {
			t.SpecialInstructions = *cmd.SpecialInstructions
		}
		t.LastUpdated = s.now()
		return s.setZones(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, notify.Message{Kind: notify.KindTripModified, TripID: &updated.ID, RiderID: &updated.RiderID})
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TripRequest, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*TripRequest, error) {
	return s.store.ListByRider(ctx, riderID)
}

func (s *Service) setZones(ctx context.Context, t *TripRequest) error {
	if s.zones == nil {
		return nil
	}
	from, err := s.zones.ZoneOf(ctx, t.FromLocationID)
	if err != nil {
		return err
	}
	to, err := s.zones.ZoneOf(ctx, t.ToLocationID)
	if err != nil {
		return err
	}
	t.FromZoneID = from
	t.ToZoneID = to
	return nil
}
