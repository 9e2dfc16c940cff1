// README: Place service; geocodes on create and resolves zones for trips.
package place

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/types"
)

type Service struct {
	store    Store
	geocoder Geocoder
	log      *zap.Logger
	now      func() time.Time
}

// NewService accepts a nil geocoder; callers then must supply coordinates.
func NewService(store Store, geocoder Geocoder, log *zap.Logger) *Service {
	return &Service{store: store, geocoder: geocoder, log: log, now: time.Now}
}

type CreateCommand struct {
	ZoneID   *uuid.UUID
	Name     string
	Address  string
	Position *types.Point
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Place, error) {
	if cmd.Name == "" {
		return nil, ErrBadRequest
	}

	p := &Place{
		ID:       uuid.New(),
		ZoneID:   cmd.ZoneID,
		Name:     cmd.Name,
		Address:  cmd.Address,
		Position: cmd.Position,
		Created:  s.now(),
	}

	if p.Position == nil && p.Address != "" && s.geocoder != nil {
		pos, err := s.geocoder.Geocode(ctx, p.Address)
		if err != nil {
			s.log.Warn("geocode failed", zap.String("address", p.Address), zap.Error(err))
		} else {
			p.Position = &pos
		}
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Place, error) {
	return s.store.Get(ctx, id)
}

// UpdateCommand is a field-level patch; nil fields leave the place untouched.
type UpdateCommand struct {
	ID       uuid.UUID
	ZoneID   *uuid.UUID
	Name     *string
	Address  *string
	Position *types.Point
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Place, error) {
	p, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if cmd.ZoneID != nil {
		p.ZoneID = cmd.ZoneID
	}
	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	if cmd.Position != nil {
		p.Position = cmd.Position
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*Place, error) {
	return s.store.ListByZone(ctx, zoneID)
}

// ZoneOf satisfies the trip module's ZoneResolver.
func (s *Service) ZoneOf(ctx context.Context, placeID uuid.UUID) (*uuid.UUID, error) {
	p, err := s.store.Get(ctx, placeID)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.ZoneID, nil
}
