// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shuttle/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const tripColumns = `
	id, rider_id, from_location_id, to_location_id, from_zone_id, to_zone_id,
	trip_type, passenger_count, primary_constraint, secondary_constraint,
	shift_id, partner_request_id, special_instructions, status, status_version,
	created, last_updated`

func (s *PGStore) Create(ctx context.Context, t *TripRequest) error {
	primary, err := constraintJSON(t.Primary)
	if err != nil {
		return err
	}
	secondary, err := constraintJSON(t.Secondary)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		t.ID, t.RiderID, t.FromLocationID, t.ToLocationID, t.FromZoneID, t.ToZoneID,
		string(t.Type), t.PassengerCount, primary, secondary,
		t.ShiftID, t.PartnerRequestID, t.SpecialInstructions, string(t.Status), t.StatusVersion,
		t.Created, t.LastUpdated,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*TripRequest, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	return scanTrip(row)
}

func (s *PGStore) Update(ctx context.Context, t *TripRequest) (bool, error) {
	primary, err := constraintJSON(t.Primary)
	if err != nil {
		return false, err
	}
	secondary, err := constraintJSON(t.Secondary)
	if err != nil {
		return false, err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET rider_id = $2,
		    from_location_id = $3,
		    to_location_id = $4,
		    from_zone_id = $5,
		    to_zone_id = $6,
		    trip_type = $7,
		    passenger_count = $8,
		    primary_constraint = $9,
		    secondary_constraint = $10,
		    shift_id = $11,
		    partner_request_id = $12,
		    special_instructions = $13,
		    status = $14,
		    status_version = status_version + 1,
		    last_updated = $15
		WHERE id = $1 AND status_version = $16`,
		t.ID, t.RiderID, t.FromLocationID, t.ToLocationID, t.FromZoneID, t.ToZoneID,
		string(t.Type), t.PassengerCount, primary, secondary,
		t.ShiftID, t.PartnerRequestID, t.SpecialInstructions, string(t.Status),
		t.LastUpdated, t.StatusVersion,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	t.StatusVersion++
	return true, nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	return err
}

func (s *PGStore) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*TripRequest, error) {
	rows, err := s.db.Query(ctx, `SELECT `+tripColumns+` FROM trips WHERE rider_id = $1`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrips(rows)
}

func (s *PGStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*TripRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrips(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*TripRequest, error) {
	var t TripRequest
	var tripType, status string
	var primary, secondary []byte

	err := row.Scan(
		&t.ID, &t.RiderID, &t.FromLocationID, &t.ToLocationID, &t.FromZoneID, &t.ToZoneID,
		&tripType, &t.PassengerCount, &primary, &secondary,
		&t.ShiftID, &t.PartnerRequestID, &t.SpecialInstructions, &status, &t.StatusVersion,
		&t.Created, &t.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Type = RequestType(tripType)
	t.Status = Status(status)
	if t.Primary, err = constraintFromJSON(primary); err != nil {
		return nil, err
	}
	if t.Secondary, err = constraintFromJSON(secondary); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrips(rows pgx.Rows) ([]*TripRequest, error) {
	var out []*TripRequest
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func constraintJSON(c *types.TimeConstraint) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func constraintFromJSON(b []byte) (*types.TimeConstraint, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var c types.TimeConstraint
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
