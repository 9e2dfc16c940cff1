// README: Shift store backed by PostgreSQL; events held as JSONB.
package shift

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const shiftColumns = `
	id, driver_id, zone_id, start_time, end_time, start_buffer, end_buffer,
	active, created, created_by, trips, events, version`

func (s *PGStore) Create(ctx context.Context, sh *Shift) error {
	events, err := json.Marshal(sh.Events)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO shifts (`+shiftColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sh.ID, sh.DriverID, sh.ZoneID, sh.StartTime, sh.EndTime, sh.StartBuffer, sh.EndBuffer,
		sh.Active, sh.Created, sh.CreatedBy, sh.Trips, events, sh.Version,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	sh, err := scanShift(s.db.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
	if errors.Is(err, ErrNotFound) {
		// ended shifts live on read-only in the archive
		return scanShift(s.db.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift_archive WHERE id = $1`, id))
	}
	return sh, err
}

func (s *PGStore) Update(ctx context.Context, sh *Shift) (bool, error) {
	events, err := json.Marshal(sh.Events)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE shifts
		SET driver_id = $2,
		    zone_id = $3,
		    start_time = $4,
		    end_time = $5,
		    start_buffer = $6,
		    end_buffer = $7,
		    active = $8,
		    created_by = $9,
		    trips = $10,
		    events = $11,
		    version = version + 1
		WHERE id = $1 AND version = $12`,
		sh.ID, sh.DriverID, sh.ZoneID, sh.StartTime, sh.EndTime, sh.StartBuffer, sh.EndBuffer,
		sh.Active, sh.CreatedBy, sh.Trips, events, sh.Version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	sh.Version++
	return true, nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	return err
}

func (s *PGStore) ListActive(ctx context.Context, active bool) ([]*Shift, error) {
	rows, err := s.db.Query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE active = $1`, active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Shift, error) {
	rows, err := s.db.Query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE driver_id = $1`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

// Archive moves the shift into the read-only archive in one transaction.
func (s *PGStore) Archive(ctx context.Context, sh *Shift) error {
	events, err := json.Marshal(sh.Events)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO shift_archive (`+shiftColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		sh.ID, sh.DriverID, sh.ZoneID, sh.StartTime, sh.EndTime, sh.StartBuffer, sh.EndBuffer,
		sh.Active, sh.Created, sh.CreatedBy, sh.Trips, events, sh.Version,
	)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, sh.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*Shift, error) {
	rows, err := s.db.Query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE end_time IS NOT NULL AND end_time < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*Shift, error) {
	var sh Shift
	var events []byte

	err := row.Scan(
		&sh.ID, &sh.DriverID, &sh.ZoneID, &sh.StartTime, &sh.EndTime, &sh.StartBuffer, &sh.EndBuffer,
		&sh.Active, &sh.Created, &sh.CreatedBy, &sh.Trips, &events, &sh.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(events) > 0 {
		if err := json.Unmarshal(events, &sh.Events); err != nil {
			return nil, err
		}
	}
	if sh.Trips == nil {
		sh.Trips = []uuid.UUID{}
	}
	return &sh, nil
}

func scanShifts(rows pgx.Rows) ([]*Shift, error) {
	var out []*Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}
