// README: Place store backed by PostgreSQL.
package place

import (
	"context"
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

func (s *PGStore) Create(ctx context.Context, p *Place) error {
	var lat, lng *float64
	if p.Position != nil {
		lat, lng = &p.Position.Lat, &p.Position.Lng
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO places (id, zone_id, name, address, lat, lng, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ZoneID, p.Name, p.Address, lat, lng, p.Created,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Place, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, zone_id, name, address, lat, lng, created
		FROM places WHERE id = $1`, id)
	return scanPlace(row)
}

func (s *PGStore) Update(ctx context.Context, p *Place) error {
	var lat, lng *float64
	if p.Position != nil {
		lat, lng = &p.Position.Lat, &p.Position.Lng
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE places
		SET zone_id = $2, name = $3, address = $4, lat = $5, lng = $6
		WHERE id = $1`,
		p.ID, p.ZoneID, p.Name, p.Address, lat, lng,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	return err
}

func (s *PGStore) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*Place, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, zone_id, name, address, lat, lng, created
		FROM places WHERE zone_id = $1`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*Place, error) {
	var p Place
	var lat, lng *float64

	err := row.Scan(&p.ID, &p.ZoneID, &p.Name, &p.Address, &lat, &lng, &p.Created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		p.Position = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &p, nil
}
