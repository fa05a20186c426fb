package postgres

import (
	"context"
	"errors"

	"zonepilot-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type zoneRepository struct {
	db *pgxpool.Pool
}

func NewZoneRepository(db *pgxpool.Pool) domain.ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) ListByWarehouse(ctx context.Context, warehouseID int64) ([]domain.Zone, error) {
	return r.list(ctx, `
		SELECT id, warehouse_id, name, color, coords, is_active, version
		FROM zones
		WHERE warehouse_id = $1
		ORDER BY id ASC`, warehouseID)
}

func (r *zoneRepository) ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]domain.Zone, error) {
	return r.list(ctx, `
		SELECT id, warehouse_id, name, color, coords, is_active, version
		FROM zones
		WHERE warehouse_id = $1 AND is_active = TRUE
		ORDER BY id ASC`, warehouseID)
}

func (r *zoneRepository) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, warehouse_id, name, color, coords, is_active, version
		FROM zones
		WHERE id = $1`, id)
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (r *zoneRepository) Insert(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	coords, err := json.Marshal(z.Coords)
	if err != nil {
		return nil, err
	}
	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO zones (warehouse_id, name, color, coords, is_active, version)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		z.WarehouseID, z.Name, z.Color, coords, z.IsActive, z.Version).
		Scan(&z.ID)
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (r *zoneRepository) Update(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	coords, err := json.Marshal(z.Coords)
	if err != nil {
		return nil, err
	}
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE zones
		SET warehouse_id = $2, name = $3, color = $4, coords = $5, is_active = $6
		WHERE id = $1
		RETURNING id, warehouse_id, name, color, coords, is_active, version`,
		z.ID, z.WarehouseID, z.Name, z.Color, coords, z.IsActive)
	updated, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *zoneRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Zone, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE zones
		SET is_active = $2
		WHERE id = $1
		RETURNING id, warehouse_id, name, color, coords, is_active, version`,
		id, active)
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (r *zoneRepository) SetVersion(ctx context.Context, id int64, version int) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE zones SET version = $2 WHERE id = $1`, id, version)
	return err
}

func (r *zoneRepository) list(ctx context.Context, query string, args ...any) ([]domain.Zone, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func scanZone(row pgx.Row) (*domain.Zone, error) {
	var z domain.Zone
	var coords []byte
	if err := row.Scan(&z.ID, &z.WarehouseID, &z.Name, &z.Color, &coords, &z.IsActive, &z.Version); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(coords, &z.Coords); err != nil {
		return nil, err
	}
	return &z, nil
}
