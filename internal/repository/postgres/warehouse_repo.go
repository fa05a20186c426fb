package postgres

import (
	"context"
	"errors"

	"zonepilot-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type warehouseRepository struct {
	db *pgxpool.Pool
}

func NewWarehouseRepository(db *pgxpool.Pool) domain.WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) List(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, name, city, lat, lng, is_active
		FROM warehouses
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Warehouse
	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.City, &w.Lat, &w.Lng, &w.IsActive); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *warehouseRepository) GetByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	var w domain.Warehouse
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, city, lat, lng, is_active
		FROM warehouses
		WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.City, &w.Lat, &w.Lng, &w.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepository) Create(ctx context.Context, wh *domain.Warehouse) (*domain.Warehouse, error) {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO warehouses (name, city, lat, lng, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		wh.Name, wh.City, wh.Lat, wh.Lng, wh.IsActive).
		Scan(&wh.ID)
	if err != nil {
		return nil, err
	}
	return wh, nil
}
