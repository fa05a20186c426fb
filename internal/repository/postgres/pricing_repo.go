package postgres

import (
	"context"
	"errors"

	"zonepilot-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pricingRepository struct {
	db *pgxpool.Pool
}

func NewPricingRepository(db *pgxpool.Pool) domain.PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) ListByWarehouse(ctx context.Context, warehouseID int64) ([]domain.PricingSlab, error) {
	return r.list(ctx, `
		SELECT id, warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version
		FROM pricing_slabs
		WHERE warehouse_id = $1
		ORDER BY min_km ASC, id ASC`, warehouseID)
}

func (r *pricingRepository) ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]domain.PricingSlab, error) {
	return r.list(ctx, `
		SELECT id, warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version
		FROM pricing_slabs
		WHERE warehouse_id = $1 AND is_active = TRUE
		ORDER BY min_km ASC, id ASC`, warehouseID)
}

func (r *pricingRepository) GetByID(ctx context.Context, id int64) (*domain.PricingSlab, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version
		FROM pricing_slabs
		WHERE id = $1`, id)
	s, err := scanSlab(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pricingRepository) Insert(ctx context.Context, s *domain.PricingSlab) (*domain.PricingSlab, error) {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO pricing_slabs (warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		s.WarehouseID, s.Name, s.MinKm, s.MaxKm, s.FlatFee, s.PerKmFee, s.Currency, s.IsActive, s.Version).
		Scan(&s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pricingRepository) Update(ctx context.Context, s *domain.PricingSlab) (*domain.PricingSlab, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE pricing_slabs
		SET warehouse_id = $2, name = $3, min_km = $4, max_km = $5,
			flat_fee = $6, per_km_fee = $7, currency = $8, is_active = $9
		WHERE id = $1
		RETURNING id, warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version`,
		s.ID, s.WarehouseID, s.Name, s.MinKm, s.MaxKm, s.FlatFee, s.PerKmFee, s.Currency, s.IsActive)
	updated, err := scanSlab(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *pricingRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.PricingSlab, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE pricing_slabs
		SET is_active = $2
		WHERE id = $1
		RETURNING id, warehouse_id, name, min_km, max_km, flat_fee, per_km_fee, currency, is_active, version`,
		id, active)
	s, err := scanSlab(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pricingRepository) SetVersion(ctx context.Context, id int64, version int) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE pricing_slabs SET version = $2 WHERE id = $1`, id, version)
	return err
}

func (r *pricingRepository) list(ctx context.Context, query string, args ...any) ([]domain.PricingSlab, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PricingSlab
	for rows.Next() {
		s, err := scanSlab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSlab(row pgx.Row) (*domain.PricingSlab, error) {
	var s domain.PricingSlab
	if err := row.Scan(&s.ID, &s.WarehouseID, &s.Name, &s.MinKm, &s.MaxKm,
		&s.FlatFee, &s.PerKmFee, &s.Currency, &s.IsActive, &s.Version); err != nil {
		return nil, err
	}
	return &s, nil
}
