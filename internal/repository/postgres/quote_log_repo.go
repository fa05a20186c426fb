package postgres

import (
	"context"
	"errors"
	"fmt"

	"zonepilot-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type quoteLogRepository struct {
	db *pgxpool.Pool
}

func NewQuoteLogRepository(db *pgxpool.Pool) domain.QuoteLogRepository {
	return &quoteLogRepository{db: db}
}

func (r *quoteLogRepository) Insert(ctx context.Context, entry *domain.QuoteLog) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO quote_logs (warehouse_id, dest_lat, dest_lng, matched_zone_id, distance_km, price, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.WarehouseID, entry.DestLat, entry.DestLng, entry.MatchedZoneID,
		entry.DistanceKm, entry.Price, entry.Currency)
	return err
}

func (r *quoteLogRepository) Summary(ctx context.Context, warehouseID int64) (*domain.AnalyticsSummary, error) {
	s := &domain.AnalyticsSummary{WarehouseID: warehouseID}

	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE matched_zone_id IS NOT NULL),
		       COALESCE(ROUND(AVG(distance_km)::numeric, 3), 0),
		       COALESCE(ROUND(AVG(price)::numeric, 2), 0)
		FROM quote_logs
		WHERE warehouse_id = $1`, warehouseID).
		Scan(&s.TotalQuotes, &s.ServiceableQuotes, &s.AvgDistanceKm, &s.AvgPrice)
	if err != nil {
		return nil, err
	}

	err = conn(ctx, r.db).QueryRow(ctx, `
		SELECT matched_zone_id, COUNT(*) AS hits
		FROM quote_logs
		WHERE warehouse_id = $1 AND matched_zone_id IS NOT NULL
		GROUP BY matched_zone_id
		ORDER BY hits DESC
		LIMIT 1`, warehouseID).
		Scan(&s.TopZoneID, &s.TopZoneHits)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s, nil
}

func (r *quoteLogRepository) Recent(ctx context.Context, limit int, warehouseID *int64) ([]domain.QuoteLog, error) {
	if limit < 1 || limit > 200 {
		limit = 80
	}

	query := `
		SELECT id, warehouse_id, dest_lat, dest_lng, matched_zone_id, distance_km, price, currency, created_at
		FROM quote_logs`
	args := []any{}
	if warehouseID != nil {
		query += ` WHERE warehouse_id = $1`
		args = append(args, *warehouseID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT %d`, limit)

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.QuoteLog
	for rows.Next() {
		var q domain.QuoteLog
		if err := rows.Scan(&q.ID, &q.WarehouseID, &q.DestLat, &q.DestLng,
			&q.MatchedZoneID, &q.DistanceKm, &q.Price, &q.Currency, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
