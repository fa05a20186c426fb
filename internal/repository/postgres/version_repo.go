package postgres

import (
	"context"
	"errors"
	"fmt"

	"zonepilot-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised when two writers race
// for the same (entity_id, version) pair.
const uniqueViolation = "23505"

type versionRepository struct {
	db *pgxpool.Pool
}

func NewVersionRepository(db *pgxpool.Pool) domain.VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) InsertVersion(ctx context.Context, v *domain.Version) (int, error) {
	table, fk, err := versionTable(v.EntityType)
	if err != nil {
		return 0, err
	}

	snapshot, err := json.Marshal(v.Snapshot)
	if err != nil {
		return 0, err
	}

	// The next version number is computed inside the INSERT itself; the
	// unique (entity, version) index turns a lost race into a retryable
	// conflict instead of a duplicate number.
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, warehouse_id, version, action, snapshot, actor_user_id)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM %s WHERE %s = $1),
			$3, $4, $5)
		RETURNING version`, table, fk, table, fk)

	var version int
	err = conn(ctx, r.db).QueryRow(ctx, query,
		v.EntityID, v.WarehouseID, v.Action, snapshot, v.ActorID).
		Scan(&version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.ErrVersionConflict
		}
		return 0, err
	}
	return version, nil
}

func (r *versionRepository) ListZoneVersions(ctx context.Context, zoneID int64) ([]domain.Version, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, zone_id, warehouse_id, version, action, snapshot, actor_user_id, created_at
		FROM zone_versions
		WHERE zone_id = $1
		ORDER BY version DESC`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVersions(rows, domain.EntityZone)
}

func (r *versionRepository) ListPricingVersions(ctx context.Context, filter domain.VersionFilter) ([]domain.Version, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := `
		SELECT id, pricing_id, warehouse_id, version, action, snapshot, actor_user_id, created_at
		FROM pricing_versions`
	args := []any{}
	if filter.SlabID != nil {
		query += ` WHERE pricing_id = $1`
		args = append(args, *filter.SlabID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVersions(rows, domain.EntityPricing)
}

func (r *versionRepository) InsertAudit(ctx context.Context, entry *domain.AuditLog) error {
	before, err := marshalNullable(entry.Before)
	if err != nil {
		return err
	}
	after, err := marshalNullable(entry.After)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).Exec(ctx, `
		INSERT INTO audit_logs (action, entity_type, entity_id, actor_user_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Action, entry.EntityType, entry.EntityID, entry.ActorID, before, after)
	return err
}

func (r *versionRepository) ListAudit(ctx context.Context, limit int, entityType string) ([]domain.AuditLog, error) {
	if limit < 1 || limit > 300 {
		limit = 120
	}

	query := `
		SELECT id, action, entity_type, entity_id, actor_user_id, before, after, created_at
		FROM audit_logs`
	args := []any{}
	if entityType != "" {
		query += ` WHERE entity_type = $1`
		args = append(args, entityType)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT %d`, limit)

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var before, after []byte
		if err := rows.Scan(&a.ID, &a.Action, &a.EntityType, &a.EntityID,
			&a.ActorID, &before, &after, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalNullable(before, &a.Before); err != nil {
			return nil, err
		}
		if err := unmarshalNullable(after, &a.After); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func versionTable(entityType string) (table, fk string, err error) {
	switch entityType {
	case domain.EntityZone:
		return "zone_versions", "zone_id", nil
	case domain.EntityPricing:
		return "pricing_versions", "pricing_id", nil
	default:
		return "", "", fmt.Errorf("unknown entity type %q", entityType)
	}
}

func collectVersions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, entityType string) ([]domain.Version, error) {
	var out []domain.Version
	for rows.Next() {
		var v domain.Version
		var snapshot []byte
		if err := rows.Scan(&v.ID, &v.EntityID, &v.WarehouseID, &v.Version,
			&v.Action, &snapshot, &v.ActorID, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &v.Snapshot); err != nil {
			return nil, err
		}
		v.EntityType = entityType
		out = append(out, v)
	}
	return out, rows.Err()
}

func marshalNullable(j domain.JSONB) ([]byte, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func unmarshalNullable(b []byte, j *domain.JSONB) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, j)
}
