package domain

import (
	"context"
	"time"
)

// Version is an immutable snapshot of a zone or slab taken at the moment
// of a mutation. Append-only; version numbers increase strictly per entity.
type Version struct {
	ID          int64     `json:"id"`
	EntityType  string    `json:"entityType"` // ZONE / PRICING
	EntityID    int64     `json:"entityId"`
	WarehouseID int64     `json:"warehouseId"`
	Version     int       `json:"version"`
	Action      string    `json:"action"`
	Snapshot    JSONB     `json:"snapshot"`
	ActorID     *int64    `json:"actorId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditLog is the flat cross-entity index over the same mutation stream.
// Exactly one audit row per version row, written in the same transaction.
type AuditLog struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   *int64    `json:"entityId,omitempty"`
	ActorID    *int64    `json:"actorId,omitempty"`
	Before     JSONB     `json:"before,omitempty"`
	After      JSONB     `json:"after,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VersionFilter pages through pricing versions, optionally per slab.
type VersionFilter struct {
	Page   int
	Limit  int
	SlabID *int64
}

type VersionRepository interface {
	// InsertVersion assigns 1 + max(existing version for the entity)
	// atomically with the write and returns that number. A losing race
	// surfaces as ErrVersionConflict.
	InsertVersion(ctx context.Context, v *Version) (int, error)
	// ListZoneVersions returns a zone's versions, newest first.
	ListZoneVersions(ctx context.Context, zoneID int64) ([]Version, error)
	// ListPricingVersions returns pricing versions, newest first, paged.
	ListPricingVersions(ctx context.Context, filter VersionFilter) ([]Version, error)
	InsertAudit(ctx context.Context, entry *AuditLog) error
	// ListAudit returns audit rows newest first, bounded by limit,
	// optionally filtered by entity type ("" for all).
	ListAudit(ctx context.Context, limit int, entityType string) ([]AuditLog, error)
}
