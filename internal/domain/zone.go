package domain

import (
	"context"

	"zonepilot-backend/pkg/geo"
)

// Zone is a closed delivery polygon owned by a warehouse. Coords is a
// closed ring (first point equals last, at least 3 distinct vertices);
// validation happens before anything reaches the repository.
type Zone struct {
	ID          int64       `json:"id"`
	WarehouseID int64       `json:"warehouseId"`
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Coords      []geo.Point `json:"coords"`
	IsActive    bool        `json:"isActive"`
	Version     int         `json:"version"`
}

// Snapshot captures the zone state for a version row.
func (z *Zone) Snapshot() JSONB {
	coords := make([]interface{}, len(z.Coords))
	for i, p := range z.Coords {
		coords[i] = []interface{}{p.Lat, p.Lng}
	}
	return JSONB{
		"id":           z.ID,
		"warehouse_id": z.WarehouseID,
		"name":         z.Name,
		"color":        z.Color,
		"coords":       coords,
		"is_active":    z.IsActive,
	}
}

type ZoneRepository interface {
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]Zone, error)
	ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]Zone, error)
	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*Zone, error)
	Insert(ctx context.Context, z *Zone) (*Zone, error)
	// Update replaces every mutable field of the zone identified by z.ID
	// and returns the stored row. ErrNotFound when the id is unknown.
	Update(ctx context.Context, z *Zone) (*Zone, error)
	SetActive(ctx context.Context, id int64, active bool) (*Zone, error)
	SetVersion(ctx context.Context, id int64, version int) error
}
