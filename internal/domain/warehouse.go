package domain

import (
	"context"

	"zonepilot-backend/pkg/geo"
)

// Warehouse is the origin every zone, slab and quote hangs off. Once a
// quote references it, it is soft-deactivated, never deleted.
type Warehouse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	IsActive bool    `json:"isActive"`
}

// Origin returns the warehouse's geodesic origin.
func (w *Warehouse) Origin() geo.Point {
	return geo.Point{Lat: w.Lat, Lng: w.Lng}
}

type WarehouseRepository interface {
	// List returns active and inactive warehouses, id ascending.
	List(ctx context.Context) ([]Warehouse, error)
	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*Warehouse, error)
	Create(ctx context.Context, wh *Warehouse) (*Warehouse, error)
}
