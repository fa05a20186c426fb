package domain

import "context"

// PricingSlab prices the half-open distance interval [MinKm, MaxKm).
// Invariant: MaxKm > MinKm, fees non-negative.
type PricingSlab struct {
	ID          int64   `json:"id"`
	WarehouseID int64   `json:"warehouseId"`
	Name        string  `json:"name"`
	MinKm       float64 `json:"minKm"`
	MaxKm       float64 `json:"maxKm"`
	FlatFee     float64 `json:"flatFee"`
	PerKmFee    float64 `json:"perKmFee"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"isActive"`
	Version     int     `json:"version"`
}

// Span is the interval width, used for the overlap tie-break.
func (s *PricingSlab) Span() float64 {
	return s.MaxKm - s.MinKm
}

// Covers reports whether the distance falls inside [MinKm, MaxKm).
func (s *PricingSlab) Covers(distanceKm float64) bool {
	return distanceKm >= s.MinKm && distanceKm < s.MaxKm
}

// Snapshot captures the slab state for a version row.
func (s *PricingSlab) Snapshot() JSONB {
	return JSONB{
		"id":           s.ID,
		"warehouse_id": s.WarehouseID,
		"name":         s.Name,
		"min_km":       s.MinKm,
		"max_km":       s.MaxKm,
		"flat_fee":     s.FlatFee,
		"per_km_fee":   s.PerKmFee,
		"currency":     s.Currency,
		"is_active":    s.IsActive,
	}
}

type PricingRepository interface {
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]PricingSlab, error)
	ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]PricingSlab, error)
	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*PricingSlab, error)
	Insert(ctx context.Context, s *PricingSlab) (*PricingSlab, error)
	// Update replaces every mutable field of the slab identified by s.ID
	// and returns the stored row. ErrNotFound when the id is unknown.
	Update(ctx context.Context, s *PricingSlab) (*PricingSlab, error)
	SetActive(ctx context.Context, id int64, active bool) (*PricingSlab, error)
	SetVersion(ctx context.Context, id int64, version int) error
}
