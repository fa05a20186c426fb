package domain

import (
	"context"
	"time"
)

// Quote is the ephemeral result of a pricing decision. Price and SlabName
// stay nil when the destination is serviceable but no slab covers the
// distance; that is a valid outcome, not an error.
type Quote struct {
	Serviceable bool     `json:"serviceable"`
	MatchedZone *string  `json:"matchedZone"`
	DistanceKm  float64  `json:"distanceKm"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	SlabName    *string  `json:"slabName"`
}

// Clone deep-copies the quote, pointer fields included, so a cached
// instance can be handed out without aliasing.
func (q *Quote) Clone() *Quote {
	cp := *q
	if q.MatchedZone != nil {
		v := *q.MatchedZone
		cp.MatchedZone = &v
	}
	if q.Price != nil {
		v := *q.Price
		cp.Price = &v
	}
	if q.SlabName != nil {
		v := *q.SlabName
		cp.SlabName = &v
	}
	return &cp
}

// QuoteLog is the analytics trail of served quotes. Written
// fire-and-forget; never read back by the pricing logic.
type QuoteLog struct {
	ID            int64     `json:"id"`
	WarehouseID   int64     `json:"warehouseId"`
	DestLat       float64   `json:"destLat"`
	DestLng       float64   `json:"destLng"`
	MatchedZoneID *int64    `json:"matchedZoneId"`
	DistanceKm    float64   `json:"distanceKm"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AnalyticsSummary aggregates a warehouse's quote stream.
type AnalyticsSummary struct {
	WarehouseID       int64   `json:"warehouseId"`
	TotalQuotes       int64   `json:"totalQuotes"`
	ServiceableQuotes int64   `json:"serviceableQuotes"`
	AvgDistanceKm     float64 `json:"avgDistanceKm"`
	AvgPrice          float64 `json:"avgPrice"`
	TopZoneID         *int64  `json:"topZoneId"`
	TopZoneHits       int64   `json:"topZoneHits"`
}

type QuoteLogRepository interface {
	Insert(ctx context.Context, entry *QuoteLog) error
	Summary(ctx context.Context, warehouseID int64) (*AnalyticsSummary, error)
	// Recent returns the newest quote logs, bounded by limit, optionally
	// filtered by warehouse (nil for all).
	Recent(ctx context.Context, limit int, warehouseID *int64) ([]QuoteLog, error)
}
