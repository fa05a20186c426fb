package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"zonepilot-backend/internal/domain"
	gencache "zonepilot-backend/internal/infrastructure/cache"
	"zonepilot-backend/pkg/cache"
	"zonepilot-backend/pkg/geo"
	"zonepilot-backend/pkg/logger"
)

const quoteLogTimeout = 5 * time.Second

// QuoteUsecase orchestrates zone matching, distance and slab resolution
// behind a generation-stamped quote cache.
type QuoteUsecase struct {
	warehouseRepo domain.WarehouseRepository
	zones         *ZoneUsecase
	pricing       *PricingUsecase
	quoteLogs     domain.QuoteLogRepository
	cache         cache.CacheService
	gens          *gencache.Generations
	cacheTTL      time.Duration
}

func NewQuoteUsecase(
	warehouseRepo domain.WarehouseRepository,
	zones *ZoneUsecase,
	pricing *PricingUsecase,
	quoteLogs domain.QuoteLogRepository,
	cacheService cache.CacheService,
	gens *gencache.Generations,
	cacheTTL time.Duration,
) *QuoteUsecase {
	return &QuoteUsecase{
		warehouseRepo: warehouseRepo,
		zones:         zones,
		pricing:       pricing,
		quoteLogs:     quoteLogs,
		cache:         cacheService,
		gens:          gens,
		cacheTTL:      cacheTTL,
	}
}

// GetQuote answers a quote request. Unserviceable destinations still get a
// distance; serviceable destinations outside every slab get a nil price.
// Results are cached per (warehouse, rounded destination, generation), so
// any committed zone/slab mutation forces a recompute.
func (uc *QuoteUsecase) GetQuote(ctx context.Context, warehouseID int64, destLat, destLng float64) (*domain.Quote, error) {
	if !geo.ValidCoordinate(destLat, destLng) {
		return nil, fmt.Errorf("%w: (%f, %f)", domain.ErrInvalidDestination, destLat, destLng)
	}

	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownWarehouse, warehouseID)
		}
		return nil, err
	}
	if !wh.IsActive {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownWarehouse, warehouseID)
	}

	key := cache.QuoteKey(wh.ID, destLat, destLng, uc.gens.Current(wh.ID))
	if uc.cache != nil {
		if val, found := uc.cache.Get(key); found {
			if q, ok := val.(*domain.Quote); ok {
				// Hand out a copy so callers can never mutate the
				// cached entry through the shared pointer.
				return q.Clone(), nil
			}
		}
	}

	dest := geo.Point{Lat: destLat, Lng: destLng}
	distance := round3(geo.DistanceKm(wh.Origin(), dest))

	zone, err := uc.zones.MatchZone(ctx, wh.ID, dest)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		Serviceable: zone != nil,
		DistanceKm:  distance,
		Currency:    "INR",
	}

	var matchedZoneID *int64
	if zone != nil {
		quote.MatchedZone = &zone.Name
		matchedZoneID = &zone.ID

		slab, err := uc.pricing.MatchSlab(ctx, wh.ID, distance)
		if err != nil {
			return nil, err
		}
		if slab != nil {
			price, err := uc.pricing.ComputePrice(slab, distance)
			if err != nil {
				return nil, err
			}
			quote.Price = &price
			quote.SlabName = &slab.Name
			quote.Currency = slab.Currency
		}
	}

	if uc.cache != nil {
		// Cache a private copy: the caller keeps the computed quote and
		// whatever it does to it stays out of the cache.
		uc.cache.Set(key, quote.Clone(), uc.cacheTTL)
	}

	uc.logQuote(wh.ID, destLat, destLng, matchedZoneID, quote)
	return quote, nil
}

// logQuote appends the analytics row in the background. A failed write is
// logged and dropped; it never blocks or fails the quote response.
func (uc *QuoteUsecase) logQuote(warehouseID int64, destLat, destLng float64, matchedZoneID *int64, q *domain.Quote) {
	if uc.quoteLogs == nil {
		return
	}

	entry := &domain.QuoteLog{
		WarehouseID:   warehouseID,
		DestLat:       destLat,
		DestLng:       destLng,
		MatchedZoneID: matchedZoneID,
		DistanceKm:    q.DistanceKm,
		Currency:      q.Currency,
	}
	if q.Price != nil {
		entry.Price = *q.Price
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), quoteLogTimeout)
		defer cancel()
		if err := uc.quoteLogs.Insert(ctx, entry); err != nil {
			logger.Warn().Err(err).
				Int64("warehouse_id", warehouseID).
				Msg("quote log write dropped")
		}
	}()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
