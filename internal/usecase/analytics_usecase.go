package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/pkg/cache"
)

// AnalyticsUsecase serves read-only aggregates over the quote log stream.
// Summaries are cached briefly; the underlying rows are never read back by
// pricing logic.
type AnalyticsUsecase struct {
	warehouseRepo domain.WarehouseRepository
	quoteLogs     domain.QuoteLogRepository
	cache         cache.CacheService
	cacheTTL      time.Duration
}

func NewAnalyticsUsecase(warehouseRepo domain.WarehouseRepository, quoteLogs domain.QuoteLogRepository, cacheService cache.CacheService, cacheTTL time.Duration) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		warehouseRepo: warehouseRepo,
		quoteLogs:     quoteLogs,
		cache:         cacheService,
		cacheTTL:      cacheTTL,
	}
}

// Summary aggregates the warehouse's quote history.
func (uc *AnalyticsUsecase) Summary(ctx context.Context, warehouseID int64) (*domain.AnalyticsSummary, error) {
	if _, err := uc.warehouseRepo.GetByID(ctx, warehouseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownWarehouse, warehouseID)
		}
		return nil, err
	}

	cacheKey := fmt.Sprintf("analytics:summary:%d", warehouseID)
	if uc.cache != nil {
		if val, found := uc.cache.Get(cacheKey); found {
			if s, ok := val.(*domain.AnalyticsSummary); ok {
				return s, nil
			}
		}
	}

	summary, err := uc.quoteLogs.Summary(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Set(cacheKey, summary, uc.cacheTTL)
	}
	return summary, nil
}

// RecentQuotes returns the newest quote logs, bounded by limit, optionally
// scoped to one warehouse.
func (uc *AnalyticsUsecase) RecentQuotes(ctx context.Context, limit int, warehouseID *int64) ([]domain.QuoteLog, error) {
	return uc.quoteLogs.Recent(ctx, limit, warehouseID)
}
