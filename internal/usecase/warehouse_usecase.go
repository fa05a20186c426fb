package usecase

import (
	"context"
	"fmt"
	"strings"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/pkg/geo"
)

// WarehouseUsecase manages the origins everything else hangs off.
type WarehouseUsecase struct {
	warehouseRepo domain.WarehouseRepository
}

func NewWarehouseUsecase(warehouseRepo domain.WarehouseRepository) *WarehouseUsecase {
	return &WarehouseUsecase{warehouseRepo: warehouseRepo}
}

type CreateWarehouseRequest struct {
	Name string  `json:"name"`
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// List returns every warehouse, active and inactive.
func (uc *WarehouseUsecase) List(ctx context.Context) ([]domain.Warehouse, error) {
	return uc.warehouseRepo.List(ctx)
}

// Create inserts a new active warehouse after validating its origin.
func (uc *WarehouseUsecase) Create(ctx context.Context, req CreateWarehouseRequest) (*domain.Warehouse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidWarehouse)
	}
	if !geo.ValidCoordinate(req.Lat, req.Lng) {
		return nil, fmt.Errorf("%w: origin out of range", domain.ErrInvalidWarehouse)
	}
	return uc.warehouseRepo.Create(ctx, &domain.Warehouse{
		Name:     strings.TrimSpace(req.Name),
		City:     strings.TrimSpace(req.City),
		Lat:      req.Lat,
		Lng:      req.Lng,
		IsActive: true,
	})
}
