package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"zonepilot-backend/internal/domain"
)

// PricingUsecase is the pricing resolver: slab matching over distance
// intervals plus the versioned create/update/disable paths.
type PricingUsecase struct {
	warehouseRepo domain.WarehouseRepository
	pricingRepo   domain.PricingRepository
	recorder      *Recorder
}

func NewPricingUsecase(warehouseRepo domain.WarehouseRepository, pricingRepo domain.PricingRepository, recorder *Recorder) *PricingUsecase {
	return &PricingUsecase{
		warehouseRepo: warehouseRepo,
		pricingRepo:   pricingRepo,
		recorder:      recorder,
	}
}

// CreateSlabRequest represents the input for creating a pricing slab.
type CreateSlabRequest struct {
	WarehouseID int64   `json:"warehouseId"`
	Name        string  `json:"name"`
	MinKm       float64 `json:"minKm"`
	MaxKm       float64 `json:"maxKm"`
	FlatFee     float64 `json:"flatFee"`
	PerKmFee    float64 `json:"perKmFee"`
	Currency    string  `json:"currency"`
}

// ListSlabs returns all slabs of a warehouse, active and inactive.
func (uc *PricingUsecase) ListSlabs(ctx context.Context, warehouseID int64) ([]domain.PricingSlab, error) {
	return uc.pricingRepo.ListByWarehouse(ctx, warehouseID)
}

// MatchSlab returns the active slab whose [min,max) interval contains the
// distance, or nil when nothing covers it ("no slab-based pricing"). With
// overlapping slabs the narrowest interval wins; ties go to the lowest id.
func (uc *PricingUsecase) MatchSlab(ctx context.Context, warehouseID int64, distanceKm float64) (*domain.PricingSlab, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		return nil, fmt.Errorf("%w: %f", domain.ErrInvalidDistance, distanceKm)
	}

	slabs, err := uc.pricingRepo.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	var best *domain.PricingSlab
	for i := range slabs {
		s := &slabs[i]
		if !s.Covers(distanceKm) {
			continue
		}
		if best == nil || s.Span() < best.Span() || (s.Span() == best.Span() && s.ID < best.ID) {
			best = s
		}
	}
	return best, nil
}

// ComputePrice applies flat_fee + per_km_fee * distance, rounded to the
// currency's 2 minor-unit decimals. A negative or NaN distance here is an
// upstream contract violation, not a caller error.
func (uc *PricingUsecase) ComputePrice(slab *domain.PricingSlab, distanceKm float64) (float64, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		return 0, fmt.Errorf("%w: %f", domain.ErrInvalidDistance, distanceKm)
	}
	price := slab.FlatFee + slab.PerKmFee*distanceKm
	return math.Round(price*100) / 100, nil
}

// CreateSlab validates the interval and fees, persists the slab together
// with a CREATE version and audit row, and bumps the warehouse generation.
func (uc *PricingUsecase) CreateSlab(ctx context.Context, req CreateSlabRequest, actorID *int64) (*domain.PricingSlab, error) {
	wh, err := uc.activeWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	slab, err := buildSlab(wh.ID, req)
	if err != nil {
		return nil, err
	}

	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityPricing,
		WarehouseID: wh.ID,
		Action:      domain.ActionCreate,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			created, err := uc.pricingRepo.Insert(txCtx, slab)
			if err != nil {
				return 0, nil, nil, err
			}
			return created.ID, nil, created.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.pricingRepo.SetVersion(txCtx, entityID, version)
		},
	})
	if err != nil {
		return nil, err
	}
	slab.Version = version
	return slab, nil
}

// UpdateSlab replaces the slab's fields wholesale, recording an UPDATE
// version and audit row. An update always reactivates the slab. Moving a
// slab to another warehouse invalidates quotes on both sides.
func (uc *PricingUsecase) UpdateSlab(ctx context.Context, id int64, req CreateSlabRequest, actorID *int64) (*domain.PricingSlab, error) {
	wh, err := uc.activeWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	next, err := buildSlab(wh.ID, req)
	if err != nil {
		return nil, err
	}

	s, err := uc.pricingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next.ID = s.ID

	var updated *domain.PricingSlab
	var prevWarehouseID int64
	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityPricing,
		EntityID:    s.ID,
		WarehouseID: wh.ID,
		Action:      domain.ActionUpdate,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			cur, err := uc.pricingRepo.GetByID(txCtx, s.ID)
			if err != nil {
				return 0, nil, nil, err
			}
			prevWarehouseID = cur.WarehouseID
			updated, err = uc.pricingRepo.Update(txCtx, next)
			if err != nil {
				return 0, nil, nil, err
			}
			return updated.ID, cur.Snapshot(), updated.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.pricingRepo.SetVersion(txCtx, entityID, version)
		},
	})
	if err != nil {
		return nil, err
	}
	if prevWarehouseID != wh.ID {
		uc.recorder.Invalidate(prevWarehouseID)
	}
	updated.Version = version
	return updated, nil
}

// DisableSlab marks the slab inactive with a DISABLE version; disabling an
// already-inactive slab records nothing new. The active check is repeated
// inside the mutation, under the entity lock, so concurrent disables
// record at most one DISABLE version between them.
func (uc *PricingUsecase) DisableSlab(ctx context.Context, id int64, actorID *int64) (*domain.PricingSlab, error) {
	s, err := uc.pricingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return s, nil
	}

	var updated *domain.PricingSlab
	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityPricing,
		EntityID:    s.ID,
		WarehouseID: s.WarehouseID,
		Action:      domain.ActionDisable,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			cur, err := uc.pricingRepo.GetByID(txCtx, s.ID)
			if err != nil {
				return 0, nil, nil, err
			}
			if !cur.IsActive {
				updated = cur
				return 0, nil, nil, errAlreadyInactive
			}
			updated, err = uc.pricingRepo.SetActive(txCtx, s.ID, false)
			if err != nil {
				return 0, nil, nil, err
			}
			return updated.ID, cur.Snapshot(), updated.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.pricingRepo.SetVersion(txCtx, entityID, version)
		},
	})
	if errors.Is(err, errAlreadyInactive) {
		return updated, nil
	}
	if err != nil {
		return nil, err
	}
	updated.Version = version
	return updated, nil
}

// buildSlab validates a slab payload and applies the defaults.
func buildSlab(warehouseID int64, req CreateSlabRequest) (*domain.PricingSlab, error) {
	if req.MaxKm <= req.MinKm || req.MinKm < 0 {
		return nil, fmt.Errorf("%w: [%f, %f)", domain.ErrInvalidRange, req.MinKm, req.MaxKm)
	}
	if req.FlatFee < 0 || req.PerKmFee < 0 {
		return nil, fmt.Errorf("%w: fees must be non-negative", domain.ErrInvalidRange)
	}

	name := req.Name
	if name == "" {
		name = "Standard"
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	return &domain.PricingSlab{
		WarehouseID: warehouseID,
		Name:        name,
		MinKm:       req.MinKm,
		MaxKm:       req.MaxKm,
		FlatFee:     req.FlatFee,
		PerKmFee:    req.PerKmFee,
		Currency:    currency,
		IsActive:    true,
	}, nil
}

func (uc *PricingUsecase) activeWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownWarehouse, id)
		}
		return nil, err
	}
	if !wh.IsActive {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownWarehouse, id)
	}
	return wh, nil
}
