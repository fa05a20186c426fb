package usecase

import (
	"context"
	"errors"
	"fmt"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/pkg/geo"
	"zonepilot-backend/pkg/geojson"
)

const defaultZoneColor = "#7C3AED"

// errAlreadyInactive aborts a disable that lost the race to another
// disable of the same entity. The transaction rolls back having written
// nothing; the caller treats it as the usual no-op.
var errAlreadyInactive = errors.New("already inactive")

// ZoneUsecase is the zone store: polygon matching plus the versioned
// create/update/disable/import/export paths.
type ZoneUsecase struct {
	warehouseRepo domain.WarehouseRepository
	zoneRepo      domain.ZoneRepository
	recorder      *Recorder
}

func NewZoneUsecase(warehouseRepo domain.WarehouseRepository, zoneRepo domain.ZoneRepository, recorder *Recorder) *ZoneUsecase {
	return &ZoneUsecase{
		warehouseRepo: warehouseRepo,
		zoneRepo:      zoneRepo,
		recorder:      recorder,
	}
}

// CreateZoneRequest represents the input for creating a zone.
type CreateZoneRequest struct {
	WarehouseID int64       `json:"warehouseId"`
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Coords      []geo.Point `json:"coords"`
}

// ListZones returns all zones of a warehouse, active and inactive.
func (uc *ZoneUsecase) ListZones(ctx context.Context, warehouseID int64) ([]domain.Zone, error) {
	return uc.zoneRepo.ListByWarehouse(ctx, warehouseID)
}

// MatchZone returns the active zone containing the point, or nil when the
// point is outside every zone. With overlapping zones the smallest
// enclosing ring wins (most specific); ties go to the highest id (newest).
func (uc *ZoneUsecase) MatchZone(ctx context.Context, warehouseID int64, pt geo.Point) (*domain.Zone, error) {
	zones, err := uc.zoneRepo.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	var best *domain.Zone
	var bestArea float64
	for i := range zones {
		z := &zones[i]
		if !geo.PointInRing(pt, z.Coords) {
			continue
		}
		area := geo.RingArea(z.Coords)
		if best == nil || area < bestArea || (area == bestArea && z.ID > best.ID) {
			best = z
			bestArea = area
		}
	}
	return best, nil
}

// CreateZone validates the ring, persists the zone together with a CREATE
// version and audit row, and bumps the warehouse generation.
func (uc *ZoneUsecase) CreateZone(ctx context.Context, req CreateZoneRequest, actorID *int64) (*domain.Zone, error) {
	wh, err := uc.activeWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	ring, err := geo.NormalizeRing(req.Coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPolygon, err)
	}

	color := req.Color
	if color == "" {
		color = defaultZoneColor
	}

	return uc.createVersioned(ctx, wh.ID, domain.ActionCreate, actorID, &domain.Zone{
		WarehouseID: wh.ID,
		Name:        req.Name,
		Color:       color,
		Coords:      ring,
		IsActive:    true,
	})
}

// UpdateZone replaces the zone's fields wholesale, recording an UPDATE
// version and audit row. An update always reactivates the zone. Moving a
// zone to another warehouse invalidates quotes on both sides.
func (uc *ZoneUsecase) UpdateZone(ctx context.Context, id int64, req CreateZoneRequest, actorID *int64) (*domain.Zone, error) {
	wh, err := uc.activeWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	ring, err := geo.NormalizeRing(req.Coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPolygon, err)
	}

	color := req.Color
	if color == "" {
		color = defaultZoneColor
	}

	z, err := uc.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *domain.Zone
	var prevWarehouseID int64
	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityZone,
		EntityID:    z.ID,
		WarehouseID: wh.ID,
		Action:      domain.ActionUpdate,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			cur, err := uc.zoneRepo.GetByID(txCtx, z.ID)
			if err != nil {
				return 0, nil, nil, err
			}
			prevWarehouseID = cur.WarehouseID
			updated, err = uc.zoneRepo.Update(txCtx, &domain.Zone{
				ID:          cur.ID,
				WarehouseID: wh.ID,
				Name:        req.Name,
				Color:       color,
				Coords:      ring,
				IsActive:    true,
			})
			if err != nil {
				return 0, nil, nil, err
			}
			return updated.ID, cur.Snapshot(), updated.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.zoneRepo.SetVersion(txCtx, entityID, version)
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

// DisableZone marks the zone inactive with a DISABLE version. Disabling an
// already-inactive zone is a no-op: nothing observable changes, so no
// duplicate version is recorded. The active check runs again inside the
// mutation, under the entity lock, so concurrent disables record at most
// one DISABLE version between them.
func (uc *ZoneUsecase) DisableZone(ctx context.Context, id int64, actorID *int64) (*domain.Zone, error) {
	z, err := uc.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !z.IsActive {
		return z, nil
	}

	var updated *domain.Zone
	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityZone,
		EntityID:    z.ID,
		WarehouseID: z.WarehouseID,
		Action:      domain.ActionDisable,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			cur, err := uc.zoneRepo.GetByID(txCtx, z.ID)
			if err != nil {
				return 0, nil, nil, err
			}
			if !cur.IsActive {
				updated = cur
				return 0, nil, nil, errAlreadyInactive
			}
			updated, err = uc.zoneRepo.SetActive(txCtx, z.ID, false)
			if err != nil {
				return 0, nil, nil, err
			}
			return updated.ID, cur.Snapshot(), updated.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.zoneRepo.SetVersion(txCtx, entityID, version)
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

// ImportGeoJSON creates a zone per Polygon feature. Validation is atomic:
// one bad feature rejects the whole payload before anything is disabled or
// created. With overwrite, currently active zones are disabled first, each
// with its own DISABLE version.
func (uc *ZoneUsecase) ImportGeoJSON(ctx context.Context, warehouseID int64, fc geojson.FeatureCollection, overwrite bool, actorID *int64) (int, error) {
	wh, err := uc.activeWarehouse(ctx, warehouseID)
	if err != nil {
		return 0, err
	}

	features, err := geojson.DecodePolygons(fc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidGeoJSON, err)
	}

	// Validate every ring before touching storage
	rings := make([][]geo.Point, len(features))
	for i, f := range features {
		ring, err := geo.NormalizeRing(f.Ring)
		if err != nil {
			return 0, fmt.Errorf("%w: feature %d: %v", domain.ErrInvalidGeoJSON, i, err)
		}
		rings[i] = ring
	}

	activeBefore, err := uc.zoneRepo.ListActiveByWarehouse(ctx, wh.ID)
	if err != nil {
		return 0, err
	}

	if overwrite {
		for _, z := range activeBefore {
			if _, err := uc.DisableZone(ctx, z.ID, actorID); err != nil {
				return 0, err
			}
		}
	}

	created := 0
	for i, f := range features {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("Imported Zone %d", created+1)
		}
		color := f.Color
		if color == "" {
			color = defaultZoneColor
		}
		if _, err := uc.createVersioned(ctx, wh.ID, domain.ActionImport, actorID, &domain.Zone{
			WarehouseID: wh.ID,
			Name:        name,
			Color:       color,
			Coords:      rings[i],
			IsActive:    true,
		}); err != nil {
			return created, err
		}
		created++
	}

	if err := uc.recorder.Note(ctx, domain.ActionImport, domain.EntityZone, actorID,
		domain.JSONB{"warehouse_id": wh.ID, "active_before": len(activeBefore)},
		domain.JSONB{"warehouse_id": wh.ID, "overwrite": overwrite, "imported": created},
	); err != nil {
		return created, err
	}
	return created, nil
}

// ExportGeoJSON returns the warehouse's active zones as a
// FeatureCollection and leaves an EXPORT audit trail entry.
func (uc *ZoneUsecase) ExportGeoJSON(ctx context.Context, warehouseID int64, actorID *int64) (geojson.FeatureCollection, error) {
	zones, err := uc.zoneRepo.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		return geojson.FeatureCollection{}, err
	}

	features := make([]geojson.Feature, 0, len(zones))
	for _, z := range zones {
		features = append(features, geojson.EncodePolygon(z.Coords, map[string]interface{}{
			"zone_id":      z.ID,
			"warehouse_id": z.WarehouseID,
			"name":         z.Name,
			"color":        z.Color,
		}))
	}

	if err := uc.recorder.Note(ctx, domain.ActionExport, domain.EntityZone, actorID,
		nil, domain.JSONB{"warehouse_id": warehouseID, "count": len(zones)},
	); err != nil {
		return geojson.FeatureCollection{}, err
	}
	return geojson.NewFeatureCollection(features), nil
}

func (uc *ZoneUsecase) createVersioned(ctx context.Context, warehouseID int64, action string, actorID *int64, z *domain.Zone) (*domain.Zone, error) {
	version, err := uc.recorder.Mutate(ctx, Mutation{
		EntityType:  domain.EntityZone,
		WarehouseID: warehouseID,
		Action:      action,
		ActorID:     actorID,
		Apply: func(txCtx context.Context) (int64, domain.JSONB, domain.JSONB, error) {
			created, err := uc.zoneRepo.Insert(txCtx, z)
			if err != nil {
				return 0, nil, nil, err
			}
			return created.ID, nil, created.Snapshot(), nil
		},
		OnVersion: func(txCtx context.Context, entityID int64, version int) error {
			return uc.zoneRepo.SetVersion(txCtx, entityID, version)
		},
	})
	if err != nil {
		return nil, err
	}
	z.Version = version
	return z, nil
}

func (uc *ZoneUsecase) activeWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
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
