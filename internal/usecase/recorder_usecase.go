package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"zonepilot-backend/internal/domain"
	gencache "zonepilot-backend/internal/infrastructure/cache"
)

// Mutation describes one versioned change to a zone or pricing slab.
// Apply performs the entity write inside the transaction and returns the
// entity id (which may only exist after an insert) plus the pre- and
// post-state snapshots for the version and audit rows. Capturing the
// before-state inside Apply keeps it under the entity lock, so it cannot
// go stale against a concurrent mutation.
type Mutation struct {
	EntityType  string // domain.EntityZone / domain.EntityPricing
	EntityID    int64  // zero for creates; set for updates/disables
	WarehouseID int64
	Action      string
	ActorID     *int64
	Apply       func(txCtx context.Context) (entityID int64, before, after domain.JSONB, err error)
	// OnVersion runs after the version number is assigned, still inside
	// the transaction (e.g. to stamp the entity's current version).
	OnVersion func(txCtx context.Context, entityID int64, version int) error
}

// Recorder guarantees every observable zone/slab mutation commits together
// with exactly one Version row and one AuditLog row, and bumps the owning
// warehouse's generation once the commit lands. Mutations to the same
// entity are serialized by a keyed lock; the SQL-side atomic version
// assignment backstops multi-process races, and the whole transaction is
// retried a bounded number of times on a lost race.
type Recorder struct {
	versions domain.VersionRepository
	tx       domain.TransactionManager
	gens     *gencache.Generations
	retries  int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRecorder(versions domain.VersionRepository, tx domain.TransactionManager, gens *gencache.Generations, retries int) *Recorder {
	if retries < 1 {
		retries = 1
	}
	return &Recorder{
		versions: versions,
		tx:       tx,
		gens:     gens,
		retries:  retries,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Mutate runs the mutation and returns the assigned version number.
func (r *Recorder) Mutate(ctx context.Context, m Mutation) (int, error) {
	if m.EntityID != 0 {
		unlock := r.lockEntity(m.EntityType, m.EntityID)
		defer unlock()
	}

	var version int
	var lastErr error
	for attempt := 0; attempt < r.retries; attempt++ {
		err := r.tx.Do(ctx, func(txCtx context.Context) error {
			entityID, before, after, err := m.Apply(txCtx)
			if err != nil {
				return err
			}

			version, err = r.versions.InsertVersion(txCtx, &domain.Version{
				EntityType:  m.EntityType,
				EntityID:    entityID,
				WarehouseID: m.WarehouseID,
				Action:      m.Action,
				Snapshot:    after,
				ActorID:     m.ActorID,
			})
			if err != nil {
				return err
			}

			if m.OnVersion != nil {
				if err := m.OnVersion(txCtx, entityID, version); err != nil {
					return err
				}
			}

			return r.versions.InsertAudit(txCtx, &domain.AuditLog{
				Action:     m.Action,
				EntityType: m.EntityType,
				EntityID:   &entityID,
				ActorID:    m.ActorID,
				Before:     before,
				After:      after,
			})
		})
		if err == nil {
			r.gens.Bump(m.WarehouseID)
			return version, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("version assignment failed after %d attempts: %w", r.retries, lastErr)
}

// Invalidate bumps a warehouse generation outside the mutation path. Used
// when an update moves an entity between warehouses: Mutate bumps the new
// owner, the caller invalidates the old one.
func (r *Recorder) Invalidate(warehouseID int64) {
	r.gens.Bump(warehouseID)
}

// Note writes a standalone audit entry outside the versioned mutation path
// (GeoJSON exports and import summaries).
func (r *Recorder) Note(ctx context.Context, action, entityType string, actorID *int64, before, after domain.JSONB) error {
	return r.versions.InsertAudit(ctx, &domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		ActorID:    actorID,
		Before:     before,
		After:      after,
	})
}

// ListZoneVersions returns a zone's versions, newest first.
func (r *Recorder) ListZoneVersions(ctx context.Context, zoneID int64) ([]domain.Version, error) {
	return r.versions.ListZoneVersions(ctx, zoneID)
}

// ListPricingVersions returns pricing versions, newest first, paged.
func (r *Recorder) ListPricingVersions(ctx context.Context, filter domain.VersionFilter) ([]domain.Version, error) {
	return r.versions.ListPricingVersions(ctx, filter)
}

// ListAudit returns audit rows, newest first, bounded by limit.
func (r *Recorder) ListAudit(ctx context.Context, limit int, entityType string) ([]domain.AuditLog, error) {
	return r.versions.ListAudit(ctx, limit, entityType)
}

func (r *Recorder) lockEntity(entityType string, id int64) func() {
	key := fmt.Sprintf("%s:%d", entityType, id)

	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
