package usecase

import (
	"context"
	"sync"
	"testing"

	"zonepilot-backend/internal/domain"
	gencache "zonepilot-backend/internal/infrastructure/cache"
	"zonepilot-backend/pkg/geo"
	"zonepilot-backend/pkg/geojson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRig wires the usecases over in-memory fakes. Warehouse 1 is active
// at Delhi's Connaught Place; warehouse 2 exists but is inactive.
type testRig struct {
	warehouses *mockWarehouseRepo
	zones      *mockZoneRepo
	pricing    *mockPricingRepo
	versions   *mockVersionRepo
	quoteLogs  *mockQuoteLogRepo
	cache      *mockCache
	gens       *gencache.Generations
	tx         *mockTxManager

	recorder  *Recorder
	zoneUC    *ZoneUsecase
	pricingUC *PricingUsecase
	quoteUC   *QuoteUsecase
}

func newTestRig() *testRig {
	r := &testRig{
		warehouses: newMockWarehouseRepo(
			&domain.Warehouse{ID: 1, Name: "Delhi Central", City: "Delhi", Lat: 28.6139, Lng: 77.2090, IsActive: true},
			&domain.Warehouse{ID: 2, Name: "Closed", City: "Delhi", Lat: 28.7, Lng: 77.1, IsActive: false},
		),
		zones:     newMockZoneRepo(),
		pricing:   newMockPricingRepo(),
		versions:  newMockVersionRepo(),
		quoteLogs: &mockQuoteLogRepo{},
		cache:     newMockCache(),
		gens:      gencache.NewGenerations(),
		tx:        &mockTxManager{},
	}
	r.recorder = NewRecorder(r.versions, r.tx, r.gens, 3)
	r.zoneUC = NewZoneUsecase(r.warehouses, r.zones, r.recorder)
	r.pricingUC = NewPricingUsecase(r.warehouses, r.pricing, r.recorder)
	r.quoteUC = NewQuoteUsecase(r.warehouses, r.zoneUC, r.pricingUC, r.quoteLogs, r.cache, r.gens, 0)
	return r
}

// squareRing builds a closed square of the given half-width in degrees
// around a center point.
func squareRing(lat, lng, half float64) []geo.Point {
	return []geo.Point{
		{Lat: lat - half, Lng: lng - half},
		{Lat: lat - half, Lng: lng + half},
		{Lat: lat + half, Lng: lng + half},
		{Lat: lat + half, Lng: lng - half},
		{Lat: lat - half, Lng: lng - half},
	}
}

func TestCreateZone(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()
	actor := int64(7)

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1,
		Name:        "Central",
		Coords:      squareRing(28.6139, 77.2090, 0.08),
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, 1, zone.Version, "first version of a fresh entity")
	assert.Equal(t, defaultZoneColor, zone.Color, "color defaulted")
	assert.True(t, zone.IsActive)

	stored, err := rig.zones.GetByID(ctx, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version, "version stamped on the row")

	versions, err := rig.recorder.ListZoneVersions(ctx, zone.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.ActionCreate, versions[0].Action)
	assert.Equal(t, &actor, versions[0].ActorID)

	audits, err := rig.recorder.ListAudit(ctx, 10, domain.EntityZone)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.ActionCreate, audits[0].Action)

	assert.Equal(t, uint64(1), rig.gens.Current(1), "committed mutation bumps the generation")
}

func TestCreateZoneRejectsBadRing(t *testing.T) {
	rig := newTestRig()

	_, err := rig.zoneUC.CreateZone(context.Background(), CreateZoneRequest{
		WarehouseID: 1,
		Name:        "Line",
		Coords: []geo.Point{
			{Lat: 0, Lng: 0},
			{Lat: 1, Lng: 1},
			{Lat: 2, Lng: 2},
		},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPolygon)
	assert.Empty(t, rig.zones.zones, "nothing persisted")
	assert.Equal(t, uint64(0), rig.gens.Current(1), "no generation bump")
}

func TestCreateZoneUnknownWarehouse(t *testing.T) {
	rig := newTestRig()

	_, err := rig.zoneUC.CreateZone(context.Background(), CreateZoneRequest{
		WarehouseID: 99,
		Coords:      squareRing(28, 77, 0.1),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownWarehouse)

	_, err = rig.zoneUC.CreateZone(context.Background(), CreateZoneRequest{
		WarehouseID: 2, // exists but inactive
		Coords:      squareRing(28, 77, 0.1),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownWarehouse)
}

func TestDisableZone(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1,
		Name:        "Central",
		Coords:      squareRing(28.6139, 77.2090, 0.08),
	}, nil)
	require.NoError(t, err)

	disabled, err := rig.zoneUC.DisableZone(ctx, zone.ID, nil)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)
	assert.Equal(t, 2, disabled.Version, "disable is the second version")
	assert.Equal(t, []int{1, 2}, rig.versions.zoneVersionNumbers(zone.ID))

	// Disabling again changes nothing observable, so no new version.
	again, err := rig.zoneUC.DisableZone(ctx, zone.ID, nil)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
	assert.Equal(t, []int{1, 2}, rig.versions.zoneVersionNumbers(zone.ID))
	assert.Equal(t, uint64(2), rig.gens.Current(1), "idempotent repeat does not bump")
}

func TestUpdateZone(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()
	actor := int64(7)

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1,
		Name:        "Central",
		Coords:      squareRing(28.6139, 77.2090, 0.08),
	}, &actor)
	require.NoError(t, err)

	newRing := squareRing(28.6139, 77.2090, 0.12)
	updated, err := rig.zoneUC.UpdateZone(ctx, zone.ID, CreateZoneRequest{
		WarehouseID: 1,
		Name:        "Central Wide",
		Color:       "#FF0000",
		Coords:      newRing,
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, "Central Wide", updated.Name)
	assert.Equal(t, "#FF0000", updated.Color)
	assert.Equal(t, newRing, updated.Coords)
	assert.True(t, updated.IsActive)
	assert.Equal(t, 2, updated.Version, "update is the second version")
	assert.Equal(t, []int{1, 2}, rig.versions.zoneVersionNumbers(zone.ID))

	versions, err := rig.recorder.ListZoneVersions(ctx, zone.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, domain.ActionUpdate, versions[0].Action)

	// The audit row carries both sides of the change.
	audits, err := rig.recorder.ListAudit(ctx, 1, domain.EntityZone)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.ActionUpdate, audits[0].Action)
	assert.Equal(t, "Central", audits[0].Before["name"])
	assert.Equal(t, "Central Wide", audits[0].After["name"])

	assert.Equal(t, uint64(2), rig.gens.Current(1), "update invalidates cached quotes")
}

func TestUpdateZoneReactivates(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Central", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)
	_, err = rig.zoneUC.DisableZone(ctx, zone.ID, nil)
	require.NoError(t, err)

	updated, err := rig.zoneUC.UpdateZone(ctx, zone.ID, CreateZoneRequest{
		WarehouseID: 1, Name: "Central", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)
	assert.True(t, updated.IsActive, "an update brings the zone back")
	assert.Equal(t, 3, updated.Version)

	match, err := rig.zoneUC.MatchZone(ctx, 1, geo.Point{Lat: 28.6, Lng: 77.2})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, zone.ID, match.ID)
}

func TestUpdateZoneMovesWarehouse(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	other, err := rig.warehouses.Create(ctx, &domain.Warehouse{
		Name: "Gurgaon Hub", City: "Gurgaon", Lat: 28.4595, Lng: 77.0266, IsActive: true,
	})
	require.NoError(t, err)

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Edge", Coords: squareRing(28.5, 77.1, 0.1),
	}, nil)
	require.NoError(t, err)

	updated, err := rig.zoneUC.UpdateZone(ctx, zone.ID, CreateZoneRequest{
		WarehouseID: other.ID, Name: "Edge", Coords: squareRing(28.5, 77.1, 0.1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.WarehouseID)

	assert.Equal(t, uint64(1), rig.gens.Current(other.ID), "new owner invalidated")
	assert.Equal(t, uint64(2), rig.gens.Current(1), "old owner invalidated too")
}

func TestUpdateZoneValidation(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Central", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)

	_, err = rig.zoneUC.UpdateZone(ctx, zone.ID, CreateZoneRequest{
		WarehouseID: 1,
		Coords:      []geo.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPolygon)

	_, err = rig.zoneUC.UpdateZone(ctx, zone.ID, CreateZoneRequest{
		WarehouseID: 99, Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownWarehouse)

	_, err = rig.zoneUC.UpdateZone(ctx, 42, CreateZoneRequest{
		WarehouseID: 1, Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []int{1}, rig.versions.zoneVersionNumbers(zone.ID), "failed updates record nothing")
}

func TestDisableZoneConcurrent(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Central", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			disabled, err := rig.zoneUC.DisableZone(ctx, zone.ID, nil)
			assert.NoError(t, err)
			assert.False(t, disabled.IsActive)
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{1, 2}, rig.versions.zoneVersionNumbers(zone.ID),
		"racing disables record a single DISABLE version")
	assert.Equal(t, uint64(2), rig.gens.Current(1), "one bump between the racers")
}

func TestDisableZoneNotFound(t *testing.T) {
	rig := newTestRig()
	_, err := rig.zoneUC.DisableZone(context.Background(), 42, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatchZoneTieBreaks(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	// Big zone enclosing a small zone; the probe point is inside both.
	big, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Big", Coords: squareRing(28.6, 77.2, 0.2),
	}, nil)
	require.NoError(t, err)
	small, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Small", Coords: squareRing(28.6, 77.2, 0.05),
	}, nil)
	require.NoError(t, err)

	match, err := rig.zoneUC.MatchZone(ctx, 1, geo.Point{Lat: 28.6, Lng: 77.2})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, small.ID, match.ID, "smallest enclosing zone wins")

	// Outside the small zone but inside the big one.
	match, err = rig.zoneUC.MatchZone(ctx, 1, geo.Point{Lat: 28.6, Lng: 77.3})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, big.ID, match.ID)

	// Identical ring registered twice: the higher (newer) id wins.
	dup, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Small v2", Coords: squareRing(28.6, 77.2, 0.05),
	}, nil)
	require.NoError(t, err)
	match, err = rig.zoneUC.MatchZone(ctx, 1, geo.Point{Lat: 28.6, Lng: 77.2})
	require.NoError(t, err)
	assert.Equal(t, dup.ID, match.ID)

	// Disabled zones never match.
	_, err = rig.zoneUC.DisableZone(ctx, dup.ID, nil)
	require.NoError(t, err)
	_, err = rig.zoneUC.DisableZone(ctx, small.ID, nil)
	require.NoError(t, err)
	match, err = rig.zoneUC.MatchZone(ctx, 1, geo.Point{Lat: 28.6, Lng: 77.2})
	require.NoError(t, err)
	assert.Equal(t, big.ID, match.ID)
}

func TestMatchZoneNoHit(t *testing.T) {
	rig := newTestRig()
	match, err := rig.zoneUC.MatchZone(context.Background(), 1, geo.Point{Lat: 10, Lng: 10})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func importCollection(names ...string) geojson.FeatureCollection {
	features := make([]geojson.Feature, 0, len(names))
	for i, name := range names {
		off := float64(i) * 0.3
		features = append(features, geojson.EncodePolygon(
			squareRing(28.6+off, 77.2+off, 0.05),
			map[string]interface{}{"name": name},
		))
	}
	return geojson.NewFeatureCollection(features)
}

func TestImportGeoJSON(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	count, err := rig.zoneUC.ImportGeoJSON(ctx, 1, importCollection("North", "South"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	zones, err := rig.zoneUC.ListZones(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, zones, 2)
	for _, z := range zones {
		assert.True(t, z.IsActive)
		assert.Equal(t, 1, z.Version)
	}

	// The import leaves a summary audit entry on top of the per-zone rows.
	audits, err := rig.recorder.ListAudit(ctx, 10, domain.EntityZone)
	require.NoError(t, err)
	require.Len(t, audits, 3)
	assert.Equal(t, domain.ActionImport, audits[0].Action)
	assert.Nil(t, audits[0].EntityID, "summary row is not tied to one zone")
}

func TestImportGeoJSONOverwrite(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	existing, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Old", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)

	count, err := rig.zoneUC.ImportGeoJSON(ctx, 1, importCollection("New"), true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	old, err := rig.zones.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive, "overwrite disables prior actives")
	assert.Equal(t, []int{1, 2}, rig.versions.zoneVersionNumbers(existing.ID), "disable got its own version")
}

func TestImportGeoJSONAtomicValidation(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	existing, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Keep", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)

	fc := importCollection("Good")
	fc.Features = append(fc.Features, geojson.EncodePolygon(
		[]geo.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}, // collinear
		map[string]interface{}{"name": "Bad"},
	))

	count, err := rig.zoneUC.ImportGeoJSON(ctx, 1, fc, true, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidGeoJSON)
	assert.Equal(t, 0, count)

	// One bad feature rejects the whole payload before any write: the
	// existing zone is untouched and nothing new exists.
	kept, err := rig.zones.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsActive)
	assert.Len(t, rig.zones.zones, 1)
}

func TestImportGeoJSONRejectsNonPolygon(t *testing.T) {
	rig := newTestRig()

	fc := geojson.NewFeatureCollection([]geojson.Feature{{
		Type:     "Feature",
		Geometry: geojson.Geometry{Type: "LineString"},
	}})
	_, err := rig.zoneUC.ImportGeoJSON(context.Background(), 1, fc, false, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidGeoJSON)
}

func TestExportGeoJSON(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	zone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Central", Coords: squareRing(28.6, 77.2, 0.1),
	}, nil)
	require.NoError(t, err)
	disabledZone, err := rig.zoneUC.CreateZone(ctx, CreateZoneRequest{
		WarehouseID: 1, Name: "Gone", Coords: squareRing(28.9, 77.5, 0.1),
	}, nil)
	require.NoError(t, err)
	_, err = rig.zoneUC.DisableZone(ctx, disabledZone.ID, nil)
	require.NoError(t, err)

	fc, err := rig.zoneUC.ExportGeoJSON(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1, "only active zones are exported")
	assert.Equal(t, "Central", fc.Features[0].Properties["name"])

	// Round trip: the export decodes back to the zone's ring.
	polys, err := geojson.DecodePolygons(fc)
	require.NoError(t, err)
	assert.Equal(t, zone.Coords, polys[0].Ring)

	audits, err := rig.recorder.ListAudit(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.ActionExport, audits[0].Action)
}
