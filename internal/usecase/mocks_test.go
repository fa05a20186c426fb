package usecase

import (
	"context"
	"sync"
	"time"

	"zonepilot-backend/internal/domain"
)

// --- MOCKS ---
// Hand-written in-memory fakes for the repository interfaces. Stateful on
// purpose: the versioning tests assert on what actually got stored.

type mockWarehouseRepo struct {
	warehouses map[int64]*domain.Warehouse
}

func newMockWarehouseRepo(whs ...*domain.Warehouse) *mockWarehouseRepo {
	m := &mockWarehouseRepo{warehouses: make(map[int64]*domain.Warehouse)}
	for _, wh := range whs {
		m.warehouses[wh.ID] = wh
	}
	return m
}

func (m *mockWarehouseRepo) List(ctx context.Context) ([]domain.Warehouse, error) {
	out := make([]domain.Warehouse, 0, len(m.warehouses))
	for _, wh := range m.warehouses {
		out = append(out, *wh)
	}
	return out, nil
}

func (m *mockWarehouseRepo) GetByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	wh, ok := m.warehouses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *wh
	return &cp, nil
}

func (m *mockWarehouseRepo) Create(ctx context.Context, wh *domain.Warehouse) (*domain.Warehouse, error) {
	wh.ID = int64(len(m.warehouses) + 1)
	m.warehouses[wh.ID] = wh
	cp := *wh
	return &cp, nil
}

type mockZoneRepo struct {
	mu          sync.Mutex
	zones       map[int64]*domain.Zone
	nextID      int64
	activeLists int // ListActiveByWarehouse call count, for cache assertions
}

func newMockZoneRepo() *mockZoneRepo {
	return &mockZoneRepo{zones: make(map[int64]*domain.Zone), nextID: 1}
}

func (m *mockZoneRepo) ListByWarehouse(ctx context.Context, warehouseID int64) ([]domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Zone
	for _, z := range m.zones {
		if z.WarehouseID == warehouseID {
			out = append(out, *z)
		}
	}
	return out, nil
}

func (m *mockZoneRepo) ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeLists++
	var out []domain.Zone
	for _, z := range m.zones {
		if z.WarehouseID == warehouseID && z.IsActive {
			out = append(out, *z)
		}
	}
	return out, nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *z
	return &cp, nil
}

func (m *mockZoneRepo) Insert(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Like the real repo, the generated id is scanned back into the caller's
	// struct.
	z.ID = m.nextID
	cp := *z
	m.nextID++
	m.zones[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockZoneRepo) Update(ctx context.Context, z *domain.Zone) (*domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.zones[z.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *z
	cp.Version = stored.Version
	m.zones[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockZoneRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	z.IsActive = active
	cp := *z
	return &cp, nil
}

func (m *mockZoneRepo) SetVersion(ctx context.Context, id int64, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return domain.ErrNotFound
	}
	z.Version = version
	return nil
}

type mockPricingRepo struct {
	mu     sync.Mutex
	slabs  map[int64]*domain.PricingSlab
	nextID int64
}

func newMockPricingRepo() *mockPricingRepo {
	return &mockPricingRepo{slabs: make(map[int64]*domain.PricingSlab), nextID: 1}
}

func (m *mockPricingRepo) ListByWarehouse(ctx context.Context, warehouseID int64) ([]domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PricingSlab
	for _, s := range m.slabs {
		if s.WarehouseID == warehouseID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockPricingRepo) ListActiveByWarehouse(ctx context.Context, warehouseID int64) ([]domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PricingSlab
	for _, s := range m.slabs {
		if s.WarehouseID == warehouseID && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockPricingRepo) GetByID(ctx context.Context, id int64) (*domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slabs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockPricingRepo) Insert(ctx context.Context, s *domain.PricingSlab) (*domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Like the real repo, the generated id is scanned back into the caller's
	// struct.
	s.ID = m.nextID
	cp := *s
	m.nextID++
	m.slabs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPricingRepo) Update(ctx context.Context, s *domain.PricingSlab) (*domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.slabs[s.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Version = stored.Version
	m.slabs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPricingRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.PricingSlab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slabs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.IsActive = active
	cp := *s
	return &cp, nil
}

func (m *mockPricingRepo) SetVersion(ctx context.Context, id int64, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slabs[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Version = version
	return nil
}

type mockVersionRepo struct {
	mu        sync.Mutex
	versions  []domain.Version
	audits    []domain.AuditLog
	conflicts int // forced ErrVersionConflict returns before succeeding
	attempts  int
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{}
}

func (m *mockVersionRepo) InsertVersion(ctx context.Context, v *domain.Version) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.conflicts > 0 {
		m.conflicts--
		return 0, domain.ErrVersionConflict
	}

	next := 1
	for _, existing := range m.versions {
		if existing.EntityType == v.EntityType && existing.EntityID == v.EntityID && existing.Version >= next {
			next = existing.Version + 1
		}
	}
	cp := *v
	cp.Version = next
	cp.CreatedAt = time.Now()
	m.versions = append(m.versions, cp)
	return next, nil
}

func (m *mockVersionRepo) ListZoneVersions(ctx context.Context, zoneID int64) ([]domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Version
	for i := len(m.versions) - 1; i >= 0; i-- {
		v := m.versions[i]
		if v.EntityType == domain.EntityZone && v.EntityID == zoneID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVersionRepo) ListPricingVersions(ctx context.Context, filter domain.VersionFilter) ([]domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Version
	for i := len(m.versions) - 1; i >= 0; i-- {
		v := m.versions[i]
		if v.EntityType != domain.EntityPricing {
			continue
		}
		if filter.SlabID != nil && v.EntityID != *filter.SlabID {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockVersionRepo) InsertAudit(ctx context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	cp.CreatedAt = time.Now()
	m.audits = append(m.audits, cp)
	return nil
}

func (m *mockVersionRepo) ListAudit(ctx context.Context, limit int, entityType string) ([]domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditLog
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if entityType != "" && m.audits[i].EntityType != entityType {
			continue
		}
		out = append(out, m.audits[i])
	}
	return out, nil
}

// zoneVersionNumbers returns the stored version numbers for a zone, oldest
// first.
func (m *mockVersionRepo) zoneVersionNumbers(zoneID int64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, v := range m.versions {
		if v.EntityType == domain.EntityZone && v.EntityID == zoneID {
			out = append(out, v.Version)
		}
	}
	return out
}

// mockTxManager runs the callback on the bare context. Transactional
// atomicity itself is the database's job; these tests exercise the logic
// around it.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockCache struct {
	mu   sync.Mutex
	data map[string]interface{}
	hits int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]interface{})}
}

func (m *mockCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if ok {
		m.hits++
	}
	return v, ok
}

func (m *mockCache) Set(key string, value interface{}, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
}

func (m *mockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *mockCache) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]interface{})
}

type mockQuoteLogRepo struct {
	mu      sync.Mutex
	entries []domain.QuoteLog
}

func (m *mockQuoteLogRepo) Insert(ctx context.Context, entry *domain.QuoteLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockQuoteLogRepo) Summary(ctx context.Context, warehouseID int64) (*domain.AnalyticsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := &domain.AnalyticsSummary{WarehouseID: warehouseID}
	for _, e := range m.entries {
		if e.WarehouseID != warehouseID {
			continue
		}
		sum.TotalQuotes++
	}
	return sum, nil
}

func (m *mockQuoteLogRepo) Recent(ctx context.Context, limit int, warehouseID *int64) ([]domain.QuoteLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.QuoteLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if warehouseID != nil && m.entries[i].WarehouseID != *warehouseID {
			continue
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *mockQuoteLogRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
