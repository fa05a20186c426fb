package cache

import "sync"

// Generations tracks one counter per warehouse. Every committed zone or
// slab mutation bumps the warehouse's counter; the quote cache folds the
// current value into its keys, so older entries simply become unreachable
// and age out via TTL. Counters are process-local: losing them on restart
// only costs cache warmth, never correctness.
type Generations struct {
	mu       sync.Mutex
	counters map[int64]uint64
}

func NewGenerations() *Generations {
	return &Generations{counters: make(map[int64]uint64)}
}

// Current returns the warehouse's current generation (zero if untouched).
func (g *Generations) Current(warehouseID int64) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[warehouseID]
}

// Bump increments the warehouse's generation and returns the new value.
// Concurrent mutations on the same warehouse each observe a distinct,
// monotonically increasing value.
func (g *Generations) Bump(warehouseID int64) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[warehouseID]++
	return g.counters[warehouseID]
}
