package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PricingCacheHits       uint64
	PricingCacheMisses     uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64
	SubscriptionsReplaced  uint64
	ProductsCreated        uint64
	PlansCreated           uint64
	OverridesCreated       uint64
}

// InMemoryRecorder stores metrics in memory for tests and the
// /metrics exposition endpoint.
type InMemoryRecorder struct {
	pricingCacheHits       uint64
	pricingCacheMisses     uint64
	resolveDurationCount   uint64
	resolveDurationTotalNs int64
	subscriptionsReplaced  uint64
	productsCreated        uint64
	plansCreated           uint64
	overridesCreated       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PricingCacheHits:       atomic.LoadUint64(&m.pricingCacheHits),
		PricingCacheMisses:     atomic.LoadUint64(&m.pricingCacheMisses),
		ResolveDurationCount:   atomic.LoadUint64(&m.resolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&m.resolveDurationTotalNs),
		SubscriptionsReplaced:  atomic.LoadUint64(&m.subscriptionsReplaced),
		ProductsCreated:        atomic.LoadUint64(&m.productsCreated),
		PlansCreated:           atomic.LoadUint64(&m.plansCreated),
		OverridesCreated:       atomic.LoadUint64(&m.overridesCreated),
	}
}

// IncPricingCacheHit increments the pricing cache hit counter.
func (m *InMemoryRecorder) IncPricingCacheHit() {
	atomic.AddUint64(&m.pricingCacheHits, 1)
}

// IncPricingCacheMiss increments the pricing cache miss counter.
func (m *InMemoryRecorder) IncPricingCacheMiss() {
	atomic.AddUint64(&m.pricingCacheMisses, 1)
}

// ObserveResolveDuration records a pricing resolution duration.
func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.resolveDurationCount, 1)
	atomic.AddInt64(&m.resolveDurationTotalNs, duration.Nanoseconds())
}

// IncSubscriptionReplaced increments the subscriptions replaced counter.
func (m *InMemoryRecorder) IncSubscriptionReplaced() {
	atomic.AddUint64(&m.subscriptionsReplaced, 1)
}

// IncProductCreated increments the products created counter.
func (m *InMemoryRecorder) IncProductCreated() {
	atomic.AddUint64(&m.productsCreated, 1)
}

// IncPlanCreated increments the plans created counter.
func (m *InMemoryRecorder) IncPlanCreated() {
	atomic.AddUint64(&m.plansCreated, 1)
}

// IncOverrideCreated increments the overrides created counter.
func (m *InMemoryRecorder) IncOverrideCreated() {
	atomic.AddUint64(&m.overridesCreated, 1)
}
