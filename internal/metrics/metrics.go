// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Pricing resolution metrics
	IncPricingCacheHit()
	IncPricingCacheMiss()
	ObserveResolveDuration(duration time.Duration)

	// Subscription metrics
	IncSubscriptionReplaced()

	// Catalog management metrics
	IncProductCreated()
	IncPlanCreated()
	IncOverrideCreated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
