package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPricingCacheHit is a no-op.
func (n *NoopRecorder) IncPricingCacheHit() {}

// IncPricingCacheMiss is a no-op.
func (n *NoopRecorder) IncPricingCacheMiss() {}

// ObserveResolveDuration is a no-op.
func (n *NoopRecorder) ObserveResolveDuration(duration time.Duration) {}

// IncSubscriptionReplaced is a no-op.
func (n *NoopRecorder) IncSubscriptionReplaced() {}

// IncProductCreated is a no-op.
func (n *NoopRecorder) IncProductCreated() {}

// IncPlanCreated is a no-op.
func (n *NoopRecorder) IncPlanCreated() {}

// IncOverrideCreated is a no-op.
func (n *NoopRecorder) IncOverrideCreated() {}
