package handler

import (
	"fmt"
	"net/http"

	"github.com/pricewell/pricewell/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "pricewell_pricing_cache_hits_total %d\n", snap.PricingCacheHits)
	writeMetric(w, "pricewell_pricing_cache_misses_total %d\n", snap.PricingCacheMisses)
	writeMetric(w, "pricewell_pricing_resolve_duration_seconds_count %d\n", snap.ResolveDurationCount)
	writeMetric(w, "pricewell_pricing_resolve_duration_seconds_sum %.6f\n", float64(snap.ResolveDurationTotalNs)/1e9)

	writeMetric(w, "pricewell_subscriptions_replaced_total %d\n", snap.SubscriptionsReplaced)

	writeMetric(w, "pricewell_products_created_total %d\n", snap.ProductsCreated)
	writeMetric(w, "pricewell_plans_created_total %d\n", snap.PlansCreated)
	writeMetric(w, "pricewell_overrides_created_total %d\n", snap.OverridesCreated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
